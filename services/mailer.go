// services/mailer.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"os"

	"squares-contest-system/utils"
)

const defaultEmailEndpoint = "https://api.resend.com/emails"

// Mailer delivers notification emails over the HTTP email API. Transport
// failures are logged and reported as a boolean — they never propagate past
// this boundary.
type Mailer struct {
	Endpoint   string
	APIKey     string
	From       string
	AppBaseURL string
	HTTPClient *http.Client
}

func NewMailer() *Mailer {
	endpoint := os.Getenv("EMAIL_ENDPOINT")
	if endpoint == "" {
		endpoint = defaultEmailEndpoint
	}
	return &Mailer{
		Endpoint:   endpoint,
		APIKey:     os.Getenv("EMAIL_API_KEY"),
		From:       os.Getenv("EMAIL_FROM"),
		AppBaseURL: os.Getenv("APP_BASE_URL"),
		HTTPClient: utils.HTTPClient,
	}
}

// Send posts one email to the transport. Returns true iff the transport
// accepted it (2xx).
func (m *Mailer) Send(to, subject, html string) bool {
	payload, err := json.Marshal(map[string]string{
		"from":    m.From,
		"to":      to,
		"subject": subject,
		"html":    html,
	})
	if err != nil {
		log.Printf("❌ [MAILER] Failed to encode email to %s: %v", to, err)
		return false
	}

	req, err := http.NewRequest("POST", m.Endpoint, bytes.NewReader(payload))
	if err != nil {
		log.Printf("❌ [MAILER] Failed to build email request: %v", err)
		return false
	}
	req.Header.Set("Authorization", "Bearer "+m.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.HTTPClient.Do(req)
	if err != nil {
		log.Printf("❌ [MAILER] Email transport error sending to %s: %v", to, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("❌ [MAILER] Email transport returned %d for %s: %s", resp.StatusCode, to, string(body))
		return false
	}

	log.Printf("📧 [MAILER] Sent %q to %s", subject, to)
	return true
}

// ContestLink builds the deep link embedded in notification emails.
func (m *Mailer) ContestLink(slug string) string {
	if m.AppBaseURL == "" {
		return "/contest/" + slug
	}
	return m.AppBaseURL + "/contest/" + slug
}

// Email templates. Each is a pure function of its data struct; user-supplied
// strings (names, team names) pass through html/template auto-escaping.

type WinnerEmailData struct {
	WinnerName   string
	ContestName  string
	QuarterLabel string
	HomeTeam     string
	AwayTeam     string
	HomeScore    int
	AwayScore    int
	PrizeAmount  float64
	ContestLink  string
}

type OwnerQuarterEmailData struct {
	OwnerName    string
	ContestName  string
	QuarterLabel string
	HomeTeam     string
	AwayTeam     string
	HomeScore    int
	AwayScore    int
	WinnerName   string // "" when the winning cell was unclaimed
	PrizeAmount  float64
	ContestLink  string
}

type SummaryRow struct {
	QuarterLabel string
	HomeScore    int
	AwayScore    int
	WinnerName   string
	PrizeAmount  float64
}

type SummaryEmailData struct {
	OwnerName   string
	ContestName string
	Rows        []SummaryRow
	TotalPayout float64
	ContestLink string
}

var winnerEmailTmpl = template.Must(template.New("winner").Parse(`
<h2>🎉 You won {{.QuarterLabel}}!</h2>
<p>Hi {{.WinnerName}},</p>
<p>Your square hit in <strong>{{.ContestName}}</strong>.</p>
<p>{{.HomeTeam}} {{.HomeScore}} — {{.AwayTeam}} {{.AwayScore}}</p>
<p>Prize: <strong>${{printf "%.2f" .PrizeAmount}}</strong></p>
<p><a href="{{.ContestLink}}">View the grid</a></p>
`))

var ownerQuarterEmailTmpl = template.Must(template.New("owner").Parse(`
<h2>{{.QuarterLabel}} result for {{.ContestName}}</h2>
<p>Hi {{.OwnerName}},</p>
<p>{{.HomeTeam}} {{.HomeScore}} — {{.AwayTeam}} {{.AwayScore}}</p>
{{if .WinnerName}}<p>Winner: <strong>{{.WinnerName}}</strong> (${{printf "%.2f" .PrizeAmount}})</p>
{{else}}<p>The winning square was unclaimed — no payout recipient for this quarter.</p>{{end}}
<p><a href="{{.ContestLink}}">Open your contest</a></p>
`))

var summaryEmailTmpl = template.Must(template.New("summary").Parse(`
<h2>🏈 Final results for {{.ContestName}}</h2>
<p>Hi {{.OwnerName}}, the game is over. Here is how each quarter paid out:</p>
<table border="1" cellpadding="6" cellspacing="0">
<tr><th>Quarter</th><th>Score</th><th>Winner</th><th>Prize</th></tr>
{{range .Rows}}<tr><td>{{.QuarterLabel}}</td><td>{{.HomeScore}}–{{.AwayScore}}</td><td>{{if .WinnerName}}{{.WinnerName}}{{else}}—{{end}}</td><td>${{printf "%.2f" .PrizeAmount}}</td></tr>
{{end}}</table>
<p>Total paid out: <strong>${{printf "%.2f" .TotalPayout}}</strong></p>
<p><a href="{{.ContestLink}}">Open your contest</a></p>
`))

func RenderWinnerEmail(data WinnerEmailData) (string, error) {
	return renderTemplate(winnerEmailTmpl, data)
}

func RenderOwnerQuarterEmail(data OwnerQuarterEmailData) (string, error) {
	return renderTemplate(ownerQuarterEmailTmpl, data)
}

func RenderSummaryEmail(data SummaryEmailData) (string, error) {
	return renderTemplate(summaryEmailTmpl, data)
}

func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
