// services/mailer_test.go
package services

import (
	"strings"
	"testing"
)

func TestMailerSend(t *testing.T) {
	rec := newEmailRecorder(t)
	m := rec.mailer()

	if !m.Send("to@example.com", "hello", "<p>hi</p>") {
		t.Fatal("send should succeed")
	}
	if rec.total() != 1 {
		t.Fatalf("recorded sends: %d", rec.total())
	}
	rec.mu.Lock()
	sent := rec.sent[0]
	rec.mu.Unlock()
	if sent.From != "squares@example.com" || sent.To != "to@example.com" || sent.Subject != "hello" {
		t.Fatalf("payload: %+v", sent)
	}

	// Transport failure converts to false, never an error.
	rec.setFailing("down@example.com", true)
	if m.Send("down@example.com", "hello", "<p>hi</p>") {
		t.Fatal("failed send must return false")
	}
}

func TestWinnerEmailEscapesUserStrings(t *testing.T) {
	html, err := RenderWinnerEmail(WinnerEmailData{
		WinnerName:   `<script>alert("x")</script>`,
		ContestName:  "Friends & Family Pool",
		QuarterLabel: "1st Quarter",
		HomeTeam:     "Chiefs",
		AwayTeam:     "Eagles",
		HomeScore:    7,
		AwayScore:    3,
		PrizeAmount:  250,
		ContestLink:  "https://squares.example.com/contest/pool",
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("user-supplied name must be escaped")
	}
	if !strings.Contains(html, "Friends &amp; Family Pool") {
		t.Fatal("contest name should be entity-escaped")
	}
	if !strings.Contains(html, "$250.00") {
		t.Fatalf("prize missing from body: %s", html)
	}
}

func TestOwnerQuarterEmailUnclaimedBranch(t *testing.T) {
	html, err := RenderOwnerQuarterEmail(OwnerQuarterEmailData{
		OwnerName:    "Pat",
		ContestName:  "Office Pool",
		QuarterLabel: "Halftime",
		HomeTeam:     "Chiefs",
		AwayTeam:     "Eagles",
		HomeScore:    14,
		AwayScore:    10,
		WinnerName:   "",
		PrizeAmount:  250,
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(html, "unclaimed") {
		t.Fatal("unclaimed branch missing")
	}
}

func TestSummaryEmailTotals(t *testing.T) {
	html, err := RenderSummaryEmail(SummaryEmailData{
		OwnerName:   "Pat",
		ContestName: "Office Pool",
		Rows: []SummaryRow{
			{QuarterLabel: "1st Quarter", HomeScore: 7, AwayScore: 3, WinnerName: "Dana", PrizeAmount: 250},
			{QuarterLabel: "Final", HomeScore: 40, AwayScore: 22, WinnerName: "", PrizeAmount: 250},
		},
		TotalPayout: 500,
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(html, "$500.00") {
		t.Fatal("running total missing")
	}
	if !strings.Contains(html, "Dana") {
		t.Fatal("winner row missing")
	}
}
