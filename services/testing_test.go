// services/testing_test.go
package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"squares-contest-system/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Contest{},
		&models.Square{},
		&models.QuarterResult{},
		&models.QuarterScore{},
		&models.ProcessingLogEntry{},
		&models.PipelineConfig{},
		&models.ContestUser{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

// sentEmail is one payload accepted by the fake transport.
type sentEmail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// emailRecorder fakes the email transport endpoint. Addresses in failing
// get a 500, simulating a per-recipient transport failure.
type emailRecorder struct {
	mu      sync.Mutex
	sent    []sentEmail
	failing map[string]bool
	server  *httptest.Server
}

func newEmailRecorder(t *testing.T) *emailRecorder {
	t.Helper()
	rec := &emailRecorder{failing: map[string]bool{}}
	rec.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var email sentEmail
		if err := json.NewDecoder(r.Body).Decode(&email); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		rec.mu.Lock()
		defer rec.mu.Unlock()
		if rec.failing[email.To] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		rec.sent = append(rec.sent, email)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(rec.server.Close)
	return rec
}

func (r *emailRecorder) setFailing(to string, fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing[to] = fail
}

func (r *emailRecorder) sentTo(to string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.sent {
		if e.To == to {
			n++
		}
	}
	return n
}

func (r *emailRecorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func (r *emailRecorder) mailer() *Mailer {
	return &Mailer{
		Endpoint:   r.server.URL,
		APIKey:     "test-key",
		From:       "squares@example.com",
		AppBaseURL: "https://squares.example.com",
		HTTPClient: r.server.Client(),
	}
}

// newTestProcessor wires a processor against the test db and fake transport.
// The scoreboard client is left nil unless the test sets one.
func newTestProcessor(t *testing.T) (*ScoreProcessor, *emailRecorder) {
	t.Helper()
	db := openTestDB(t)
	rec := newEmailRecorder(t)
	return NewScoreProcessor(db, nil, rec.mailer()), rec
}

func strPtr(s string) *string { return &s }

// seedContest creates a locked super-bowl contest with known number
// assignments: row_numbers[0]=7, col_numbers[1]=3 etc.
func seedContest(t *testing.T, db *gorm.DB) *models.Contest {
	t.Helper()
	rowNumbers := "[7,3,0,1,2,4,5,6,8,9]"
	colNumbers := "[0,3,7,1,2,4,5,6,8,9]"
	contest := &models.Contest{
		ID:                 uuid.NewString(),
		Name:               "Office Super Bowl Squares",
		Slug:               "office-super-bowl-squares",
		OwnerID:            "owner-1",
		HomeTeamName:       "Chiefs",
		AwayTeamName:       "Eagles",
		RowNumbers:         &rowNumbers,
		ColNumbers:         &colNumbers,
		SquarePrice:        10,
		PayoutFirstPercent: 25,
		PayoutHalfPercent:  25,
		PayoutThirdPercent: 25,
		PayoutFinalPercent: 25,
		Status:             models.ContestStatusLocked,
		IsSuperBowl:        true,
	}
	if err := db.Create(contest).Error; err != nil {
		t.Fatalf("failed to seed contest: %v", err)
	}
	squares := make([]models.Square, 0, 100)
	for row := 0; row < 10; row++ {
		for col := 0; col < 10; col++ {
			squares = append(squares, models.Square{
				ID:            uuid.NewString(),
				ContestID:     contest.ID,
				RowIndex:      row,
				ColIndex:      col,
				PaymentStatus: models.PaymentStatusAvailable,
			})
		}
	}
	if err := db.Create(&squares).Error; err != nil {
		t.Fatalf("failed to seed squares: %v", err)
	}
	return contest
}

func seedOwner(t *testing.T, db *gorm.DB, externalID, email string) {
	t.Helper()
	owner := models.ContestUser{
		ID:             uuid.NewString(),
		ExternalUserID: externalID,
		Username:       "organizer",
		Email:          email,
		FirstName:      strPtr("Pat"),
		LastName:       strPtr("Organizer"),
	}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("failed to seed owner: %v", err)
	}
}

func claimSquare(t *testing.T, db *gorm.DB, contestID string, row, col int, first, last, email string) {
	t.Helper()
	updates := map[string]any{
		"first_name":     first,
		"last_name":      last,
		"payment_status": models.PaymentStatusPaid,
	}
	if email != "" {
		updates["email"] = email
	}
	err := db.Model(&models.Square{}).
		Where("contest_id = ? AND row_index = ? AND col_index = ?", contestID, row, col).
		Updates(updates).Error
	if err != nil {
		t.Fatalf("failed to claim square: %v", err)
	}
}

func seedPipelineConfig(t *testing.T, db *gorm.DB, enabled, finished bool) {
	t.Helper()
	cfg := models.PipelineConfig{ID: models.PipelineConfigID}
	if err := db.Create(&cfg).Error; err != nil {
		t.Fatalf("failed to seed pipeline config: %v", err)
	}
	// Updates with a map so false values are not skipped as zero-values.
	err := db.Model(&models.PipelineConfig{}).Where("id = ?", models.PipelineConfigID).
		Updates(map[string]any{"enabled": enabled, "game_finished": finished}).Error
	if err != nil {
		t.Fatalf("failed to seed pipeline config flags: %v", err)
	}
}
