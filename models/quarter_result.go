// models/quarter_result.go
package models

import (
	"time"
)

// QuarterResult is the persisted outcome of processing one (contest, quarter)
// pair. Exactly one row exists per pair — created on the first processing
// attempt and mutated in place on retries, never deleted by the pipeline.
type QuarterResult struct {
	ID        string  `json:"id" gorm:"primaryKey"`
	ContestID string  `json:"contest_id" gorm:"not null;uniqueIndex:idx_quarter_results_pair"`
	Quarter   Quarter `json:"quarter" gorm:"type:varchar(8);not null;uniqueIndex:idx_quarter_results_pair"`

	// Raw scores as observed and their derived last digits
	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`
	HomeDigit int `json:"home_digit"`
	AwayDigit int `json:"away_digit"`

	// Winning square — nil when no square occupies the matching cell
	WinningSquareID *string `json:"winning_square_id,omitempty"`

	// Winner contact, denormalized at resolution time so later edits to the
	// square do not rewrite history
	WinnerFirstName string `json:"winner_first_name,omitempty"`
	WinnerLastName  string `json:"winner_last_name,omitempty"`
	WinnerEmail     string `json:"winner_email,omitempty"`

	PrizeAmount   float64 `json:"prize_amount"`
	PayoutPercent float64 `json:"payout_percent"`

	// Delivery tracking, independent per recipient. Flags only ever move
	// false → true from the pipeline; a manual reset clears both to make the
	// pair eligible for re-sending.
	WinnerEmailSent   bool       `json:"winner_email_sent" gorm:"default:false"`
	WinnerEmailSentAt *time.Time `json:"winner_email_sent_at,omitempty"`
	OwnerEmailSent    bool       `json:"owner_email_sent" gorm:"default:false"`
	OwnerEmailSentAt  *time.Time `json:"owner_email_sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// FullySent reports whether both notification obligations are satisfied —
// the short-circuit condition for idempotent reprocessing.
func (r *QuarterResult) FullySent() bool {
	return r.WinnerEmailSent && r.OwnerEmailSent
}

// QuarterScore mirrors the observed score per (contest, quarter) for the
// manual score-entry UI. Best-effort denormalized view: the pipeline upserts
// it but never reads it back.
type QuarterScore struct {
	ID        string  `json:"id" gorm:"primaryKey"`
	ContestID string  `json:"contest_id" gorm:"not null;uniqueIndex:idx_quarter_scores_pair"`
	Quarter   Quarter `json:"quarter" gorm:"type:varchar(8);not null;uniqueIndex:idx_quarter_scores_pair"`
	HomeScore int     `json:"home_score"`
	AwayScore int     `json:"away_score"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
