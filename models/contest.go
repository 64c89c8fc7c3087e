// models/contest.go
package models

import (
	"time"
)

// Contest lifecycle states
const (
	ContestStatusDraft      = "draft"
	ContestStatusOpen       = "open"
	ContestStatusLocked     = "locked"
	ContestStatusInProgress = "in_progress"
	ContestStatusCompleted  = "completed"
)

// Square payment states
const (
	PaymentStatusAvailable = "available"
	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
)

type Contest struct {
	ID      string `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"not null"`
	Slug    string `json:"slug" gorm:"uniqueIndex;not null"`
	OwnerID string `json:"owner_id" gorm:"index;not null"` // links to ContestUser.ExternalUserID

	// Row axis = home team, column axis = away team
	HomeTeamName string `json:"home_team_name"`
	AwayTeamName string `json:"away_team_name"`

	// Number assignments: JSON arrays holding a permutation of the digits 0–9
	// (position = grid index, value = digit). Nil until assigned — winner
	// computation is only valid once both are present and valid.
	RowNumbers *string `json:"row_numbers,omitempty" gorm:"type:text"`
	ColNumbers *string `json:"col_numbers,omitempty" gorm:"type:text"`

	// 💰 Payouts: percent of the pot per quarter (each 0–100, sum ≤ 100)
	SquarePrice        float64 `json:"square_price" gorm:"default:0"`
	PayoutFirstPercent float64 `json:"payout_first_percent" gorm:"default:0"`
	PayoutHalfPercent  float64 `json:"payout_half_percent" gorm:"default:0"`
	PayoutThirdPercent float64 `json:"payout_third_percent" gorm:"default:0"`
	PayoutFinalPercent float64 `json:"payout_final_percent" gorm:"default:0"`

	// 🎛️ Lifecycle & pipeline gating
	Status      string `json:"status" gorm:"default:'draft'"` // draft | open | locked | in_progress | completed
	IsSuperBowl bool   `json:"is_super_bowl" gorm:"default:false;index"`

	// Final-summary guard: set once the owner summary email went out, so a
	// re-run after game end does not mail the summary twice.
	SummaryEmailSent   bool       `json:"summary_email_sent" gorm:"default:false"`
	SummaryEmailSentAt *time.Time `json:"summary_email_sent_at,omitempty"`

	Squares []Square `json:"squares,omitempty" gorm:"foreignKey:ContestID;constraint:OnDelete:CASCADE"`

	Timestamps
}

// PayoutPercentFor returns the configured payout percent for a quarter.
func (c *Contest) PayoutPercentFor(q Quarter) float64 {
	switch q {
	case QuarterFirst:
		return c.PayoutFirstPercent
	case QuarterHalf:
		return c.PayoutHalfPercent
	case QuarterThird:
		return c.PayoutThirdPercent
	case QuarterFinal:
		return c.PayoutFinalPercent
	}
	return 0
}

// Square is one of the 100 cells of a contest grid, unique per (contest, row, col).
type Square struct {
	ID        string `json:"id" gorm:"primaryKey"`
	ContestID string `json:"contest_id" gorm:"not null;uniqueIndex:idx_squares_contest_cell"`
	RowIndex  int    `json:"row_index" gorm:"not null;uniqueIndex:idx_squares_contest_cell"`
	ColIndex  int    `json:"col_index" gorm:"not null;uniqueIndex:idx_squares_contest_cell"`

	// Claimant fields — all nil while the square is unclaimed
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	Email         *string `json:"email,omitempty"`
	PaymentHandle *string `json:"payment_handle,omitempty"`

	PaymentStatus string `json:"payment_status" gorm:"default:'available'"` // available | pending | paid

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Claimed reports whether anyone holds this square.
func (s *Square) Claimed() bool {
	return s.FirstName != nil || s.LastName != nil || s.Email != nil
}

// ClaimantEmail returns the claimant's email, or "" when unclaimed or
// claimed without an address.
func (s *Square) ClaimantEmail() string {
	if s.Email == nil {
		return ""
	}
	return *s.Email
}

// ClaimantName renders "First Last" from whatever claimant fields are set.
func (s *Square) ClaimantName() string {
	name := ""
	if s.FirstName != nil {
		name = *s.FirstName
	}
	if s.LastName != nil {
		if name != "" {
			name += " "
		}
		name += *s.LastName
	}
	return name
}
