// services/winner.go
package services

import (
	"errors"
	"fmt"

	"squares-contest-system/models"

	"gorm.io/gorm"
)

// WinnerResult is the outcome of digit-matching one (contest, score) pair.
// WinningSquare is nil when the contest has no valid number assignments or no
// square occupies the matching cell.
type WinnerResult struct {
	WinningSquare *models.Square
	HomeDigit     int
	AwayDigit     int
	RowIndex      int
	ColIndex      int
}

// ComputeWinner determines the winning grid cell for the given cumulative
// scores. Last digit = score mod 10 per side; the winning row is the position
// of the home digit within row_numbers, the winning column the position of
// the away digit within col_numbers. Both the automated pipeline and the
// manual score-entry path go through this function, so the two always agree
// on winner selection.
//
// A missing or invalid number assignment yields no winner, not an error.
// Errors are reserved for store failures looking up the square.
func ComputeWinner(db *gorm.DB, contest *models.Contest, homeScore, awayScore int) (WinnerResult, error) {
	result := WinnerResult{
		HomeDigit: homeScore % 10,
		AwayDigit: awayScore % 10,
		RowIndex:  -1,
		ColIndex:  -1,
	}

	rowNumbers, err := models.ParseNumberAssignment(contest.RowNumbers)
	if err != nil {
		return result, nil
	}
	colNumbers, err := models.ParseNumberAssignment(contest.ColNumbers)
	if err != nil {
		return result, nil
	}

	rowIndex := models.IndexOfDigit(rowNumbers, result.HomeDigit)
	colIndex := models.IndexOfDigit(colNumbers, result.AwayDigit)
	if rowIndex < 0 || colIndex < 0 {
		return result, nil
	}
	result.RowIndex = rowIndex
	result.ColIndex = colIndex

	var square models.Square
	err = db.Where("contest_id = ? AND row_index = ? AND col_index = ?",
		contest.ID, rowIndex, colIndex).First(&square).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Grid cell never seeded — a winner cell with no square row
			return result, nil
		}
		return result, fmt.Errorf("failed to fetch winning square: %w", err)
	}

	result.WinningSquare = &square
	return result, nil
}

// PrizeAmount computes the payout for a quarter. The grid always has 100
// squares, so square_price × 100 is the full pot regardless of how many
// squares were actually claimed or paid.
func PrizeAmount(squarePrice, payoutPercent float64) float64 {
	return squarePrice * 100 * payoutPercent / 100
}
