// services/winner_test.go
package services

import (
	"testing"
)

func TestComputeWinnerDigitMatching(t *testing.T) {
	db := openTestDB(t)
	contest := seedContest(t, db) // row_numbers[0]=7, col_numbers[1]=3
	claimSquare(t, db, contest.ID, 0, 1, "Dana", "Winner", "dana@example.com")

	// home 47 → digit 7 → row index 0; away 23 → digit 3 → col index 1
	result, err := ComputeWinner(db, contest, 47, 23)
	if err != nil {
		t.Fatalf("ComputeWinner failed: %v", err)
	}
	if result.HomeDigit != 7 || result.AwayDigit != 3 {
		t.Fatalf("digits: got (%d, %d), want (7, 3)", result.HomeDigit, result.AwayDigit)
	}
	if result.RowIndex != 0 || result.ColIndex != 1 {
		t.Fatalf("cell: got (%d, %d), want (0, 1)", result.RowIndex, result.ColIndex)
	}
	if result.WinningSquare == nil {
		t.Fatal("expected a winning square")
	}
	if result.WinningSquare.ClaimantEmail() != "dana@example.com" {
		t.Fatalf("claimant: got %q", result.WinningSquare.ClaimantEmail())
	}
}

func TestComputeWinnerUnclaimedSquareStillWins(t *testing.T) {
	db := openTestDB(t)
	contest := seedContest(t, db)

	result, err := ComputeWinner(db, contest, 47, 23)
	if err != nil {
		t.Fatalf("ComputeWinner failed: %v", err)
	}
	if result.WinningSquare == nil {
		t.Fatal("an unclaimed cell is still a winner square")
	}
	if result.WinningSquare.Claimed() {
		t.Fatal("square should be unclaimed")
	}
}

func TestComputeWinnerMissingAssignment(t *testing.T) {
	db := openTestDB(t)
	contest := seedContest(t, db)
	contest.RowNumbers = nil

	result, err := ComputeWinner(db, contest, 47, 23)
	if err != nil {
		t.Fatalf("missing assignment must not error: %v", err)
	}
	if result.WinningSquare != nil {
		t.Fatal("no winner without a row assignment")
	}
	if result.HomeDigit != 7 || result.AwayDigit != 3 {
		t.Fatalf("digits still derived: got (%d, %d)", result.HomeDigit, result.AwayDigit)
	}
}

func TestPrizeAmount(t *testing.T) {
	// square_price=10, payout=25% → 10 × 100 × 25 / 100 = 250
	if got := PrizeAmount(10, 25); got != 250 {
		t.Fatalf("PrizeAmount(10, 25) = %v, want 250", got)
	}
	if got := PrizeAmount(5, 0); got != 0 {
		t.Fatalf("PrizeAmount(5, 0) = %v, want 0", got)
	}
	if got := PrizeAmount(2.5, 50); got != 125 {
		t.Fatalf("PrizeAmount(2.5, 50) = %v, want 125", got)
	}
}
