// services/quarters_test.go
package services

import (
	"reflect"
	"testing"

	"squares-contest-system/models"
)

func TestResolveQuartersManualOverridePrecedence(t *testing.T) {
	// Mid-quarter, no boundary event — the override must still be honored.
	status := &GameStatus{StatusName: "STATUS_IN_PROGRESS", Period: 2}
	got := ResolveQuarters(status, models.QuarterHalf)
	want := []models.Quarter{models.QuarterHalf}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("override: got %v, want %v", got, want)
	}

	// Override also bypasses a final status.
	status = &GameStatus{StatusName: StatusFinal, Period: 4}
	got = ResolveQuarters(status, models.QuarterFirst)
	want = []models.Quarter{models.QuarterFirst}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("override on final: got %v, want %v", got, want)
	}
}

func TestResolveQuartersFinalSweep(t *testing.T) {
	for _, status := range []*GameStatus{
		{StatusName: StatusFinal, Period: 4},
		{StatusName: "STATUS_IN_PROGRESS", Period: 4, Completed: true},
	} {
		got := ResolveQuarters(status, "")
		if !reflect.DeepEqual(got, models.AllQuarters) {
			t.Fatalf("final sweep for %+v: got %v, want all quarters", status, got)
		}
	}
}

func TestResolveQuartersBoundarySweep(t *testing.T) {
	cases := []struct {
		name   string
		status GameStatus
		want   []models.Quarter
	}{
		{
			name:   "end of first period",
			status: GameStatus{StatusName: StatusEndPeriod, Period: 1},
			want:   []models.Quarter{models.QuarterFirst},
		},
		{
			name:   "halftime",
			status: GameStatus{StatusName: StatusHalftime, Period: 2},
			want:   []models.Quarter{models.QuarterFirst, models.QuarterHalf},
		},
		{
			// A missed poll must not skip a quarter: period 3 returns every
			// earlier quarter too.
			name:   "end of third period",
			status: GameStatus{StatusName: StatusEndPeriod, Period: 3},
			want:   []models.Quarter{models.QuarterFirst, models.QuarterHalf, models.QuarterThird},
		},
		{
			// Overtime clamps to the final checkpoint.
			name:   "overtime period clamps",
			status: GameStatus{StatusName: StatusEndPeriod, Period: 5},
			want:   models.AllQuarters,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveQuarters(&tc.status, "")
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestResolveQuartersNoBoundary(t *testing.T) {
	status := &GameStatus{StatusName: "STATUS_IN_PROGRESS", Period: 3}
	if got := ResolveQuarters(status, ""); len(got) != 0 {
		t.Fatalf("live game without boundary: got %v, want none", got)
	}

	status = &GameStatus{StatusName: "STATUS_SCHEDULED", Period: 0}
	if got := ResolveQuarters(status, ""); len(got) != 0 {
		t.Fatalf("pre-game: got %v, want none", got)
	}
}
