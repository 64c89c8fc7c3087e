// models/quarter.go
package models

// Quarter is one of the four contest-scoring checkpoints tied to game
// progress (end of 1st period, halftime, end of 3rd, game end).
type Quarter string

const (
	QuarterFirst Quarter = "first"
	QuarterHalf  Quarter = "half"
	QuarterThird Quarter = "third"
	QuarterFinal Quarter = "final"
)

// AllQuarters lists the quarters in ascending game order.
var AllQuarters = []Quarter{QuarterFirst, QuarterHalf, QuarterThird, QuarterFinal}

// QuarterForPeriod maps a live game period to its quarter checkpoint.
// Periods beyond 4 (overtime) clamp to the final checkpoint.
func QuarterForPeriod(period int) (Quarter, bool) {
	if period < 1 {
		return "", false
	}
	if period > 4 {
		period = 4
	}
	return AllQuarters[period-1], true
}

// Valid reports whether q names a known quarter.
func (q Quarter) Valid() bool {
	switch q {
	case QuarterFirst, QuarterHalf, QuarterThird, QuarterFinal:
		return true
	}
	return false
}

// Order returns the quarter's position in game order (0-based), for sorting.
func (q Quarter) Order() int {
	for i, v := range AllQuarters {
		if v == q {
			return i
		}
	}
	return len(AllQuarters)
}

// Label is the human name used in emails and logs.
func (q Quarter) Label() string {
	switch q {
	case QuarterFirst:
		return "1st Quarter"
	case QuarterHalf:
		return "Halftime"
	case QuarterThird:
		return "3rd Quarter"
	case QuarterFinal:
		return "Final"
	}
	return string(q)
}
