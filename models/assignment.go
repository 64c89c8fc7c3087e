// models/assignment.go
package models

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// ParseNumberAssignment decodes a stored number assignment and verifies it is
// a full permutation of the digits 0–9. Returns an error for nil, malformed
// JSON, wrong length, out-of-range digits, or duplicates.
func ParseNumberAssignment(raw *string) ([]int, error) {
	if raw == nil || *raw == "" {
		return nil, fmt.Errorf("number assignment not set")
	}
	var digits []int
	if err := json.Unmarshal([]byte(*raw), &digits); err != nil {
		return nil, fmt.Errorf("invalid number assignment: %w", err)
	}
	if err := ValidateNumberAssignment(digits); err != nil {
		return nil, err
	}
	return digits, nil
}

// ValidateNumberAssignment checks that digits is a permutation of 0–9.
func ValidateNumberAssignment(digits []int) error {
	if len(digits) != 10 {
		return fmt.Errorf("number assignment must have 10 digits, got %d", len(digits))
	}
	var seen [10]bool
	for _, d := range digits {
		if d < 0 || d > 9 {
			return fmt.Errorf("number assignment digit %d out of range", d)
		}
		if seen[d] {
			return fmt.Errorf("number assignment repeats digit %d", d)
		}
		seen[d] = true
	}
	return nil
}

// EncodeNumberAssignment serializes digits for storage.
func EncodeNumberAssignment(digits []int) (string, error) {
	if err := ValidateNumberAssignment(digits); err != nil {
		return "", err
	}
	b, err := json.Marshal(digits)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// RandomNumberAssignment returns a fresh random permutation of 0–9, used when
// a grid locks without manually chosen numbers.
func RandomNumberAssignment() []int {
	digits := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	rand.Shuffle(len(digits), func(i, j int) {
		digits[i], digits[j] = digits[j], digits[i]
	})
	return digits
}

// IndexOfDigit finds the grid position representing digit within a parsed
// assignment. Returns -1 when absent (only possible for invalid assignments).
func IndexOfDigit(digits []int, digit int) int {
	for i, d := range digits {
		if d == digit {
			return i
		}
	}
	return -1
}
