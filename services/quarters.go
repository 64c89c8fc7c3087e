// services/quarters.go
package services

import (
	"squares-contest-system/models"
)

// ResolveQuarters decides which contest-quarters are eligible for processing
// this run, in ascending game order. Decision table, in priority order:
//
//  1. manual override → exactly that quarter, no status inspection
//  2. game final or completed → all four quarters (catch-up sweep)
//  3. end of period / halftime → every quarter for periods ≤ current
//     (a single missed poll must not skip a quarter boundary)
//  4. otherwise → nothing to process this run
func ResolveQuarters(status *GameStatus, manualOverride models.Quarter) []models.Quarter {
	if manualOverride != "" && manualOverride.Valid() {
		return []models.Quarter{manualOverride}
	}

	if status == nil {
		return nil
	}

	if status.Final() {
		quarters := make([]models.Quarter, len(models.AllQuarters))
		copy(quarters, models.AllQuarters)
		return quarters
	}

	if status.StatusName == StatusEndPeriod || status.StatusName == StatusHalftime {
		current, ok := models.QuarterForPeriod(status.Period)
		if !ok {
			return nil
		}
		quarters := make([]models.Quarter, current.Order()+1)
		copy(quarters, models.AllQuarters[:current.Order()+1])
		return quarters
	}

	return nil
}
