// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartScheduler begins the fixed-cadence pipeline checks. Each tick is one
// full run-to-completion pass with default options; the gates inside Run
// (enabled, game_finished, no_game) keep off-game-day ticks cheap.
func (p *ScoreProcessor) StartScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: poll the scoreboard and process any eligible quarters
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			result, err := p.Run(context.Background(), RunOptions{})
			if err != nil {
				log.Printf("❌ [Scheduler] Pipeline run failed: %v", err)
				return
			}
			switch result.Status {
			case RunStatusProcessed:
				log.Printf("✅ [Scheduler] Processed %d quarter(s) across %d contest(s) in %dms",
					len(result.Quarters), result.ContestCount, result.ElapsedMS)
			default:
				log.Printf("[Scheduler] Pipeline run: %s", result.Status)
			}
		}),
	)
}
