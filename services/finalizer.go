// services/finalizer.go
package services

import (
	"fmt"
	"log"
	"sort"
	"time"

	"squares-contest-system/models"
)

// FinalizeContest runs once per contest when the game is detected final:
// aggregate all quarter results, send the owner summary and mark the contest
// completed. Guarded by the contest's summary_email_sent flag so a repeat run
// after game end does not mail the summary twice.
func (p *ScoreProcessor) FinalizeContest(contest *models.Contest) error {
	if contest.SummaryEmailSent {
		// Already summarized — just re-assert the terminal status.
		return p.markCompleted(contest)
	}

	var results []models.QuarterResult
	if err := p.DB.Where("contest_id = ?", contest.ID).Find(&results).Error; err != nil {
		return fmt.Errorf("failed to load quarter results: %w", err)
	}
	if len(results) == 0 {
		// Nothing was ever processed for this contest; nothing to summarize.
		return nil
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Quarter.Order() < results[j].Quarter.Order()
	})

	owner, ok := p.resolveOwner(contest.OwnerID)
	if !ok {
		log.Printf("⚠️ [FINALIZER] No contact identity for owner %s of contest %s — summary skipped", contest.OwnerID, contest.ID)
		return nil
	}

	rows := make([]SummaryRow, 0, len(results))
	total := 0.0
	for _, r := range results {
		winnerName := r.WinnerFirstName
		if r.WinnerLastName != "" {
			if winnerName != "" {
				winnerName += " "
			}
			winnerName += r.WinnerLastName
		}
		rows = append(rows, SummaryRow{
			QuarterLabel: r.Quarter.Label(),
			HomeScore:    r.HomeScore,
			AwayScore:    r.AwayScore,
			WinnerName:   winnerName,
			PrizeAmount:  r.PrizeAmount,
		})
		total += r.PrizeAmount
	}

	html, err := RenderSummaryEmail(SummaryEmailData{
		OwnerName:   owner.DisplayName(),
		ContestName: contest.Name,
		Rows:        rows,
		TotalPayout: total,
		ContestLink: p.Mailer.ContestLink(contest.Slug),
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Final results — %s", contest.Name)
	if p.Mailer.Send(owner.Email, subject, html) {
		now := time.Now()
		err = p.DB.Model(&models.Contest{}).Where("id = ?", contest.ID).Updates(map[string]any{
			"summary_email_sent":    true,
			"summary_email_sent_at": now,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to persist summary flag: %w", err)
		}
		contest.SummaryEmailSent = true
		contest.SummaryEmailSentAt = &now
		p.logEntry("finalize_contest", models.LogStatusSuccess, map[string]any{
			"contest_id":   contest.ID,
			"quarters":     len(rows),
			"total_payout": total,
		}, "")
	} else {
		// Flag stays unset; the next (forced) run retries the summary.
		p.logEntry("finalize_contest", models.LogStatusError, map[string]any{
			"contest_id": contest.ID,
		}, "summary email transport failure")
	}

	return p.markCompleted(contest)
}

func (p *ScoreProcessor) markCompleted(contest *models.Contest) error {
	if contest.Status == models.ContestStatusCompleted {
		return nil
	}
	err := p.DB.Model(&models.Contest{}).Where("id = ?", contest.ID).
		Update("status", models.ContestStatusCompleted).Error
	if err != nil {
		return fmt.Errorf("failed to mark contest completed: %w", err)
	}
	contest.Status = models.ContestStatusCompleted
	log.Printf("✅ [FINALIZER] Contest completed: %s", contest.Name)
	return nil
}
