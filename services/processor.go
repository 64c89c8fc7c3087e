// services/processor.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"squares-contest-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Run result statuses returned by the trigger surface
const (
	RunStatusDisabled         = "disabled"
	RunStatusFinished         = "finished"
	RunStatusNoGame           = "no_game"
	RunStatusInProgress       = "in_progress"
	RunStatusNothingToProcess = "nothing_to_process"
	RunStatusNoContests       = "no_contests"
	RunStatusProcessed        = "processed"
)

// ScoreProcessor runs the score-processing pipeline: fetch game state,
// resolve eligible quarters, compute winners, write results idempotently and
// dispatch notifications. One logical thread of control — contests and
// quarters are processed sequentially within a run.
//
// Known race, accepted for this domain: two overlapping runs cannot duplicate
// QuarterResult rows (the upsert is atomic on (contest_id, quarter)), but the
// email-flag read → send → write window is not locked, so a truly concurrent
// run could double-send an email. At-most-once in practice, not in theory.
type ScoreProcessor struct {
	DB         *gorm.DB
	Scoreboard *ScoreboardClient
	Mailer     *Mailer
}

func NewScoreProcessor(db *gorm.DB, scoreboard *ScoreboardClient, mailer *Mailer) *ScoreProcessor {
	return &ScoreProcessor{DB: db, Scoreboard: scoreboard, Mailer: mailer}
}

// RunOptions controls one pipeline invocation.
type RunOptions struct {
	Quarter models.Quarter // manual override: process exactly this quarter
	Force   bool           // bypass the enabled / game_finished gates
}

// QuarterOutcome reports one (contest, quarter) pair of a run.
type QuarterOutcome struct {
	ContestID   string         `json:"contest_id"`
	ContestName string         `json:"contest_name"`
	Quarter     models.Quarter `json:"quarter"`
	Processed   bool           `json:"processed"`
	Error       string         `json:"error,omitempty"`
}

// RunResult is the JSON-facing summary of one pipeline run.
type RunResult struct {
	Status        string           `json:"status"`
	Game          *GameStatus      `json:"game,omitempty"`
	Quarters      []models.Quarter `json:"quarters,omitempty"`
	ContestCount  int              `json:"contest_count"`
	Results       []QuarterOutcome `json:"results,omitempty"`
	GameFinalized bool             `json:"game_finalized"`
	ElapsedMS     int64            `json:"elapsed_ms"`
}

// Run executes one full pipeline pass. The config row is loaded once up
// front, mutated in memory, and written back once on every outcome path past
// the gates, including a failed score fetch.
func (p *ScoreProcessor) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	started := time.Now()
	result := &RunResult{}

	var cfg models.PipelineConfig
	if err := p.DB.First(&cfg, models.PipelineConfigID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pipeline config row missing")
		}
		return nil, fmt.Errorf("failed to load pipeline config: %w", err)
	}

	if !cfg.Enabled && !opts.Force {
		p.logEntry("run", models.LogStatusSkipped, map[string]any{"reason": "disabled"}, "")
		result.Status = RunStatusDisabled
		result.ElapsedMS = time.Since(started).Milliseconds()
		return result, nil
	}
	if cfg.GameFinished && !opts.Force {
		p.logEntry("run", models.LogStatusSkipped, map[string]any{"reason": "game_finished"}, "")
		result.Status = RunStatusFinished
		result.ElapsedMS = time.Since(started).Milliseconds()
		return result, nil
	}

	// The watermark advances on every path past the gates, a failed fetch
	// included — "last checked" means checked, not succeeded.
	now := time.Now()
	cfg.LastCheckedAt = &now
	defer func() {
		if err := p.DB.Save(&cfg).Error; err != nil {
			log.Printf("❌ [PIPELINE] Failed to save pipeline config: %v", err)
		}
	}()

	game, err := p.Scoreboard.FetchGameStatus(ctx)
	if err != nil {
		p.logEntry("fetch_scores", models.LogStatusError, nil, err.Error())
		return nil, err
	}
	if game != nil {
		cfg.LastStatus = game.StatusName
		cfg.LastPeriod = game.Period
	}

	if game == nil {
		p.logEntry("fetch_scores", models.LogStatusSuccess, map[string]any{"found": false}, "")
		result.Status = RunStatusNoGame
		result.ElapsedMS = time.Since(started).Milliseconds()
		return result, nil
	}
	result.Game = game
	p.logEntry("fetch_scores", models.LogStatusSuccess, map[string]any{
		"event":  game.EventName,
		"status": game.StatusName,
		"period": game.Period,
		"home":   game.HomeScore,
		"away":   game.AwayScore,
	}, "")

	quarters := ResolveQuarters(game, opts.Quarter)
	if len(quarters) == 0 {
		result.Status = RunStatusInProgress
		result.ElapsedMS = time.Since(started).Milliseconds()
		return result, nil
	}
	sort.Slice(quarters, func(i, j int) bool { return quarters[i].Order() < quarters[j].Order() })
	result.Quarters = quarters

	var contests []models.Contest
	err = p.DB.Where("is_super_bowl = ? AND status IN ?", true, []string{
		models.ContestStatusOpen,
		models.ContestStatusLocked,
		models.ContestStatusInProgress,
	}).Find(&contests).Error
	if err != nil {
		p.logEntry("load_contests", models.LogStatusError, nil, err.Error())
		return nil, fmt.Errorf("failed to load eligible contests: %w", err)
	}
	result.ContestCount = len(contests)
	if len(contests) == 0 {
		result.Status = RunStatusNoContests
		result.ElapsedMS = time.Since(started).Milliseconds()
		return result, nil
	}

	anyProcessed := false
	for i := range contests {
		contest := &contests[i]
		for _, q := range quarters {
			outcome := p.ProcessQuarter(contest, q, game.HomeScore, game.AwayScore)
			result.Results = append(result.Results, outcome)
			if outcome.Processed {
				anyProcessed = true
			}
		}
	}

	if game.Final() {
		for i := range contests {
			if err := p.FinalizeContest(&contests[i]); err != nil {
				log.Printf("❌ [PIPELINE] Failed to finalize contest %s: %v", contests[i].ID, err)
			}
		}
		cfg.GameFinished = true
		result.GameFinalized = true
	}

	if anyProcessed || result.GameFinalized {
		result.Status = RunStatusProcessed
	} else {
		result.Status = RunStatusNothingToProcess
	}
	result.ElapsedMS = time.Since(started).Milliseconds()
	return result, nil
}

// ProcessQuarter performs one idempotent (contest, quarter) processing
// attempt. Protocol:
//
//  1. short-circuit when a result exists with both emails already sent
//  2. compute the winner and upsert the result atomically on the pair key
//  3. mirror the score for the manual UI, best-effort
//  4. send whichever of the two emails is still owed, judged from the flags
//     read in step 1 (so a half-failed earlier attempt resumes precisely)
//  5. persist flags monotonically (false → true only)
//
// The manual score-entry path calls this with operator-supplied scores.
func (p *ScoreProcessor) ProcessQuarter(contest *models.Contest, quarter models.Quarter, homeScore, awayScore int) QuarterOutcome {
	outcome := QuarterOutcome{
		ContestID:   contest.ID,
		ContestName: contest.Name,
		Quarter:     quarter,
	}

	var existing models.QuarterResult
	hasExisting := true
	err := p.DB.Where("contest_id = ? AND quarter = ?", contest.ID, quarter).
		First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			outcome.Error = fmt.Sprintf("failed to load quarter result: %v", err)
			p.logQuarter(contest, quarter, models.LogStatusError, outcome.Error)
			return outcome
		}
		hasExisting = false
	}

	if hasExisting && existing.FullySent() {
		// Fully processed on an earlier run — repeated polls are no-ops.
		return outcome
	}

	winner, err := ComputeWinner(p.DB, contest, homeScore, awayScore)
	if err != nil {
		outcome.Error = err.Error()
		p.logQuarter(contest, quarter, models.LogStatusError, outcome.Error)
		return outcome
	}

	payoutPercent := contest.PayoutPercentFor(quarter)
	record := models.QuarterResult{
		ID:            uuid.NewString(),
		ContestID:     contest.ID,
		Quarter:       quarter,
		HomeScore:     homeScore,
		AwayScore:     awayScore,
		HomeDigit:     winner.HomeDigit,
		AwayDigit:     winner.AwayDigit,
		PrizeAmount:   PrizeAmount(contest.SquarePrice, payoutPercent),
		PayoutPercent: payoutPercent,
	}
	if hasExisting {
		record.ID = existing.ID
		record.WinnerEmailSent = existing.WinnerEmailSent
		record.WinnerEmailSentAt = existing.WinnerEmailSentAt
		record.OwnerEmailSent = existing.OwnerEmailSent
		record.OwnerEmailSentAt = existing.OwnerEmailSentAt
	}
	if winner.WinningSquare != nil {
		record.WinningSquareID = &winner.WinningSquare.ID
		record.WinnerFirstName = derefOrEmpty(winner.WinningSquare.FirstName)
		record.WinnerLastName = derefOrEmpty(winner.WinningSquare.LastName)
		record.WinnerEmail = winner.WinningSquare.ClaimantEmail()
	}

	// True upsert on the pair key — concurrent or repeated invocations cannot
	// create duplicate rows. Email flags are deliberately excluded from the
	// conflict update so a parallel writer never resets them.
	err = p.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "contest_id"}, {Name: "quarter"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"home_score", "away_score", "home_digit", "away_digit",
			"winning_square_id", "winner_first_name", "winner_last_name",
			"winner_email", "prize_amount", "payout_percent", "updated_at",
		}),
	}).Create(&record).Error
	if err != nil {
		outcome.Error = fmt.Sprintf("failed to upsert quarter result: %v", err)
		p.logQuarter(contest, quarter, models.LogStatusError, outcome.Error)
		return outcome
	}

	// Best-effort score mirror for the manual UI — a failure here must not
	// abort the quarter.
	if err := p.mirrorScore(contest.ID, quarter, homeScore, awayScore); err != nil {
		log.Printf("⚠️ [PIPELINE] Failed to mirror score for contest %s %s: %v", contest.ID, quarter, err)
	}

	winnerSent := hasExisting && existing.WinnerEmailSent
	ownerSent := hasExisting && existing.OwnerEmailSent

	if !winnerSent {
		winnerSent = p.sendWinnerEmail(contest, quarter, &record, winner)
	}
	if !ownerSent {
		ownerSent = p.sendOwnerEmail(contest, quarter, &record, winner)
	}

	updates := map[string]any{}
	sentAt := time.Now()
	if winnerSent && !(hasExisting && existing.WinnerEmailSent) {
		updates["winner_email_sent"] = true
		updates["winner_email_sent_at"] = sentAt
	}
	if ownerSent && !(hasExisting && existing.OwnerEmailSent) {
		updates["owner_email_sent"] = true
		updates["owner_email_sent_at"] = sentAt
	}
	if len(updates) > 0 {
		err = p.DB.Model(&models.QuarterResult{}).
			Where("contest_id = ? AND quarter = ?", contest.ID, quarter).
			Updates(updates).Error
		if err != nil {
			outcome.Error = fmt.Sprintf("failed to persist email flags: %v", err)
			p.logQuarter(contest, quarter, models.LogStatusError, outcome.Error)
			return outcome
		}
	}

	outcome.Processed = true
	p.logEntry("process_quarter", models.LogStatusSuccess, map[string]any{
		"contest_id":   contest.ID,
		"quarter":      string(quarter),
		"home_score":   homeScore,
		"away_score":   awayScore,
		"winner_email": winnerSent,
		"owner_email":  ownerSent,
	}, "")
	return outcome
}

// sendWinnerEmail delivers the claimant notice. An unclaimed winning square
// (or no winning square at all) satisfies the obligation trivially — there is
// no one to notify.
func (p *ScoreProcessor) sendWinnerEmail(contest *models.Contest, quarter models.Quarter, record *models.QuarterResult, winner WinnerResult) bool {
	if winner.WinningSquare == nil || winner.WinningSquare.ClaimantEmail() == "" {
		return true
	}

	html, err := RenderWinnerEmail(WinnerEmailData{
		WinnerName:   winner.WinningSquare.ClaimantName(),
		ContestName:  contest.Name,
		QuarterLabel: quarter.Label(),
		HomeTeam:     contest.HomeTeamName,
		AwayTeam:     contest.AwayTeamName,
		HomeScore:    record.HomeScore,
		AwayScore:    record.AwayScore,
		PrizeAmount:  record.PrizeAmount,
		ContestLink:  p.Mailer.ContestLink(contest.Slug),
	})
	if err != nil {
		log.Printf("❌ [PIPELINE] Failed to render winner email for contest %s: %v", contest.ID, err)
		return false
	}

	subject := fmt.Sprintf("You won %s in %s!", quarter.Label(), contest.Name)
	return p.Mailer.Send(winner.WinningSquare.ClaimantEmail(), subject, html)
}

// sendOwnerEmail delivers the quarter-result notice to the contest owner.
// An unresolvable owner identity leaves the flag unset without erroring.
func (p *ScoreProcessor) sendOwnerEmail(contest *models.Contest, quarter models.Quarter, record *models.QuarterResult, winner WinnerResult) bool {
	owner, ok := p.resolveOwner(contest.OwnerID)
	if !ok {
		log.Printf("⚠️ [PIPELINE] No contact identity for owner %s of contest %s — owner email skipped", contest.OwnerID, contest.ID)
		return false
	}

	winnerName := ""
	if winner.WinningSquare != nil && winner.WinningSquare.Claimed() {
		winnerName = winner.WinningSquare.ClaimantName()
	}

	html, err := RenderOwnerQuarterEmail(OwnerQuarterEmailData{
		OwnerName:    owner.DisplayName(),
		ContestName:  contest.Name,
		QuarterLabel: quarter.Label(),
		HomeTeam:     contest.HomeTeamName,
		AwayTeam:     contest.AwayTeamName,
		HomeScore:    record.HomeScore,
		AwayScore:    record.AwayScore,
		WinnerName:   winnerName,
		PrizeAmount:  record.PrizeAmount,
		ContestLink:  p.Mailer.ContestLink(contest.Slug),
	})
	if err != nil {
		log.Printf("❌ [PIPELINE] Failed to render owner email for contest %s: %v", contest.ID, err)
		return false
	}

	subject := fmt.Sprintf("%s result — %s", quarter.Label(), contest.Name)
	return p.Mailer.Send(owner.Email, subject, html)
}

// resolveOwner maps an owner reference to a mailable contact identity.
func (p *ScoreProcessor) resolveOwner(ownerID string) (*models.ContestUser, bool) {
	var owner models.ContestUser
	err := p.DB.Where("external_user_id = ?", ownerID).First(&owner).Error
	if err != nil || owner.Email == "" {
		return nil, false
	}
	return &owner, true
}

// mirrorScore upserts the denormalized per-quarter score view.
func (p *ScoreProcessor) mirrorScore(contestID string, quarter models.Quarter, homeScore, awayScore int) error {
	score := models.QuarterScore{
		ID:        uuid.NewString(),
		ContestID: contestID,
		Quarter:   quarter,
		HomeScore: homeScore,
		AwayScore: awayScore,
	}
	return p.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "contest_id"}, {Name: "quarter"}},
		DoUpdates: clause.AssignmentColumns([]string{"home_score", "away_score", "updated_at"}),
	}).Create(&score).Error
}

func (p *ScoreProcessor) logQuarter(contest *models.Contest, quarter models.Quarter, status, errText string) {
	p.logEntry("process_quarter", status, map[string]any{
		"contest_id": contest.ID,
		"quarter":    string(quarter),
	}, errText)
}

// logEntry appends one audit record; failures only warn — the audit trail is
// diagnostic, not load-bearing.
func (p *ScoreProcessor) logEntry(action, status string, details map[string]any, errText string) {
	entry := models.NewLogEntry(action, status, details, errText)
	entry.ID = uuid.NewString()
	if err := p.DB.Create(&entry).Error; err != nil {
		log.Printf("⚠️ [PIPELINE] Failed to write processing log entry: %v", err)
	}
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
