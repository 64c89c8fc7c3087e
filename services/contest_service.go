// services/contest_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"squares-contest-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type ContestService struct {
	DB        *gorm.DB
	Processor *ScoreProcessor
}

func NewContestService(db *gorm.DB, processor *ScoreProcessor) *ContestService {
	return &ContestService{DB: db, Processor: processor}
}

// CreateContest creates a grid with its 100 squares seeded in one transaction.
func (s *ContestService) CreateContest(c *fiber.Ctx) error {
	var req struct {
		Name               string  `json:"name"`
		OwnerID            string  `json:"owner_id"`
		HomeTeamName       string  `json:"home_team_name"`
		AwayTeamName       string  `json:"away_team_name"`
		SquarePrice        float64 `json:"square_price"`
		PayoutFirstPercent float64 `json:"payout_first_percent"`
		PayoutHalfPercent  float64 `json:"payout_half_percent"`
		PayoutThirdPercent float64 `json:"payout_third_percent"`
		PayoutFinalPercent float64 `json:"payout_final_percent"`
		IsSuperBowl        bool    `json:"is_super_bowl"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Name == "" || req.OwnerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and owner_id are required"})
	}
	if req.SquarePrice < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "square_price must be >= 0"})
	}
	if err := validatePayouts(req.PayoutFirstPercent, req.PayoutHalfPercent, req.PayoutThirdPercent, req.PayoutFinalPercent); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	contest := models.Contest{
		ID:                 uuid.NewString(),
		Name:               req.Name,
		Slug:               s.uniqueSlug(req.Name),
		OwnerID:            req.OwnerID,
		HomeTeamName:       req.HomeTeamName,
		AwayTeamName:       req.AwayTeamName,
		SquarePrice:        req.SquarePrice,
		PayoutFirstPercent: req.PayoutFirstPercent,
		PayoutHalfPercent:  req.PayoutHalfPercent,
		PayoutThirdPercent: req.PayoutThirdPercent,
		PayoutFinalPercent: req.PayoutFinalPercent,
		Status:             models.ContestStatusDraft,
		IsSuperBowl:        req.IsSuperBowl,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&contest).Error; err != nil {
			return err
		}
		squares := make([]models.Square, 0, 100)
		for row := 0; row < 10; row++ {
			for col := 0; col < 10; col++ {
				squares = append(squares, models.Square{
					ID:            uuid.NewString(),
					ContestID:     contest.ID,
					RowIndex:      row,
					ColIndex:      col,
					PaymentStatus: models.PaymentStatusAvailable,
				})
			}
		}
		return tx.Create(&squares).Error
	})
	if err != nil {
		log.Printf("DB Error creating contest: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create contest"})
	}

	return c.Status(fiber.StatusCreated).JSON(contest)
}

// GetContest fetches a contest by id or slug, squares included.
func (s *ContestService) GetContest(c *fiber.Ctx) error {
	id := c.Params("id")

	var contest models.Contest
	err := s.DB.Preload("Squares").Where("id = ? OR slug = ?", id, id).First(&contest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Contest not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(contest)
}

// ListContests returns contests without their squares.
func (s *ContestService) ListContests(c *fiber.Ctx) error {
	var contests []models.Contest
	q := s.DB.Order("created_at DESC")
	if owner := c.Query("owner_id"); owner != "" {
		q = q.Where("owner_id = ?", owner)
	}
	if err := q.Find(&contests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(contests)
}

// allowed lifecycle transitions (deleted is a soft-delete tombstone, handled
// by DeleteContest)
var contestTransitions = map[string][]string{
	models.ContestStatusDraft:      {models.ContestStatusOpen},
	models.ContestStatusOpen:       {models.ContestStatusLocked},
	models.ContestStatusLocked:     {models.ContestStatusInProgress},
	models.ContestStatusInProgress: {models.ContestStatusCompleted},
}

// UpdateContestStatus advances the contest lifecycle. Locking the grid
// assigns random numbers to any axis still missing them.
func (s *ContestService) UpdateContestStatus(c *fiber.Ctx) error {
	id := c.Params("id")

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Contest not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	allowed := false
	for _, next := range contestTransitions[contest.Status] {
		if next == req.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("cannot move contest from %s to %s", contest.Status, req.Status),
		})
	}

	if req.Status == models.ContestStatusLocked {
		if contest.RowNumbers == nil {
			encoded, _ := models.EncodeNumberAssignment(models.RandomNumberAssignment())
			contest.RowNumbers = &encoded
		}
		if contest.ColNumbers == nil {
			encoded, _ := models.EncodeNumberAssignment(models.RandomNumberAssignment())
			contest.ColNumbers = &encoded
		}
	}

	contest.Status = req.Status
	if err := s.DB.Save(&contest).Error; err != nil {
		log.Printf("DB Error updating contest status: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update contest"})
	}
	return c.JSON(contest)
}

// AssignNumbers sets manually chosen number assignments. Only valid before
// the game is underway — assignments freeze once the contest is in progress.
func (s *ContestService) AssignNumbers(c *fiber.Ctx) error {
	id := c.Params("id")

	var req struct {
		RowNumbers []int `json:"row_numbers"`
		ColNumbers []int `json:"col_numbers"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Contest not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if contest.Status == models.ContestStatusInProgress || contest.Status == models.ContestStatusCompleted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "number assignments are frozen once the game starts"})
	}

	if req.RowNumbers != nil {
		encoded, err := models.EncodeNumberAssignment(req.RowNumbers)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "row_numbers: " + err.Error()})
		}
		contest.RowNumbers = &encoded
	}
	if req.ColNumbers != nil {
		encoded, err := models.EncodeNumberAssignment(req.ColNumbers)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "col_numbers: " + err.Error()})
		}
		contest.ColNumbers = &encoded
	}

	if err := s.DB.Save(&contest).Error; err != nil {
		log.Printf("DB Error assigning numbers: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save number assignments"})
	}
	return c.JSON(contest)
}

// ClaimSquare records a claimant on an open square.
func (s *ContestService) ClaimSquare(c *fiber.Ctx) error {
	id := c.Params("id")
	row, rowErr := c.ParamsInt("row")
	col, colErr := c.ParamsInt("col")
	if rowErr != nil || colErr != nil || row < 0 || row > 9 || col < 0 || col > 9 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "row and col must be in [0,9]"})
	}

	var req struct {
		FirstName     string `json:"first_name"`
		LastName      string `json:"last_name"`
		Email         string `json:"email"`
		PaymentHandle string `json:"payment_handle"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.FirstName == "" && req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "a claimant name or email is required"})
	}

	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Contest not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if contest.Status != models.ContestStatusOpen {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "contest is not open for claims"})
	}

	var square models.Square
	err := s.DB.Where("contest_id = ? AND row_index = ? AND col_index = ?", contest.ID, row, col).
		First(&square).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Square not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if square.Claimed() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "square is already claimed"})
	}

	square.FirstName = optionalString(req.FirstName)
	square.LastName = optionalString(req.LastName)
	square.Email = optionalString(req.Email)
	square.PaymentHandle = optionalString(req.PaymentHandle)
	square.PaymentStatus = models.PaymentStatusPending

	if err := s.DB.Save(&square).Error; err != nil {
		log.Printf("DB Error claiming square: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to claim square"})
	}
	return c.JSON(square)
}

// UpdateSquarePayment flips a claimed square's payment status.
func (s *ContestService) UpdateSquarePayment(c *fiber.Ctx) error {
	id := c.Params("id")
	row, rowErr := c.ParamsInt("row")
	col, colErr := c.ParamsInt("col")
	if rowErr != nil || colErr != nil || row < 0 || row > 9 || col < 0 || col > 9 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "row and col must be in [0,9]"})
	}

	var req struct {
		PaymentStatus string `json:"payment_status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	switch req.PaymentStatus {
	case models.PaymentStatusAvailable, models.PaymentStatusPending, models.PaymentStatusPaid:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payment_status"})
	}

	var square models.Square
	err := s.DB.Where("contest_id = ? AND row_index = ? AND col_index = ?", id, row, col).
		First(&square).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Square not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	square.PaymentStatus = req.PaymentStatus
	if err := s.DB.Save(&square).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update square"})
	}
	return c.JSON(square)
}

// DeleteContest soft-deletes a contest (tombstone, recoverable by admins).
func (s *ContestService) DeleteContest(c *fiber.Ctx) error {
	id := c.Params("id")

	result := s.DB.Delete(&models.Contest{}, "id = ?", id)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete contest"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Contest not found"})
	}
	return c.JSON(fiber.Map{"deleted": true})
}

// EnterScores is the owner-triggered manual score-entry path. It runs the
// exact same winner computation and idempotent write as the automated
// pipeline, so both paths agree on winner selection.
func (s *ContestService) EnterScores(c *fiber.Ctx) error {
	id := c.Params("id")

	var req struct {
		Quarter   string `json:"quarter"`
		HomeScore int    `json:"home_score"`
		AwayScore int    `json:"away_score"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	quarter := models.Quarter(req.Quarter)
	if !quarter.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid quarter (use first, half, third or final)"})
	}
	if req.HomeScore < 0 || req.AwayScore < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "scores must be >= 0"})
	}

	var contest models.Contest
	if err := s.DB.First(&contest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Contest not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	outcome := s.Processor.ProcessQuarter(&contest, quarter, req.HomeScore, req.AwayScore)
	if outcome.Error != "" {
		return c.Status(fiber.StatusInternalServerError).JSON(outcome)
	}
	return c.JSON(outcome)
}

// GetResults returns all quarter results for a contest, in game order.
func (s *ContestService) GetResults(c *fiber.Ctx) error {
	id := c.Params("id")

	var results []models.QuarterResult
	if err := s.DB.Where("contest_id = ?", id).Find(&results).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Quarter.Order() < results[j].Quarter.Order()
	})
	return c.JSON(results)
}

// ResetResultEmails clears both email-sent flags for a (contest, quarter)
// pair, making it eligible for re-sending on the next pipeline run. Combined
// with a forced trigger this is the operator's "resend emails" action.
func (s *ContestService) ResetResultEmails(c *fiber.Ctx) error {
	id := c.Params("id")
	quarter := models.Quarter(c.Params("quarter"))
	if !quarter.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid quarter"})
	}

	result := s.DB.Model(&models.QuarterResult{}).
		Where("contest_id = ? AND quarter = ?", id, quarter).
		Updates(map[string]any{
			"winner_email_sent":    false,
			"winner_email_sent_at": nil,
			"owner_email_sent":     false,
			"owner_email_sent_at":  nil,
		})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reset email flags"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No result for that contest and quarter"})
	}

	log.Printf("🔁 [ADMIN] Email flags reset for contest %s %s", id, quarter)
	return c.JSON(fiber.Map{"reset": true})
}

// uniqueSlug derives a URL slug from the contest name, suffixing on collision.
func (s *ContestService) uniqueSlug(name string) string {
	base := slug.Make(name)
	candidate := base
	for i := 0; i < 5; i++ {
		var count int64
		s.DB.Model(&models.Contest{}).Where("slug = ?", candidate).Count(&count)
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
	}
	return candidate
}

func validatePayouts(percents ...float64) error {
	total := 0.0
	for _, pct := range percents {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("payout percents must be between 0 and 100")
		}
		total += pct
	}
	if total > 100 {
		return fmt.Errorf("payout percents must sum to at most 100")
	}
	return nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
