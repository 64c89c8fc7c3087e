// services/pipeline_http.go
package services

import (
	"log"
	"time"

	"squares-contest-system/models"

	"github.com/gofiber/fiber/v2"
)

// processRequest is the optional POST body of a manual trigger.
type processRequest struct {
	Quarter string `json:"quarter"`
	Force   bool   `json:"force"`
}

// HandleProcessScores is the pipeline trigger surface. GET = unconditional
// scheduled check; POST = manual trigger with an optional {quarter, force}
// body. Any other method gets a 405.
func (p *ScoreProcessor) HandleProcessScores(c *fiber.Ctx) error {
	opts := RunOptions{}

	switch c.Method() {
	case fiber.MethodGet:
		// no body, default options
	case fiber.MethodPost:
		if len(c.Body()) > 0 {
			var req processRequest
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
			}
			if req.Quarter != "" {
				q := models.Quarter(req.Quarter)
				if !q.Valid() {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "invalid quarter (use first, half, third or final)",
					})
				}
				opts.Quarter = q
			}
			opts.Force = req.Force
		}
	default:
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "method not allowed"})
	}

	if missing := MissingSecrets(); len(missing) > 0 {
		log.Printf("❌ [PIPELINE] Missing required secrets: %v", missing)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "missing required configuration",
			"missing": missing,
		})
	}

	result, err := p.Run(c.UserContext(), opts)
	if err != nil {
		// Top-level catch: surface the failure, rely on the next scheduled
		// run for retry.
		log.Printf("❌ [PIPELINE] Run failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": "error",
			"error":  err.Error(),
		})
	}

	return c.JSON(result)
}

// GetPipelineConfig exposes the single control row to the admin surface.
func (p *ScoreProcessor) GetPipelineConfig(c *fiber.Ctx) error {
	var cfg models.PipelineConfig
	if err := p.DB.First(&cfg, models.PipelineConfigID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "pipeline config not found"})
	}
	return c.JSON(cfg)
}

// UpdatePipelineConfig lets an operator flip the enabled gate, reset the
// finished flag or move the game date.
func (p *ScoreProcessor) UpdatePipelineConfig(c *fiber.Ctx) error {
	var req struct {
		Enabled      *bool      `json:"enabled"`
		GameFinished *bool      `json:"game_finished"`
		GameDate     *time.Time `json:"game_date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var cfg models.PipelineConfig
	if err := p.DB.First(&cfg, models.PipelineConfigID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "pipeline config not found"})
	}

	if req.Enabled != nil {
		cfg.Enabled = *req.Enabled
	}
	if req.GameFinished != nil {
		cfg.GameFinished = *req.GameFinished
	}
	if req.GameDate != nil {
		cfg.GameDate = req.GameDate
	}

	if err := p.DB.Save(&cfg).Error; err != nil {
		log.Printf("DB Error updating pipeline config: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update pipeline config"})
	}
	return c.JSON(cfg)
}

// GetProcessingLogs returns the newest audit entries so operators can
// diagnose partial failures without code access.
func (p *ScoreProcessor) GetProcessingLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var entries []models.ProcessingLogEntry
	err := p.DB.Order("created_at DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load processing logs"})
	}
	return c.JSON(fiber.Map{"entries": entries})
}
