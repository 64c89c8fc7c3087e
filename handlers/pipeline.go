// handlers/pipeline.go
package handlers

import (
	"squares-contest-system/middleware"
	"squares-contest-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPipelineRoutes(app *fiber.App, processor *services.ScoreProcessor) {
	// Trigger surface: GET = scheduled check, POST = manual trigger,
	// anything else answered with 405 inside the handler.
	app.All("/process-scores", processor.HandleProcessScores)

	// 🔐 Operator surface — token check attached per route so the trigger
	// above stays reachable by the external scheduler
	auth := middleware.ServiceAuthMiddleware()
	app.Get("/pipeline-config", auth, processor.GetPipelineConfig)
	app.Patch("/pipeline-config", auth, processor.UpdatePipelineConfig)
	app.Get("/processing-logs", auth, processor.GetProcessingLogs)
}
