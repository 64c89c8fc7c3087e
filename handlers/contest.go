// handlers/contest.go
package handlers

import (
	"squares-contest-system/middleware"
	"squares-contest-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupContestRoutes(app *fiber.App, contestService *services.ContestService) {
	// 🔓 Public reads — grid and results pages need these without user context
	app.Get("/contests", contestService.ListContests)
	app.Get("/contests/:id", contestService.GetContest)
	app.Get("/contests/:id/results", contestService.GetResults)

	// 🔐 Owner/admin actions carry the service token. The check is attached
	// per route — a "/" group would register it app-wide and lock the public
	// reads above too.
	auth := middleware.ServiceAuthMiddleware()

	app.Post("/contests", auth, contestService.CreateContest)
	app.Delete("/contests/:id", auth, contestService.DeleteContest)
	app.Patch("/contests/:id/status", auth, contestService.UpdateContestStatus)
	app.Put("/contests/:id/numbers", auth, contestService.AssignNumbers)

	app.Post("/contests/:id/squares/:row/:col/claim", auth, contestService.ClaimSquare)
	app.Patch("/contests/:id/squares/:row/:col/payment", auth, contestService.UpdateSquarePayment)

	// Manual score entry + the "resend emails" reset
	app.Post("/contests/:id/scores", auth, contestService.EnterScores)
	app.Post("/contests/:id/results/:quarter/reset-emails", auth, contestService.ResetResultEmails)
}
