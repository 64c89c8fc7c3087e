package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"squares-contest-system/handlers"
	"squares-contest-system/models"
	"squares-contest-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New()

	// CORS: the grid/dashboard front end lives on a separate origin
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Contest{},
		&models.Square{},
		&models.QuarterResult{},
		&models.QuarterScore{},
		&models.ProcessingLogEntry{},
		&models.PipelineConfig{},
		&models.ContestUser{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// Seed the single pipeline control row — runs treat a missing row as a
	// fatal configuration error, so it must exist before the first tick.
	cfg := models.PipelineConfig{ID: models.PipelineConfigID, Enabled: true}
	if err := db.FirstOrCreate(&cfg, models.PipelineConfig{ID: models.PipelineConfigID}).Error; err != nil {
		log.Fatal("failed to seed pipeline config:", err)
	}

	scoreboard := services.NewScoreboardClient()
	mailer := services.NewMailer()
	processor := services.NewScoreProcessor(db, scoreboard, mailer)
	contestService := services.NewContestService(db, processor)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	processor.StartScheduler()

	handlers.SetupPipelineRoutes(app, processor)
	handlers.SetupContestRoutes(app, contestService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Score pipeline scheduler running (every 1m)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
