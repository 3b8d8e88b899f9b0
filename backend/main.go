package main

import (
	"log"

	"learntube/backend/config"
	"learntube/backend/middleware"
	"learntube/backend/routes"
	"learntube/backend/services"
	"learntube/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Redis is optional; the leaderboard degrades to DB queries without it.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	leaderboard := services.NewLeaderboardService(db, rdb)
	progress := services.NewProgressService(db, services.NewImageCertificateRenderer(), leaderboard, logger)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // imported playlists can be large
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, routes.Services{
		Progress:    progress,
		Leaderboard: leaderboard,
		AI:          services.NewAIService(cfg.GeminiAPIKey),
		YouTube:     services.NewYouTubeService(cfg.YouTubeAPIKey),
	})

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
