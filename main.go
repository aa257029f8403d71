package main

import (
	"log"

	"mesquite/config"
	"mesquite/handlers"
	"mesquite/middleware"
	"mesquite/models"
	"mesquite/routes"
	"mesquite/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatalw("failed to connect to database", "error", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.Course{},
		&models.Player{},
		&models.Round{},
	)
	if err != nil {
		logger.Fatalw("failed to migrate database", "error", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	roundService := services.NewRoundService(db, redisClient, logger)
	leaderboardService := services.NewLeaderboardService(db, logger)

	// Initialize WebSocket hub
	hub := services.NewHub(leaderboardService, logger)
	go hub.Run()

	// Initialize handlers
	roundHandler := handlers.NewRoundHandler(roundService, hub)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	courseHandler := handlers.NewCourseHandler(leaderboardService, roundService)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, roundHandler, leaderboardHandler, courseHandler, hub, cfg.JWTSecret)

	// Start server
	logger.Infow("server starting", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatalw("failed to start server", "error", err)
	}
}
