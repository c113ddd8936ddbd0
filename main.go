package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/fscip/fscip-backend/database"
	"github.com/fscip/fscip-backend/internal/cache"
	"github.com/fscip/fscip-backend/internal/config"
	"github.com/fscip/fscip-backend/internal/handlers"
	"github.com/fscip/fscip-backend/internal/jobs"
	"github.com/fscip/fscip-backend/internal/models"
	"github.com/fscip/fscip-backend/internal/routes"
	"github.com/fscip/fscip-backend/internal/services"
	"github.com/fscip/fscip-backend/internal/storage"
)

func main() {
	cfg := config.Load()

	// Initialize storage
	var store storage.Store

	// Check if we should use memory store (for testing)
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		// Connect to database
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		// Run migrations
		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.User{},
			&models.OtpCode{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}

	// Initialize the mailer: SMTP when configured, mock otherwise
	var mailer services.EmailService
	if cfg.SMTP.Host != "" {
		mailer = services.NewSMTPEmailService(cfg.SMTP)
		log.Println("✅ SMTP email service initialized")
	} else {
		mailer = services.NewMockEmailService()
		log.Println("⚠️  SMTP not configured - OTP emails will be logged only")
	}

	// OTP cache with its background sweeper
	otpCache := cache.New(cfg.OTP.MaxAttempts)
	otpCache.Start()

	// Rate limiter counts issuances against the durable store
	limiter := services.NewRateLimiter(store, cfg.OTP.RateLimitWindow(), cfg.OTP.MaxRequests)

	// OTP lifecycle manager
	otpService := services.NewOTPService(store, otpCache, limiter, mailer, cfg.OTP)

	// Start the expired-record cleanup job
	cleanupJob := jobs.NewCleanupJob(store)
	cleanupJob.Start()

	log.Println("✅ All services initialized and scheduled jobs started")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "FSCIP Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Health endpoints report database status only when a database backs the store
	healthHandler := handlers.NewHealthHandler("1.0.0", getStorageType(), cfg.SMTP.Host != "")
	if os.Getenv("USE_MEMORY_STORE") != "true" {
		healthHandler.PingDB = func() error {
			sqlDB, err := database.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		}
		healthHandler.DBStats = func() (int64, int64) {
			var userCount, otpCount int64
			database.DB.Model(&models.User{}).Count(&userCount)
			database.DB.Model(&models.OtpCode{}).Count(&otpCount)
			return userCount, otpCount
		}
	}

	// Setup routes
	routes.SetupRoutes(app, store, otpService, healthHandler)

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping background jobs...")
		cleanupJob.Stop()
		otpCache.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 FSCIP Backend starting on port %s", cfg.Port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("📧 Mail: %s", getMailStatus(cfg))
	log.Printf("🔐 OTP: %d-minute expiry, %d requests per %d-minute window, %d verify attempts",
		cfg.OTP.ExpiryMinutes, cfg.OTP.MaxRequests, cfg.OTP.RateLimitMinutes, cfg.OTP.MaxAttempts)
	log.Println("========================================")

	log.Fatal(app.Listen(":" + cfg.Port))
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func getMailStatus(cfg *config.Config) string {
	if cfg.SMTP.Host == "" {
		return "Not configured (mock)"
	}
	return "Configured (SMTP)"
}
