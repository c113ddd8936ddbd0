package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fscip/fscip-backend/internal/handlers"
	"github.com/fscip/fscip-backend/internal/middleware"
	"github.com/fscip/fscip-backend/internal/services"
	"github.com/fscip/fscip-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, otpService *services.OTPService, healthHandler *handlers.HealthHandler) {
	authHandler := handlers.NewAuthHandler(store, otpService)
	userHandler := handlers.NewUserHandler(store)

	// ========== HEALTH ROUTES (public) ==========
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.Check)

	// ========== AUTH ROUTES (public) ==========
	auth := app.Group("/auth")
	auth.Post("/register", authHandler.Register)

	otp := auth.Group("/otp")
	otp.Post("/request", authHandler.RequestOTP)
	otp.Post("/verify", authHandler.VerifyOTP)

	// ========== API ROUTES (bearer token required) ==========
	api := app.Group("/api", middleware.RequireAuth())

	users := api.Group("/users")
	users.Get("/me", userHandler.GetMe)
}
