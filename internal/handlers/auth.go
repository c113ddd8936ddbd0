package handlers

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fscip/fscip-backend/internal/models"
	"github.com/fscip/fscip-backend/internal/services"
	"github.com/fscip/fscip-backend/internal/storage"
	"github.com/fscip/fscip-backend/internal/utils"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthHandler handles registration and the OTP authentication flow
type AuthHandler struct {
	store      storage.Store
	otpService *services.OTPService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store storage.Store, otpService *services.OTPService) *AuthHandler {
	return &AuthHandler{
		store:      store,
		otpService: otpService,
	}
}

// Register handles new user registration, creating a PENDING account
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var reg models.UserRegistration

	if err := c.BodyParser(&reg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	reg.Email = strings.TrimSpace(reg.Email)
	if !emailPattern.MatchString(reg.Email) || reg.FullName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "A valid email and full name are required",
		})
	}

	if _, err := h.store.GetUserByEmail(reg.Email); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Email is already registered",
		})
	}

	user, err := h.store.CreateUser(&reg)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to register user",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully. Request an OTP to activate the account",
		"userId":  user.UserID,
		"email":   user.Email,
		"status":  user.Status,
	})
}

// RequestOTP handles POST /auth/otp/request
func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var req models.OTPRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	req.Email = strings.TrimSpace(req.Email)
	if !emailPattern.MatchString(req.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "A valid email address is required",
		})
	}

	result, err := h.otpService.RequestOTP(req.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error occurred",
		})
	}

	switch result.Outcome {
	case services.OutcomeSuccess:
		return c.JSON(fiber.Map{
			"success":          true,
			"message":          "OTP sent successfully",
			"email":            result.Email,
			"expiresInSeconds": result.ExpiresInSeconds,
		})
	case services.OutcomeUserNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "User not found",
		})
	case services.OutcomeAlreadyActive:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Account is already active",
		})
	case services.OutcomeRateLimited:
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"success": false,
			"message": "Too many OTP requests. Please wait before requesting again",
		})
	case services.OutcomeSendFailure:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Failed to send OTP email",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error occurred",
		})
	}
}

// VerifyOTP handles POST /auth/otp/verify
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req models.OTPVerification

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	req.Email = strings.TrimSpace(req.Email)
	if !emailPattern.MatchString(req.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "A valid email address is required",
		})
	}
	if !utils.IsValidOTPFormat(req.OTP) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "OTP must be exactly 6 digits",
		})
	}

	result, err := h.otpService.VerifyOTP(req.Email, req.OTP)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success":           false,
			"message":           "Internal server error occurred",
			"remainingAttempts": 0,
		})
	}

	switch result.Outcome {
	case services.OutcomeSuccess:
		return c.JSON(fiber.Map{
			"success":           true,
			"message":           "OTP verified successfully",
			"userId":            result.UserID,
			"status":            result.Status,
			"remainingAttempts": 0,
		})
	case services.OutcomeUserNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success":           false,
			"message":           "User not found",
			"remainingAttempts": 0,
		})
	case services.OutcomeLocked:
		return c.Status(fiber.StatusLocked).JSON(fiber.Map{
			"success":           false,
			"message":           "OTP has been locked due to too many failed attempts",
			"remainingAttempts": 0,
		})
	case services.OutcomeExpired:
		return c.Status(fiber.StatusGone).JSON(fiber.Map{
			"success":           false,
			"message":           "OTP has expired. Please request a new one",
			"remainingAttempts": 0,
		})
	case services.OutcomeNoActiveOTP:
		return c.Status(fiber.StatusGone).JSON(fiber.Map{
			"success":           false,
			"message":           "No active OTP found. Please request a new one",
			"remainingAttempts": 0,
		})
	case services.OutcomeInvalidCode:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":           false,
			"message":           "Invalid OTP code",
			"remainingAttempts": result.RemainingAttempts,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success":           false,
			"message":           "Internal server error occurred",
			"remainingAttempts": 0,
		})
	}
}
