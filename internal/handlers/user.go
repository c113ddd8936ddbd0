package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fscip/fscip-backend/internal/storage"
)

// UserHandler handles authenticated user requests
type UserHandler struct {
	store storage.Store
}

// NewUserHandler creates a new user handler
func NewUserHandler(store storage.Store) *UserHandler {
	return &UserHandler{
		store: store,
	}
}

// GetMe returns the profile of the authenticated user
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	sub, _ := c.Locals("user_id").(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user identity",
		})
	}

	user, err := h.store.GetUserByID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "User not found",
		})
	}

	return c.JSON(user)
}
