package handlers

import "github.com/gofiber/fiber/v2"

// HealthHandler reports service status and the health of backing dependencies
type HealthHandler struct {
	Version        string
	Storage        string
	MailConfigured bool

	// PingDB checks database connectivity; nil when the store is in-memory
	PingDB func() error
	// DBStats returns row counts for the status page; nil when no database
	DBStats func() (users, otps int64)
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, storage string, mailConfigured bool) *HealthHandler {
	return &HealthHandler{
		Version:        version,
		Storage:        storage,
		MailConfigured: mailConfigured,
	}
}

// Root returns the service status page with database details
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	mail := "Not configured (mock)"
	if h.MailConfigured {
		mail = "Configured (SMTP)"
	}

	response := fiber.Map{
		"service": "FSCIP Backend API",
		"version": h.Version,
		"status":  "healthy",
		"storage": h.Storage,
		"mail":    mail,
	}

	if h.PingDB != nil {
		dbStatus := "connected"
		if err := h.PingDB(); err != nil {
			dbStatus = "error: " + err.Error()
		}

		db := fiber.Map{"status": dbStatus}
		if h.DBStats != nil {
			users, otps := h.DBStats()
			db["users"] = users
			db["otps"] = otps
		}
		response["database"] = db
	}

	return c.JSON(response)
}

// Check returns the health status of the service for monitoring
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "healthy"
	statusCode := fiber.StatusOK

	if h.PingDB != nil && h.PingDB() != nil {
		status = "unhealthy"
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status": status,
		"services": fiber.Map{
			"database": status == "healthy",
			"mail":     h.MailConfigured,
		},
	})
}
