package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/fscip/fscip-backend/internal/handlers"
)

func getJSON(t *testing.T, app *fiber.App, path string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	defer resp.Body.Close()

	var parsed map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decoding response from %s: %v", path, err)
	}
	return resp.StatusCode, parsed
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("status page without a database", func(t *testing.T) {
		h := handlers.NewHealthHandler("1.0.0", "In-Memory (Testing)", false)
		app := fiber.New()
		app.Get("/", h.Root)

		status, body := getJSON(t, app, "/")
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		if body["service"] != "FSCIP Backend API" || body["status"] != "healthy" {
			t.Errorf("unexpected body: %v", body)
		}
		if body["storage"] != "In-Memory (Testing)" {
			t.Errorf("expected storage kind echoed back, got %v", body["storage"])
		}
		if _, present := body["database"]; present {
			t.Error("no database section expected for the in-memory store")
		}
	})

	t.Run("healthy database", func(t *testing.T) {
		h := handlers.NewHealthHandler("1.0.0", "PostgreSQL Database", true)
		h.PingDB = func() error { return nil }
		h.DBStats = func() (int64, int64) { return 3, 7 }
		app := fiber.New()
		app.Get("/", h.Root)
		app.Get("/health", h.Check)

		status, body := getJSON(t, app, "/health")
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		if body["status"] != "healthy" {
			t.Errorf("expected healthy, got %v", body["status"])
		}

		_, body = getJSON(t, app, "/")
		db, ok := body["database"].(map[string]interface{})
		if !ok {
			t.Fatalf("expected a database section, got %v", body)
		}
		if db["status"] != "connected" || db["users"] != float64(3) || db["otps"] != float64(7) {
			t.Errorf("unexpected database section: %v", db)
		}
	})

	t.Run("unreachable database is 503", func(t *testing.T) {
		h := handlers.NewHealthHandler("1.0.0", "PostgreSQL Database", false)
		h.PingDB = func() error { return errors.New("connection refused") }
		app := fiber.New()
		app.Get("/health", h.Check)

		status, body := getJSON(t, app, "/health")
		if status != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", status)
		}
		if body["status"] != "unhealthy" {
			t.Errorf("expected unhealthy, got %v", body["status"])
		}
	})
}
