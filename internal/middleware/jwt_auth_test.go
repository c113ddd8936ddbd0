package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func newProtectedApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	chain := append([]fiber.Handler{RequireAuth()}, handlers...)
	chain = append(chain, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("user_id"),
			"roles":   c.Locals("roles"),
		})
	})
	app.Get("/protected", chain...)
	return app
}

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestRequireAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	t.Run("valid token passes", func(t *testing.T) {
		app := newProtectedApp()
		token := signToken(t, jwt.MapClaims{
			"sub":   "8b9f42d1-0000-4000-8000-000000000000",
			"roles": []string{"USER"},
			"exp":   time.Now().Add(time.Hour).Unix(),
		}, testSecret)

		if status := doRequest(t, app, "Bearer "+token); status != http.StatusOK {
			t.Errorf("expected 200, got %d", status)
		}
	})

	t.Run("missing header is 401", func(t *testing.T) {
		app := newProtectedApp()
		if status := doRequest(t, app, ""); status != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", status)
		}
	})

	t.Run("wrong signature is 401", func(t *testing.T) {
		app := newProtectedApp()
		token := signToken(t, jwt.MapClaims{"sub": "abc"}, "other-secret")
		if status := doRequest(t, app, "Bearer "+token); status != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", status)
		}
	})

	t.Run("expired token is 401", func(t *testing.T) {
		app := newProtectedApp()
		token := signToken(t, jwt.MapClaims{
			"sub": "abc",
			"exp": time.Now().Add(-time.Hour).Unix(),
		}, testSecret)
		if status := doRequest(t, app, "Bearer "+token); status != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", status)
		}
	})

	t.Run("token without subject is 401", func(t *testing.T) {
		app := newProtectedApp()
		token := signToken(t, jwt.MapClaims{"roles": []string{"USER"}}, testSecret)
		if status := doRequest(t, app, "Bearer "+token); status != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", status)
		}
	})
}

func TestRequireRole(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	t.Run("matching role passes", func(t *testing.T) {
		app := newProtectedApp(RequireRole("ADMIN"))
		token := signToken(t, jwt.MapClaims{
			"sub":   "abc",
			"roles": []string{"USER", "ADMIN"},
		}, testSecret)
		if status := doRequest(t, app, "Bearer "+token); status != http.StatusOK {
			t.Errorf("expected 200, got %d", status)
		}
	})

	t.Run("missing role is 403", func(t *testing.T) {
		app := newProtectedApp(RequireRole("ADMIN"))
		token := signToken(t, jwt.MapClaims{
			"sub":   "abc",
			"roles": []string{"USER"},
		}, testSecret)
		if status := doRequest(t, app, "Bearer "+token); status != http.StatusForbidden {
			t.Errorf("expected 403, got %d", status)
		}
	})

	t.Run("single string role claim is tolerated", func(t *testing.T) {
		app := newProtectedApp(RequireRole("USER"))
		token := signToken(t, jwt.MapClaims{
			"sub":   "abc",
			"roles": "USER",
		}, testSecret)
		if status := doRequest(t, app, "Bearer "+token); status != http.StatusOK {
			t.Errorf("expected 200, got %d", status)
		}
	})
}
