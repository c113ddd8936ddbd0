package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/fscip/fscip-backend/internal/models"
)

// OTPConfig holds the tunables of the OTP lifecycle.
//
// The rate-limit window is RateLimitMinutes (default 1 minute) with
// MaxRequests issuances allowed per window. That is the whole contract:
// there is no separate hourly cap.
type OTPConfig struct {
	ExpiryMinutes    int // code TTL
	RateLimitMinutes int // trailing window for issuance throttling
	MaxRequests      int // max issuances per window
	MaxAttempts      int // max failed verifications before lockout
}

// ExpiryDuration returns the code TTL as a duration
func (c OTPConfig) ExpiryDuration() time.Duration {
	return time.Duration(c.ExpiryMinutes) * time.Minute
}

// RateLimitWindow returns the throttling window as a duration
func (c OTPConfig) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitMinutes) * time.Minute
}

// SMTPConfig holds mail transport credentials. Empty Host means mail is
// not configured and the mock mailer is used instead.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Config is the full service configuration
type Config struct {
	Port string
	OTP  OTPConfig
	SMTP SMTPConfig
}

// Load reads configuration from the environment, after loading a .env file
// if one is present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found - relying on environment variables")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),
		OTP: OTPConfig{
			ExpiryMinutes:    getEnvInt("OTP_EXPIRY_MINUTES", 10),
			RateLimitMinutes: getEnvInt("OTP_RATE_LIMIT_MINUTES", 1),
			MaxRequests:      getEnvInt("OTP_MAX_REQUESTS", 5),
			MaxAttempts:      getEnvInt("OTP_MAX_ATTEMPTS", models.MaxOTPAttempts),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnv("SMTP_PORT", "465"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid value for %s: %q - using default %d", key, v, fallback)
		return fallback
	}
	return n
}
