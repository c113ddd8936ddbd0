package storage

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fscip/fscip-backend/internal/models"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for storage operations
type Store interface {
	// User operations
	CreateUser(reg *models.UserRegistration) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(userID uuid.UUID) (*models.User, error)
	UpdateUser(user *models.User) error

	// OTP operations. The "at most one live code per user" invariant is the
	// caller's job: issuance deletes old records before creating a new one.
	CreateOTP(otp *models.OtpCode) (*models.OtpCode, error)
	GetLatestOTP(userID uuid.UUID) (*models.OtpCode, error)
	CountOTPsSince(userID uuid.UUID, since time.Time) (int64, error)
	IncrementOTPAttempts(otpID uint) error
	DeleteOTPsForUser(userID uuid.UUID) error
	DeleteExpiredOTPs() (int64, error)
}
