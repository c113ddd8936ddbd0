package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStatus represents the lifecycle state of a user account
type UserStatus string

const (
	UserStatusPending   UserStatus = "PENDING"
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// NormalizeEmail puts an address into the canonical stored form. Every
// email comparison must go through this so lookups match inserts
// regardless of how the caller typed the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User represents an account holder in the system
type User struct {
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;primaryKey"`
	Email     string     `json:"email" gorm:"uniqueIndex;not null"`
	FullName  string     `json:"full_name"`
	Status    UserStatus `json:"status" gorm:"type:varchar(20);default:PENDING"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BeforeCreate hook to assign a UUID and normalize the email address
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}

	u.Email = NormalizeEmail(u.Email)

	if u.Status == "" {
		u.Status = UserStatusPending
	}

	return nil
}

// IsActive reports whether the account has completed verification
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Activate flips the account to ACTIVE and records the login time
func (u *User) Activate(now time.Time) {
	u.Status = UserStatusActive
	u.LastLogin = &now
}

// UserRegistration is used for new user registration
type UserRegistration struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
}
