package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxOTPAttempts is the default number of failed verifications before a
// code locks. The effective limit is configurable.
const MaxOTPAttempts = 5

// OtpCode is the durable record of an issued one-time passcode. The code is
// stored in clear: the short TTL plus the attempt limit bound its value, and
// verification needs the original digits for the cache-miss fallback.
type OtpCode struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Code      string    `json:"-" gorm:"not null;size:6"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	Attempts  int       `json:"attempts" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the code is past its TTL
func (o *OtpCode) IsExpired() bool {
	return time.Now().After(o.ExpiresAt)
}

// IsLocked reports whether failed attempts have exhausted the code under
// the given limit
func (o *OtpCode) IsLocked(maxAttempts int) bool {
	return o.Attempts >= maxAttempts
}
