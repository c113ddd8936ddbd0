package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fscip/fscip-backend/internal/models"
)

func TestMemoryStore_Users(t *testing.T) {
	m := NewMemoryStore()

	user, err := m.CreateUser(&models.UserRegistration{Email: "User@X.com ", FullName: "Test User"})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	if user.Email != "user@x.com" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}
	if user.Status != models.UserStatusPending {
		t.Errorf("expected PENDING status, got %s", user.Status)
	}

	// Lookup is case-insensitive via normalization
	found, err := m.GetUserByEmail("USER@x.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found.UserID != user.UserID {
		t.Error("lookup returned a different user")
	}

	if _, err := m.GetUserByEmail("other@x.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Duplicates rejected
	if _, err := m.CreateUser(&models.UserRegistration{Email: "user@x.com", FullName: "Dup"}); err == nil {
		t.Error("expected duplicate email to be rejected")
	}

	// Updates persist
	found.Activate(time.Now())
	if err := m.UpdateUser(found); err != nil {
		t.Fatalf("update: %v", err)
	}
	reloaded, _ := m.GetUserByID(user.UserID)
	if reloaded.Status != models.UserStatusActive || reloaded.LastLogin == nil {
		t.Errorf("update not persisted: %+v", reloaded)
	}
}

func TestMemoryStore_OTPs(t *testing.T) {
	m := NewMemoryStore()
	userID := uuid.New()
	otherID := uuid.New()

	mkOTP := func(uid uuid.UUID, code string, createdAt time.Time, expiresAt time.Time) *models.OtpCode {
		otp, err := m.CreateOTP(&models.OtpCode{
			UserID:    uid,
			Code:      code,
			CreatedAt: createdAt,
			ExpiresAt: expiresAt,
		})
		if err != nil {
			t.Fatalf("creating otp: %v", err)
		}
		return otp
	}

	now := time.Now()
	mkOTP(userID, "111111", now.Add(-2*time.Minute), now.Add(8*time.Minute))
	latest := mkOTP(userID, "222222", now, now.Add(10*time.Minute))
	mkOTP(otherID, "333333", now, now.Add(10*time.Minute))

	t.Run("latest by creation time", func(t *testing.T) {
		got, err := m.GetLatestOTP(userID)
		if err != nil {
			t.Fatalf("latest: %v", err)
		}
		if got.Code != "222222" {
			t.Errorf("expected latest code 222222, got %s", got.Code)
		}
	})

	t.Run("count since", func(t *testing.T) {
		count, err := m.CountOTPsSince(userID, now.Add(-time.Minute))
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 recent record, got %d", count)
		}
		count, _ = m.CountOTPsSince(userID, now.Add(-time.Hour))
		if count != 2 {
			t.Errorf("expected 2 records in the hour, got %d", count)
		}
	})

	t.Run("increment attempts", func(t *testing.T) {
		if err := m.IncrementOTPAttempts(latest.ID); err != nil {
			t.Fatalf("increment: %v", err)
		}
		got, _ := m.GetLatestOTP(userID)
		if got.Attempts != 1 {
			t.Errorf("expected 1 attempt, got %d", got.Attempts)
		}
		if err := m.IncrementOTPAttempts(9999); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for unknown id, got %v", err)
		}
	})

	t.Run("delete for user leaves other users alone", func(t *testing.T) {
		if err := m.DeleteOTPsForUser(userID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := m.GetLatestOTP(userID); !errors.Is(err, ErrNotFound) {
			t.Error("expected user's records gone")
		}
		if _, err := m.GetLatestOTP(otherID); err != nil {
			t.Error("other user's record should survive")
		}
	})

	t.Run("delete expired", func(t *testing.T) {
		mkOTP(userID, "444444", now, now.Add(-time.Minute)) // expired
		removed, err := m.DeleteExpiredOTPs()
		if err != nil {
			t.Fatalf("delete expired: %v", err)
		}
		if removed != 1 {
			t.Errorf("expected 1 removed, got %d", removed)
		}
		if _, err := m.GetLatestOTP(otherID); err != nil {
			t.Error("unexpired record should survive the sweep")
		}
	})
}
