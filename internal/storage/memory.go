package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fscip/fscip-backend/internal/models"
)

// MemoryStore holds all data in memory, for tests and local development
type MemoryStore struct {
	users map[uuid.UUID]*models.User
	otps  map[uint]*models.OtpCode

	// Mutexes for thread safety
	userMu sync.RWMutex
	otpMu  sync.RWMutex

	// Counter for OTP ID generation
	otpCounter uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[uuid.UUID]*models.User),
		otps:  make(map[uint]*models.OtpCode),
	}
}

// User operations

func (m *MemoryStore) CreateUser(reg *models.UserRegistration) (*models.User, error) {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	email := models.NormalizeEmail(reg.Email)
	for _, u := range m.users {
		if u.Email == email {
			return nil, fmt.Errorf("email already registered")
		}
	}

	now := time.Now()
	user := &models.User{
		UserID:    uuid.New(),
		Email:     email,
		FullName:  reg.FullName,
		Status:    models.UserStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.users[user.UserID] = user
	return user, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	email = models.NormalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByID(userID uuid.UUID) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	user, exists := m.users[userID]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *MemoryStore) UpdateUser(user *models.User) error {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	if _, exists := m.users[user.UserID]; !exists {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	copied := *user
	m.users[user.UserID] = &copied
	return nil
}

// OTP operations

func (m *MemoryStore) CreateOTP(otp *models.OtpCode) (*models.OtpCode, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	m.otpCounter++
	otp.ID = m.otpCounter
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now()
	}

	copied := *otp
	m.otps[otp.ID] = &copied
	return otp, nil
}

func (m *MemoryStore) GetLatestOTP(userID uuid.UUID) (*models.OtpCode, error) {
	m.otpMu.RLock()
	defer m.otpMu.RUnlock()

	var latest *models.OtpCode
	for _, o := range m.otps {
		if o.UserID != userID {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) ||
			(o.CreatedAt.Equal(latest.CreatedAt) && o.ID > latest.ID) {
			latest = o
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (m *MemoryStore) CountOTPsSince(userID uuid.UUID, since time.Time) (int64, error) {
	m.otpMu.RLock()
	defer m.otpMu.RUnlock()

	var count int64
	for _, o := range m.otps {
		if o.UserID == userID && o.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) IncrementOTPAttempts(otpID uint) error {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	otp, exists := m.otps[otpID]
	if !exists {
		return ErrNotFound
	}
	otp.Attempts++
	return nil
}

func (m *MemoryStore) DeleteOTPsForUser(userID uuid.UUID) error {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	for id, o := range m.otps {
		if o.UserID == userID {
			delete(m.otps, id)
		}
	}
	return nil
}

func (m *MemoryStore) DeleteExpiredOTPs() (int64, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	now := time.Now()
	var removed int64
	for id, o := range m.otps {
		if now.After(o.ExpiresAt) {
			delete(m.otps, id)
			removed++
		}
	}
	return removed, nil
}
