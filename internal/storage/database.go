package storage

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fscip/fscip-backend/internal/models"
)

// DatabaseStore is the PostgreSQL-backed store
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by the given GORM connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// User operations

func (s *DatabaseStore) CreateUser(reg *models.UserRegistration) (*models.User, error) {
	user := &models.User{
		Email:    reg.Email,
		FullName: reg.FullName,
		Status:   models.UserStatusPending,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *DatabaseStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DatabaseStore) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DatabaseStore) UpdateUser(user *models.User) error {
	return s.db.Save(user).Error
}

// OTP operations

func (s *DatabaseStore) CreateOTP(otp *models.OtpCode) (*models.OtpCode, error) {
	if err := s.db.Create(otp).Error; err != nil {
		return nil, err
	}
	return otp, nil
}

func (s *DatabaseStore) GetLatestOTP(userID uuid.UUID) (*models.OtpCode, error) {
	var otp models.OtpCode
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&otp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (s *DatabaseStore) CountOTPsSince(userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&models.OtpCode{}).
		Where("user_id = ? AND created_at > ?", userID, since).
		Count(&count).Error
	return count, err
}

func (s *DatabaseStore) IncrementOTPAttempts(otpID uint) error {
	return s.db.Model(&models.OtpCode{}).
		Where("id = ?", otpID).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

func (s *DatabaseStore) DeleteOTPsForUser(userID uuid.UUID) error {
	return s.db.Where("user_id = ?", userID).Delete(&models.OtpCode{}).Error
}

func (s *DatabaseStore) DeleteExpiredOTPs() (int64, error) {
	result := s.db.Where("expires_at < ?", time.Now()).Delete(&models.OtpCode{})
	return result.RowsAffected, result.Error
}
