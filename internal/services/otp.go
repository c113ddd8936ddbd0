package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/fscip/fscip-backend/internal/cache"
	"github.com/fscip/fscip-backend/internal/config"
	"github.com/fscip/fscip-backend/internal/models"
	"github.com/fscip/fscip-backend/internal/storage"
	"github.com/fscip/fscip-backend/internal/utils"
)

// ErrService marks unexpected infrastructure failures (store unavailable,
// entropy exhaustion). Domain outcomes are returned as results, never as
// errors, so callers can branch without error inspection.
var ErrService = errors.New("otp service failure")

// Outcome is a domain-level result of an OTP operation
type Outcome string

const (
	OutcomeSuccess       Outcome = "SUCCESS"
	OutcomeUserNotFound  Outcome = "USER_NOT_FOUND"
	OutcomeAlreadyActive Outcome = "ALREADY_ACTIVE"
	OutcomeRateLimited   Outcome = "RATE_LIMITED"
	OutcomeSendFailure   Outcome = "SEND_FAILURE"
	OutcomeLocked        Outcome = "LOCKED"
	OutcomeExpired       Outcome = "EXPIRED"
	OutcomeNoActiveOTP   Outcome = "NO_ACTIVE_OTP"
	OutcomeInvalidCode   Outcome = "INVALID_CODE"
)

// RequestResult is the outcome of an OTP issuance
type RequestResult struct {
	Outcome          Outcome
	Email            string
	ExpiresInSeconds int64
}

// VerifyResult is the outcome of an OTP verification
type VerifyResult struct {
	Outcome           Outcome
	UserID            uuid.UUID
	Status            models.UserStatus
	RemainingAttempts int
}

// OTPService orchestrates the OTP lifecycle: issuance with rate limiting
// and supersede semantics, attempt-limited verification, and the
// PENDING -> ACTIVE transition of the owning account. The durable store is
// the source of truth; the cache is a write-through accelerator populated
// only after the durable write succeeds.
type OTPService struct {
	store   storage.Store
	cache   *cache.OTPCache
	limiter *RateLimiter
	mailer  EmailService
	cfg     config.OTPConfig
}

// NewOTPService creates the OTP lifecycle manager
func NewOTPService(store storage.Store, otpCache *cache.OTPCache, limiter *RateLimiter, mailer EmailService, cfg config.OTPConfig) *OTPService {
	return &OTPService{
		store:   store,
		cache:   otpCache,
		limiter: limiter,
		mailer:  mailer,
		cfg:     cfg,
	}
}

// RequestOTP issues a new code for the given email address. Any prior code
// for the user is superseded. A send failure is reported to the caller but
// the issued code stays usable; the stores are not rolled back.
func (s *OTPService) RequestOTP(email string) (*RequestResult, error) {
	log.Printf("Processing OTP request for email: %s", email)

	user, err := s.store.GetUserByEmail(email)
	if errors.Is(err, storage.ErrNotFound) {
		log.Printf("OTP request for non-existent email: %s", email)
		return &RequestResult{Outcome: OutcomeUserNotFound}, nil
	}
	if err != nil {
		return nil, s.serviceErr("find user by email", err)
	}

	if user.IsActive() {
		log.Printf("OTP request for already active user: %s", email)
		return &RequestResult{Outcome: OutcomeAlreadyActive}, nil
	}

	allowed, err := s.limiter.Allow(user.UserID)
	if err != nil {
		return nil, s.serviceErr("check rate limit", err)
	}
	if !allowed {
		log.Printf("Rate limit exceeded for user: %s", email)
		return &RequestResult{Outcome: OutcomeRateLimited}, nil
	}

	code, err := utils.GenerateSecureOTP()
	if err != nil {
		return nil, s.serviceErr("generate code", err)
	}
	expiresAt := time.Now().Add(s.cfg.ExpiryDuration())

	// Supersede: at most one live record per user
	if err := s.store.DeleteOTPsForUser(user.UserID); err != nil {
		return nil, s.serviceErr("delete superseded codes", err)
	}
	otp := &models.OtpCode{
		UserID:    user.UserID,
		Code:      code,
		ExpiresAt: expiresAt,
	}
	if _, err := s.store.CreateOTP(otp); err != nil {
		return nil, s.serviceErr("persist code", err)
	}
	s.limiter.RecordIssue(user.UserID)

	// Cache only after the durable write committed
	s.cache.Store(user.UserID, code, s.cfg.ExpiryDuration())

	if !s.mailer.SendOTP(user.Email, code, s.cfg.ExpiryMinutes) {
		log.Printf("Failed to send OTP email to: %s", user.Email)
		return &RequestResult{Outcome: OutcomeSendFailure}, nil
	}

	log.Printf("OTP generated and sent for email: %s", user.Email)
	return &RequestResult{
		Outcome:          OutcomeSuccess,
		Email:            user.Email,
		ExpiresInSeconds: int64(s.cfg.ExpiryMinutes) * 60,
	}, nil
}

// VerifyOTP checks a submitted code. On a match the user becomes ACTIVE,
// all OTP state is cleared and a welcome mail goes out best-effort. On a
// mismatch the remaining attempts drop by one in both tiers.
func (s *OTPService) VerifyOTP(email, submittedCode string) (*VerifyResult, error) {
	log.Printf("Processing OTP verification for email: %s", email)

	user, err := s.store.GetUserByEmail(email)
	if errors.Is(err, storage.ErrNotFound) {
		log.Printf("OTP verification for non-existent email: %s", email)
		return &VerifyResult{Outcome: OutcomeUserNotFound}, nil
	}
	if err != nil {
		return nil, s.serviceErr("find user by email", err)
	}

	// Resolve the expected code: cache first, durable record on a miss.
	// A live cache entry always has attempts remaining - exhaustion evicts
	// it - so the lockout checks live on the fallback path.
	expectedCode, cached := s.cache.Get(user.UserID)
	var record *models.OtpCode
	if cached {
		if s.cache.RemainingAttempts(user.UserID) <= 0 {
			log.Printf("OTP verification blocked - no attempts remaining for user: %s", email)
			return &VerifyResult{Outcome: OutcomeLocked}, nil
		}
	} else {
		record, err = s.store.GetLatestOTP(user.UserID)
		if errors.Is(err, storage.ErrNotFound) {
			log.Printf("No OTP found for user: %s", email)
			return &VerifyResult{Outcome: OutcomeNoActiveOTP}, nil
		}
		if err != nil {
			return nil, s.serviceErr("load latest code", err)
		}
		if record.IsExpired() {
			log.Printf("Expired OTP verification attempt for user: %s", email)
			return &VerifyResult{Outcome: OutcomeExpired}, nil
		}
		if record.IsLocked(s.cfg.MaxAttempts) {
			log.Printf("Locked OTP verification attempt for user: %s", email)
			return &VerifyResult{Outcome: OutcomeLocked}, nil
		}
		expectedCode = record.Code
	}

	// Exact string match, no normalization
	if submittedCode != expectedCode {
		remaining, err := s.registerFailedAttempt(user.UserID, cached, record)
		if err != nil {
			return nil, err
		}
		log.Printf("Invalid OTP verification attempt for user: %s | Remaining attempts: %d", email, remaining)
		return &VerifyResult{Outcome: OutcomeInvalidCode, RemainingAttempts: remaining}, nil
	}

	// Valid code: activate the account
	user.Activate(time.Now())
	if err := s.store.UpdateUser(user); err != nil {
		return nil, s.serviceErr("activate user", err)
	}

	// Clear all OTP state for the user
	if err := s.store.DeleteOTPsForUser(user.UserID); err != nil {
		return nil, s.serviceErr("clear codes", err)
	}
	s.cache.Remove(user.UserID)

	// Welcome mail is fire-and-forget; a failure must not undo verification
	go func(email, name string) {
		if !s.mailer.SendWelcome(email, name) {
			log.Printf("Failed to send welcome email to: %s", email)
		}
	}(user.Email, user.FullName)

	log.Printf("OTP verified and user activated: %s", user.Email)
	return &VerifyResult{
		Outcome: OutcomeSuccess,
		UserID:  user.UserID,
		Status:  user.Status,
	}, nil
}

// registerFailedAttempt burns one attempt in both tiers and returns the
// remaining count. The cache counter is authoritative while an entry is
// live; on a cache miss the durable record's incrementing counter is.
func (s *OTPService) registerFailedAttempt(userID uuid.UUID, cached bool, record *models.OtpCode) (int, error) {
	remaining := s.cache.DecrementAttempts(userID)

	if record == nil {
		var err error
		record, err = s.store.GetLatestOTP(userID)
		if errors.Is(err, storage.ErrNotFound) {
			return remaining, nil
		}
		if err != nil {
			return 0, s.serviceErr("load latest code", err)
		}
	}

	if err := s.store.IncrementOTPAttempts(record.ID); err != nil {
		return 0, s.serviceErr("record failed attempt", err)
	}

	if !cached {
		remaining = s.cfg.MaxAttempts - record.Attempts - 1
		if remaining < 0 {
			remaining = 0
		}
	}
	return remaining, nil
}

// serviceErr logs an infrastructure failure with full detail and returns a
// generic wrapped error that does not leak internals to the boundary.
func (s *OTPService) serviceErr(op string, err error) error {
	log.Printf("OTP service failure while trying to %s: %v", op, err)
	return fmt.Errorf("%w: %s", ErrService, op)
}
