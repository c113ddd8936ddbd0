package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fscip/fscip-backend/internal/storage"
)

// RateLimiter throttles OTP issuance per user: at most maxRequests
// issuances within a trailing window. Because issuance supersedes (deletes)
// the user's prior durable records, the store's count-since can only ever
// see the latest record, so the limiter keeps its own windowed issuance log
// and uses the durable count as a floor after a restart.
type RateLimiter struct {
	store       storage.Store
	window      time.Duration
	maxRequests int

	mu     sync.Mutex
	issued map[uuid.UUID][]time.Time
}

// NewRateLimiter creates a limiter allowing maxRequests issuances per window
func NewRateLimiter(store storage.Store, window time.Duration, maxRequests int) *RateLimiter {
	return &RateLimiter{
		store:       store,
		window:      window,
		maxRequests: maxRequests,
		issued:      make(map[uuid.UUID][]time.Time),
	}
}

// Allow reports whether the user may request another OTP right now
func (l *RateLimiter) Allow(userID uuid.UUID) (bool, error) {
	since := time.Now().Add(-l.window)

	count := l.recentIssues(userID, since)

	durable, err := l.store.CountOTPsSince(userID, since)
	if err != nil {
		return false, err
	}
	if durable > count {
		count = durable
	}

	return count < int64(l.maxRequests), nil
}

// RecordIssue notes a successful issuance for the user
func (l *RateLimiter) RecordIssue(userID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.issued[userID] = append(l.issued[userID], time.Now())
}

// recentIssues counts logged issuances inside the window, pruning the rest
func (l *RateLimiter) recentIssues(userID uuid.UUID, since time.Time) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	stamps := l.issued[userID]
	kept := stamps[:0]
	for _, ts := range stamps {
		if ts.After(since) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(l.issued, userID)
	} else {
		l.issued[userID] = kept
	}
	return int64(len(kept))
}
