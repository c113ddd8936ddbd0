// Package cache provides the in-process OTP cache: a concurrency-safe,
// self-expiring mirror of the durable OTP records used for low-latency
// verification and live attempt counting.
package cache

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSweepInterval is how often the background sweeper evicts expired
// entries that no lookup has touched.
const DefaultSweepInterval = time.Minute

type entry struct {
	code              string
	expiresAt         time.Time
	remainingAttempts int
}

func (e *entry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// OTPCache keeps one live code per user. A single mutex guards the map and
// the per-entry attempt counters, so check-and-evict and decrement are
// atomic with respect to concurrent callers.
type OTPCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry

	maxAttempts   int
	sweepInterval time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates an OTP cache. Call Start to run the background sweeper and
// Stop on shutdown.
func New(maxAttempts int) *OTPCache {
	return &OTPCache{
		entries:       make(map[uuid.UUID]*entry),
		maxAttempts:   maxAttempts,
		sweepInterval: DefaultSweepInterval,
		stop:          make(chan struct{}),
	}
}

// NewWithSweepInterval creates a cache with a custom sweep interval (tests)
func NewWithSweepInterval(maxAttempts int, interval time.Duration) *OTPCache {
	c := New(maxAttempts)
	c.sweepInterval = interval
	return c
}

// Start launches the periodic cleanup task
func (c *OTPCache) Start() {
	go func() {
		ticker := time.NewTicker(c.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.sweep()
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop cancels the background sweeper. Safe to call more than once.
func (c *OTPCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

// Store inserts or replaces the entry for a user, resetting the remaining
// attempts to the maximum.
func (c *OTPCache) Store(userID uuid.UUID, code string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[userID] = &entry{
		code:              code,
		expiresAt:         time.Now().Add(ttl),
		remainingAttempts: c.maxAttempts,
	}
}

// Get returns the cached code for a user. An expired entry is evicted and
// reported as absent.
func (c *OTPCache) Get(userID uuid.UUID) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[userID]
	if !exists {
		return "", false
	}
	if e.isExpired() {
		delete(c.entries, userID)
		return "", false
	}
	return e.code, true
}

// HasActive reports whether the user has an unexpired entry, without
// disclosing the code. Expired entries are evicted.
func (c *OTPCache) HasActive(userID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[userID]
	if !exists {
		return false
	}
	if e.isExpired() {
		delete(c.entries, userID)
		return false
	}
	return true
}

// RemainingAttempts returns the user's remaining verification attempts, or
// 0 if no live entry exists.
func (c *OTPCache) RemainingAttempts(userID uuid.UUID) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[userID]
	if !exists || e.isExpired() {
		return 0
	}
	return e.remainingAttempts
}

// DecrementAttempts atomically decrements the user's remaining attempts and
// returns the new value (floor 0). When the counter reaches 0 the entry is
// evicted, locking the OTP.
func (c *OTPCache) DecrementAttempts(userID uuid.UUID) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[userID]
	if !exists || e.isExpired() {
		delete(c.entries, userID)
		return 0
	}

	if e.remainingAttempts > 0 {
		e.remainingAttempts--
	}
	if e.remainingAttempts <= 0 {
		delete(c.entries, userID)
		return 0
	}
	return e.remainingAttempts
}

// ResetAttempts restores the counter to the maximum for a live entry
func (c *OTPCache) ResetAttempts(userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[userID]
	if exists && !e.isExpired() {
		e.remainingAttempts = c.maxAttempts
	}
}

// Remove unconditionally evicts the user's entry
func (c *OTPCache) Remove(userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, userID)
}

// Len returns the number of cached entries, expired or not
func (c *OTPCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// sweep evicts expired entries so memory stays bounded between lookups
func (c *OTPCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for userID, e := range c.entries {
		if e.isExpired() {
			delete(c.entries, userID)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("OTP cache sweep removed %d expired entries", removed)
	}
}
