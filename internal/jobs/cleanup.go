package jobs

import (
	"log"
	"sync"
	"time"

	"github.com/fscip/fscip-backend/internal/storage"
)

// DefaultCleanupInterval is how often expired OTP records are purged from
// the durable store.
const DefaultCleanupInterval = 10 * time.Minute

// CleanupJob periodically deletes expired OTP records so the table does not
// accumulate dead rows. The fast cache sweeps itself; this job is the
// durable-store counterpart.
type CleanupJob struct {
	store    storage.Store
	interval time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewCleanupJob creates a cleanup job with the default interval
func NewCleanupJob(store storage.Store) *CleanupJob {
	return &CleanupJob{
		store:    store,
		interval: DefaultCleanupInterval,
		stop:     make(chan struct{}),
	}
}

// Start begins the periodic cleanup
func (j *CleanupJob) Start() {
	log.Println("Starting expired OTP cleanup job...")
	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				j.run()
			case <-j.stop:
				return
			}
		}
	}()
}

// Stop halts the cleanup job. Safe to call more than once.
func (j *CleanupJob) Stop() {
	j.stopOnce.Do(func() {
		close(j.stop)
	})
	log.Println("Stopped expired OTP cleanup job")
}

func (j *CleanupJob) run() {
	removed, err := j.store.DeleteExpiredOTPs()
	if err != nil {
		log.Printf("Error deleting expired OTPs: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Deleted %d expired OTP records", removed)
	}
}
