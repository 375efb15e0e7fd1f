// Package jobs hosts background maintenance tasks.
package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/asabsob/trustedlinks/internal/storage"
)

// CleanupJob periodically removes expired OTP records. MongoDB handles this
// with a TTL index; the in-memory and PostgreSQL backends need the sweep.
// Verification stays correct without it because expiry is also checked at
// consume time; the job only reclaims storage.
type CleanupJob struct {
	store    storage.Store
	interval time.Duration
	log      zerolog.Logger
	stop     chan struct{}
}

// NewCleanupJob creates the sweeper. A non-positive interval falls back to
// one minute.
func NewCleanupJob(store storage.Store, interval time.Duration, log zerolog.Logger) *CleanupJob {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CleanupJob{
		store:    store,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (j *CleanupJob) Start() {
	go j.run()
	j.log.Info().Dur("interval", j.interval).Msg("OTP cleanup job started")
}

// Stop halts the sweep loop. Safe to call once.
func (j *CleanupJob) Stop() {
	close(j.stop)
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stop:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *CleanupJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := j.store.DeleteExpiredOTPs(ctx, time.Now())
	if err != nil {
		j.log.Error().Err(err).Msg("OTP cleanup sweep failed")
		return
	}
	if removed > 0 {
		j.log.Info().Int64("removed", removed).Msg("expired OTP records removed")
	}
}
