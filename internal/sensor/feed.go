package sensor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Feed keeps the last good snapshot and marks it stale when a read fails.
// It belongs to the scheduler loop and is not safe for concurrent use.
type Feed struct {
	sampler  Sampler
	logger   *zap.Logger
	current  Snapshot
	hasValue bool
	stale    bool
	failures int
	lastErr  error
}

// NewFeed creates a feed around a sampler
func NewFeed(sampler Sampler, logger *zap.Logger) *Feed {
	return &Feed{
		sampler: sampler,
		logger:  logger,
	}
}

// Refresh samples once. It returns true when a new snapshot replaced the
// previous one; on failure the old snapshot is kept and flagged stale.
func (f *Feed) Refresh(ctx context.Context, now time.Time) bool {
	snap, err := f.sampler.Sample(ctx)
	if err == nil {
		err = snap.Validate()
	}
	if err != nil {
		f.stale = true
		f.failures++
		f.lastErr = fmt.Errorf("failed to sample sensors: %w", err)

		// Log on the first failure of a streak, then every 30 failures
		if f.failures == 1 || f.failures%30 == 0 {
			f.logger.Warn("sensor read failed, keeping last snapshot",
				zap.Error(err),
				zap.Int("consecutive_failures", f.failures),
			)
		}
		return false
	}

	if snap.Timestamp.IsZero() {
		snap.Timestamp = now
	}
	if f.failures > 0 {
		f.logger.Info("sensor read recovered", zap.Int("failed_reads", f.failures))
	}

	f.current = snap
	f.hasValue = true
	f.stale = false
	f.failures = 0
	f.lastErr = nil
	return true
}

// Current returns the latest snapshot and whether any read has ever succeeded
func (f *Feed) Current() (Snapshot, bool) {
	return f.current, f.hasValue
}

// Stale reports whether the last read failed
func (f *Feed) Stale() bool {
	return f.stale
}

// Failures returns the number of consecutive failed reads
func (f *Feed) Failures() int {
	return f.failures
}

// LastError returns the most recent read error, nil after a good read
func (f *Feed) LastError() error {
	return f.lastErr
}
