package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/hackgods/slotwatch/internal/store"
)

// CleanupStats reports how many records one sweep evicted.
type CleanupStats struct {
	TrackingRemoved int `json:"trackingRemoved"`
	LedgerRemoved   int `json:"ledgerRemoved"`
}

// Sweeper evicts tracking records and ledger entries older than the
// retention horizon. It must not run interleaved with a detection cycle;
// the engine serializes both behind the same lock.
type Sweeper struct {
	tracking *store.TrackingStore
	ledger   *store.Ledger
	maxAge   time.Duration
	now      func() time.Time
}

func NewSweeper(tracking *store.TrackingStore, ledger *store.Ledger, maxAge time.Duration) *Sweeper {
	return NewSweeperWithClock(tracking, ledger, maxAge, time.Now)
}

// NewSweeperWithClock is NewSweeper with an injected time source.
func NewSweeperWithClock(tracking *store.TrackingStore, ledger *store.Ledger, maxAge time.Duration, now func() time.Time) *Sweeper {
	return &Sweeper{
		tracking: tracking,
		ledger:   ledger,
		maxAge:   maxAge,
		now:      now,
	}
}

// Cleanup removes everything older than the horizon and persists whichever
// documents actually changed.
func (s *Sweeper) Cleanup() (CleanupStats, error) {
	cutoff := s.now().Add(-s.maxAge)

	stats := CleanupStats{
		TrackingRemoved: s.tracking.SweepOlderThan(cutoff),
		LedgerRemoved:   s.ledger.SweepOlderThan(cutoff),
	}

	var errs []error
	if stats.TrackingRemoved > 0 {
		if err := s.tracking.Save(); err != nil {
			errs = append(errs, fmt.Errorf("cleanup tracking: %w", err))
		}
	}
	if stats.LedgerRemoved > 0 {
		if err := s.ledger.Save(); err != nil {
			errs = append(errs, fmt.Errorf("cleanup ledger: %w", err))
		}
	}
	return stats, errors.Join(errs...)
}
