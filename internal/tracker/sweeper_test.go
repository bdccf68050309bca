package tracker

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/slotwatch/internal/appointment"
	"github.com/hackgods/slotwatch/internal/store"
)

func TestCleanupEvictsBeyondHorizon(t *testing.T) {
	dir := t.TempDir()
	tracking := store.NewTrackingStore(filepath.Join(dir, "tracked.json"))
	ledger := store.NewLedger(filepath.Join(dir, "ledger.json"))

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	horizon := 30 * 24 * time.Hour

	stale := slot("old", appointment.StatusFilled)
	tracking.Put("old", &appointment.TrackedAppointment{
		Appointment: stale,
		FirstSeen:   now.Add(-60 * 24 * time.Hour),
		LastSeen:    now.Add(-45 * 24 * time.Hour),
	})
	fresh := slot("new", appointment.StatusAvailable)
	tracking.Put("new", &appointment.TrackedAppointment{
		Appointment: fresh,
		FirstSeen:   now.Add(-time.Hour),
		LastSeen:    now.Add(-time.Hour),
	})

	ledger.Mark("stale-key", now.Add(-31*24*time.Hour))
	ledger.Mark("fresh-key", now.Add(-time.Hour))

	sw := NewSweeperWithClock(tracking, ledger, horizon, func() time.Time { return now })

	stats, err := sw.Cleanup()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TrackingRemoved)
	assert.Equal(t, 1, stats.LedgerRemoved)

	// Nothing older than the horizon remains.
	cutoff := now.Add(-horizon)
	for _, rec := range tracking.All() {
		assert.False(t, rec.LastSeen.Before(cutoff))
	}
	_, ok := ledger.LastNotified("stale-key")
	assert.False(t, ok)
}

func TestCleanupNothingToDo(t *testing.T) {
	dir := t.TempDir()
	tracking := store.NewTrackingStore(filepath.Join(dir, "tracked.json"))
	ledger := store.NewLedger(filepath.Join(dir, "ledger.json"))

	sw := NewSweeper(tracking, ledger, 30*24*time.Hour)
	stats, err := sw.Cleanup()
	require.NoError(t, err)
	assert.Equal(t, CleanupStats{}, stats)
}
