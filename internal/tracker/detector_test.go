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

func newTestDetector(t *testing.T) (*Detector, *store.TrackingStore, *fakeClock) {
	t.Helper()
	s := store.NewTrackingStore(filepath.Join(t.TempDir(), "tracked.json"))
	clock := &fakeClock{at: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)}
	d := NewDetectorWithClock(s, clock.Now)
	return d, s, clock
}

type fakeClock struct {
	at time.Time
}

func (c *fakeClock) Now() time.Time { return c.at }

func (c *fakeClock) Advance(d time.Duration) { c.at = c.at.Add(d) }

func slot(id string, status appointment.Status) appointment.Appointment {
	return appointment.Appointment{
		ID:           id,
		Date:         "2025-02-15",
		Time:         "09:00-12:00",
		Location:     "A",
		ExamCategory: "IELTS",
		City:         "Tehran",
		Status:       status,
	}
}

func TestProcessFirstDetection(t *testing.T) {
	d, s, clock := newTestDetector(t)

	cs, err := d.Process([]appointment.Appointment{slot("x1", appointment.StatusAvailable)})
	require.NoError(t, err)

	require.Len(t, cs.NewlyAvailable, 1)
	assert.Empty(t, cs.StatusChanged)
	assert.Empty(t, cs.Removed)
	require.Len(t, cs.AllTracked, 1)

	rec, ok := s.Get("x1")
	require.True(t, ok)
	assert.True(t, rec.FirstSeen.Equal(clock.Now()))
	require.Len(t, rec.StatusHistory, 1)
	assert.Equal(t, appointment.StatusUnknown, rec.StatusHistory[0].PreviousStatus)
	assert.Equal(t, appointment.StatusAvailable, rec.StatusHistory[0].NewStatus)
	assert.Equal(t, "first detection", rec.StatusHistory[0].Reason)
}

func TestProcessFirstDetectionNotAvailable(t *testing.T) {
	d, _, _ := newTestDetector(t)

	cs, err := d.Process([]appointment.Appointment{slot("x1", appointment.StatusFilled)})
	require.NoError(t, err)
	assert.Empty(t, cs.NewlyAvailable)
	assert.Len(t, cs.AllTracked, 1)
}

func TestProcessUnchangedStatusUpdatesLastSeenOnly(t *testing.T) {
	d, s, clock := newTestDetector(t)

	_, err := d.Process([]appointment.Appointment{slot("x1", appointment.StatusAvailable)})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	cs, err := d.Process([]appointment.Appointment{slot("x1", appointment.StatusAvailable)})
	require.NoError(t, err)

	assert.Empty(t, cs.NewlyAvailable)
	assert.Empty(t, cs.StatusChanged)

	rec, _ := s.Get("x1")
	assert.True(t, rec.LastSeen.Equal(clock.Now()))
	assert.Len(t, rec.StatusHistory, 1)
}

func TestProcessStatusChangeAppendsHistory(t *testing.T) {
	d, s, clock := newTestDetector(t)

	_, err := d.Process([]appointment.Appointment{slot("x1", appointment.StatusAvailable)})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	cs, err := d.Process([]appointment.Appointment{slot("x1", appointment.StatusFilled)})
	require.NoError(t, err)

	require.Len(t, cs.StatusChanged, 1)
	assert.Empty(t, cs.NewlyAvailable)

	rec, _ := s.Get("x1")
	require.Len(t, rec.StatusHistory, 2)
	last := rec.StatusHistory[1]
	assert.Equal(t, appointment.StatusAvailable, last.PreviousStatus)
	assert.Equal(t, appointment.StatusFilled, last.NewStatus)
	assert.True(t, last.Timestamp.After(rec.StatusHistory[0].Timestamp))
}

func TestProcessReavailabilitySurfacesAsNewlyAvailable(t *testing.T) {
	d, _, clock := newTestDetector(t)

	_, err := d.Process([]appointment.Appointment{slot("x1", appointment.StatusFilled)})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	cs, err := d.Process([]appointment.Appointment{slot("x1", appointment.StatusAvailable)})
	require.NoError(t, err)

	require.Len(t, cs.NewlyAvailable, 1)
	require.Len(t, cs.StatusChanged, 1)
	assert.Equal(t, "x1", cs.NewlyAvailable[0].ID)
}

func TestProcessRemovesAbsentIdentities(t *testing.T) {
	d, s, clock := newTestDetector(t)

	_, err := d.Process([]appointment.Appointment{
		slot("x1", appointment.StatusAvailable),
		slot("x2", appointment.StatusFilled),
	})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	cs, err := d.Process([]appointment.Appointment{slot("x1", appointment.StatusAvailable)})
	require.NoError(t, err)

	require.Len(t, cs.Removed, 1)
	assert.Equal(t, "x2", cs.Removed[0].Appointment.ID)
	require.Len(t, cs.AllTracked, 1)
	_, ok := s.Get("x2")
	assert.False(t, ok)
}

func TestProcessEmptyInputRemovesEverything(t *testing.T) {
	d, s, _ := newTestDetector(t)

	_, err := d.Process([]appointment.Appointment{
		slot("x1", appointment.StatusAvailable),
		slot("x2", appointment.StatusPending),
	})
	require.NoError(t, err)

	cs, err := d.Process(nil)
	require.NoError(t, err)
	assert.Len(t, cs.Removed, 2)
	assert.Empty(t, cs.AllTracked)
	assert.Equal(t, 0, s.Len())
}

func TestProcessPersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracked.json")

	s := store.NewTrackingStore(path)
	d := NewDetector(s)
	_, err := d.Process([]appointment.Appointment{slot("x1", appointment.StatusAvailable)})
	require.NoError(t, err)

	reloaded := store.NewTrackingStore(path)
	require.NoError(t, reloaded.Load())
	rec, ok := reloaded.Get("x1")
	require.True(t, ok)
	assert.Equal(t, appointment.StatusAvailable, rec.CurrentStatus())
}

func TestProcessDuplicateIdentityLastWins(t *testing.T) {
	d, s, _ := newTestDetector(t)

	cs, err := d.Process([]appointment.Appointment{
		slot("x1", appointment.StatusFilled),
		slot("x1", appointment.StatusAvailable),
	})
	require.NoError(t, err)

	rec, ok := s.Get("x1")
	require.True(t, ok)
	assert.Equal(t, appointment.StatusAvailable, rec.CurrentStatus())
	// The duplicate is processed as a status change on the same record.
	assert.Len(t, cs.AllTracked, 1)
}
