// Package tracker owns all mutation of the tracking store: the per-cycle
// change detection and the retention sweep. The notification side only ever
// reads what this package writes.
package tracker

import (
	"fmt"
	"time"

	"github.com/hackgods/slotwatch/internal/appointment"
	"github.com/hackgods/slotwatch/internal/store"
)

// ChangeSet is the outcome of one detection cycle.
type ChangeSet struct {
	// NewlyAvailable holds appointments seen available for the first time
	// plus tracked ones that transitioned back into available this cycle.
	NewlyAvailable []appointment.Appointment
	// StatusChanged holds every appointment whose status differs from the
	// previous observation.
	StatusChanged []appointment.Appointment
	// Removed holds records whose ephemeral identity was absent from this
	// cycle's fetch result; they have already been evicted from the store.
	Removed []*appointment.TrackedAppointment
	// AllTracked is the store content after this cycle was applied.
	AllTracked []*appointment.TrackedAppointment
}

// Detector diffs each cycle's fetch result against the tracking store.
type Detector struct {
	store *store.TrackingStore
	now   func() time.Time
}

func NewDetector(s *store.TrackingStore) *Detector {
	return NewDetectorWithClock(s, time.Now)
}

// NewDetectorWithClock is NewDetector with an injected time source, for
// deterministic history timestamps in tests.
func NewDetectorWithClock(s *store.TrackingStore, now func() time.Time) *Detector {
	return &Detector{store: s, now: now}
}

// Process applies one cycle's fetch result to the tracking store and
// persists it. Identities are the source's per-cycle ones; a duplicate
// identity within a single result is not de-duplicated here, the last one
// processed wins. An empty result removes everything currently tracked.
//
// A persist failure still returns the computed ChangeSet: the in-memory
// state is kept and the next cycle retries the write.
func (d *Detector) Process(incoming []appointment.Appointment) (*ChangeSet, error) {
	now := d.now()
	cs := &ChangeSet{}
	seen := make(map[string]struct{}, len(incoming))

	for _, appt := range incoming {
		seen[appt.ID] = struct{}{}

		rec, ok := d.store.Get(appt.ID)
		if !ok {
			rec = &appointment.TrackedAppointment{
				Appointment: appt,
				FirstSeen:   now,
				LastSeen:    now,
				StatusHistory: []appointment.StatusChange{{
					Timestamp:      now,
					PreviousStatus: appointment.StatusUnknown,
					NewStatus:      appt.Status,
					Reason:         "first detection",
				}},
			}
			d.store.Put(appt.ID, rec)
			if appt.Status == appointment.StatusAvailable {
				cs.NewlyAvailable = append(cs.NewlyAvailable, appt)
			}
			continue
		}

		previous := rec.Appointment.Status
		rec.LastSeen = now
		rec.Appointment = appt

		if appt.Status == previous {
			continue
		}

		rec.StatusHistory = append(rec.StatusHistory, appointment.StatusChange{
			Timestamp:      now,
			PreviousStatus: previous,
			NewStatus:      appt.Status,
			Reason:         fmt.Sprintf("status changed from %s to %s", previous, appt.Status),
		})

		// A tracked slot coming back to available is surfaced the same way
		// as a brand-new one.
		if previous != appointment.StatusAvailable && appt.Status == appointment.StatusAvailable {
			cs.NewlyAvailable = append(cs.NewlyAvailable, appt)
		}
		cs.StatusChanged = append(cs.StatusChanged, appt)
	}

	for id, rec := range d.store.All() {
		if _, ok := seen[id]; ok {
			continue
		}
		cs.Removed = append(cs.Removed, rec)
		d.store.Delete(id)
	}

	for _, rec := range d.store.All() {
		cs.AllTracked = append(cs.AllTracked, rec)
	}

	if err := d.store.Save(); err != nil {
		return cs, fmt.Errorf("persist tracking store: %w", err)
	}
	return cs, nil
}
