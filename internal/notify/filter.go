// Package notify decides which appointments produce outward notifications
// and delivers them. The filter is deliberately conservative: when in doubt
// it suppresses, and every decision carries a machine-readable reason so
// the "why" never has to be scraped out of log text.
package notify

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hackgods/slotwatch/internal/appointment"
	"github.com/hackgods/slotwatch/internal/store"
)

// Stable reason strings attached to every decision.
const (
	ReasonNewAvailable    = "new available appointment"
	ReasonNoPriorNotice   = "no previous notification for this key"
	ReasonReavailable     = "became available again after being unavailable"
	ReasonAlreadyNotified = "already notified, no qualifying status transition since"
)

// ErrEligibilityInvariant signals that a non-available appointment made it
// into the eligible set. This is a defect, not a runtime condition; the
// whole batch is rejected rather than silently re-filtered.
var ErrEligibilityInvariant = errors.New("non-available appointment selected for notification")

// Decision is the eligibility outcome for one candidate.
type Decision struct {
	Appointment  appointment.Appointment `json:"appointment"`
	Key          string                  `json:"key"`
	ShouldNotify bool                    `json:"shouldNotify"`
	Reason       string                  `json:"reason"`
}

// Filter evaluates notification eligibility against the tracking store and
// the notification ledger. It reads both, writes only the ledger (and the
// per-record notification counter) via MarkNotified.
type Filter struct {
	tracking *store.TrackingStore
	ledger   *store.Ledger
	now      func() time.Time
}

func NewFilter(tracking *store.TrackingStore, ledger *store.Ledger) *Filter {
	return NewFilterWithClock(tracking, ledger, time.Now)
}

// NewFilterWithClock is NewFilter with an injected time source, so tests
// can order ledger stamps against history timestamps deterministically.
func NewFilterWithClock(tracking *store.TrackingStore, ledger *store.Ledger, now func() time.Time) *Filter {
	return &Filter{
		tracking: tracking,
		ledger:   ledger,
		now:      now,
	}
}

// Decisions evaluates every candidate and returns one Decision per input,
// in input order.
func (f *Filter) Decisions(candidates []appointment.Appointment) []Decision {
	decisions := make([]Decision, 0, len(candidates))
	for _, appt := range candidates {
		decisions = append(decisions, f.decide(appt))
	}
	return decisions
}

func (f *Filter) decide(appt appointment.Appointment) Decision {
	d := Decision{Appointment: appt, Key: appt.Key()}

	if appt.Status != appointment.StatusAvailable {
		d.Reason = fmt.Sprintf("not available (%s)", appt.Status)
		return d
	}

	rec, tracked := f.tracking.Get(appt.ID)
	lastNotified, notified := f.ledger.LastNotified(d.Key)

	switch {
	case !tracked && !notified:
		d.ShouldNotify = true
		d.Reason = ReasonNewAvailable
	case !notified:
		d.ShouldNotify = true
		d.Reason = ReasonNoPriorNotice
	case tracked && recoveredSince(rec.StatusHistory, lastNotified):
		d.ShouldNotify = true
		d.Reason = ReasonReavailable
	default:
		d.Reason = ReasonAlreadyNotified
	}
	return d
}

// recoveredSince reports whether history contains, strictly after t, a
// transition out of available followed later by a transition back into
// available. This is the re-notification-on-recovery rule: notified, then
// filled, then open again means tell the user again.
func recoveredSince(history []appointment.StatusChange, t time.Time) bool {
	wentUnavailable := false
	for _, change := range history {
		if !change.Timestamp.After(t) {
			continue
		}
		if change.PreviousStatus == appointment.StatusAvailable && change.NewStatus != appointment.StatusAvailable {
			wentUnavailable = true
			continue
		}
		if wentUnavailable &&
			change.PreviousStatus != appointment.StatusAvailable &&
			change.NewStatus == appointment.StatusAvailable {
			return true
		}
	}
	return false
}

// Eligible returns the candidates that should be notified this cycle,
// alongside the full decision list. The returned set is re-checked against
// the hard invariant that nothing non-available may be notified; on
// violation the whole batch is rejected with ErrEligibilityInvariant.
func (f *Filter) Eligible(candidates []appointment.Appointment) ([]appointment.Appointment, []Decision, error) {
	decisions := f.Decisions(candidates)

	var eligible []appointment.Appointment
	for _, d := range decisions {
		if d.ShouldNotify {
			eligible = append(eligible, d.Appointment)
		}
	}

	if err := checkEligibleInvariant(eligible); err != nil {
		return nil, decisions, err
	}
	return eligible, decisions, nil
}

// checkEligibleInvariant enforces the post-condition defensively rather
// than trusting construction.
func checkEligibleInvariant(eligible []appointment.Appointment) error {
	for _, appt := range eligible {
		if appt.Status != appointment.StatusAvailable {
			return fmt.Errorf("%w: key=%s status=%s", ErrEligibilityInvariant, appt.Key(), appt.Status)
		}
	}
	return nil
}

// MarkNotified records a confirmed notification attempt for each
// appointment: the ledger entry for its content key is set to now, and the
// tracked record's counter is bumped when one still exists. Both documents
// are persisted before returning; a failed tracking write only costs the
// counter bump and is retried by the next cycle's save, so it is logged
// rather than returned.
func (f *Filter) MarkNotified(appts []appointment.Appointment) error {
	if len(appts) == 0 {
		return nil
	}

	now := f.now()
	counted := false
	for _, appt := range appts {
		f.ledger.Mark(appt.Key(), now)
		if rec, ok := f.tracking.Get(appt.ID); ok {
			rec.NotificationsSent++
			counted = true
		}
	}

	if counted {
		if err := f.tracking.Save(); err != nil {
			log.Printf("tracking store write failed after notification, counter retained in memory: %v", err)
		}
	}

	if err := f.ledger.Save(); err != nil {
		return fmt.Errorf("persist notification ledger: %w", err)
	}
	return nil
}
