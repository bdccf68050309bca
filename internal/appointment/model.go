package appointment

import (
	"time"
)

type Status string

const (
	StatusAvailable       Status = "available"
	StatusFilled          Status = "filled"
	StatusPending         Status = "pending"
	StatusNotRegisterable Status = "not-registerable"
	StatusUnknown         Status = "unknown"
)

// Appointment is one slot as reported by the source for a single polling
// cycle. ID is assigned by the fetch layer and is only meaningful within
// that cycle; cross-cycle identity comes from Key().
type Appointment struct {
	ID           string `json:"id"`
	Date         string `json:"date"` // YYYY-MM-DD
	Time         string `json:"time"` // range label, e.g. "09:00-12:00"
	Location     string `json:"location"`
	ExamCategory string `json:"examCategory"`
	City         string `json:"city"`
	Status       Status `json:"status"`
}

// StatusChange is one observed transition in a slot's history. Entries are
// append-only and ordered by timestamp.
type StatusChange struct {
	Timestamp      time.Time `json:"timestamp"`
	PreviousStatus Status    `json:"previousStatus"`
	NewStatus      Status    `json:"newStatus"`
	Reason         string    `json:"reason"`
}

// TrackedAppointment is the durable per-slot record kept across cycles.
// It lives only while the slot keeps appearing in fetch results; the
// notification ledger outlives it.
type TrackedAppointment struct {
	Appointment       Appointment    `json:"appointment"`
	FirstSeen         time.Time      `json:"firstSeen"`
	LastSeen          time.Time      `json:"lastSeen"`
	StatusHistory     []StatusChange `json:"statusHistory"`
	NotificationsSent int            `json:"notificationsSent"`
}

// Key returns the content key of the tracked slot.
func (t *TrackedAppointment) Key() string {
	return t.Appointment.Key()
}

// CurrentStatus returns the status from the most recent observation.
func (t *TrackedAppointment) CurrentStatus() Status {
	return t.Appointment.Status
}
