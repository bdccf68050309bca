package scraper

import (
	"strings"

	"github.com/hackgods/slotwatch/internal/appointment"
)

// ClassifyStatus maps the source's free-text status label onto the engine's
// status enum. The source wording drifts, so matching is heuristic and
// anything unrecognized lands on unknown rather than guessing available.
// Negated labels ("Unavailable", "Not available") are ruled out before the
// "available" match ever runs, since "unavailable" contains it.
// capacity is nil when the source omits the field.
func ClassifyStatus(raw string, capacity *int) appointment.Status {
	label := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case containsAny(label, "unavailable", "not available"):
		return appointment.StatusFilled
	case containsAny(label, "filled", "full", "capacity reached", "sold out"):
		return appointment.StatusFilled
	case containsAny(label, "pending", "under review", "awaiting"):
		return appointment.StatusPending
	case containsAny(label, "not registerable", "not-registerable", "registration closed", "closed"):
		return appointment.StatusNotRegisterable
	case containsAny(label, "available", "open", "registerable"):
		// The source sometimes keeps the "available" label on slots it
		// already reports as having no capacity left.
		if capacity != nil && *capacity <= 0 {
			return appointment.StatusFilled
		}
		return appointment.StatusAvailable
	default:
		return appointment.StatusUnknown
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
