package scraper

import (
	"strings"

	"github.com/hackgods/slotwatch/internal/appointment"
)

func (o FilterOptions) matches(appt appointment.Appointment) bool {
	if !matchesAny(o.Cities, appt.City) {
		return false
	}
	if !matchesAny(o.ExamCategories, appt.ExamCategory) {
		return false
	}
	if len(o.Months) > 0 && !matchesMonth(o.Months, appt.Date) {
		return false
	}
	return true
}

func matchesAny(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(value)) {
			return true
		}
	}
	return false
}

// matchesMonth checks the YYYY-MM prefix of a YYYY-MM-DD date.
func matchesMonth(months []string, date string) bool {
	for _, m := range months {
		if strings.HasPrefix(date, strings.TrimSpace(m)) {
			return true
		}
	}
	return false
}
