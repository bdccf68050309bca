package appointment

import "strings"

// keyDelimiter joins the key parts. The source never emits "|" in dates,
// time labels, or location names, so plain concatenation cannot collide.
const keyDelimiter = "|"

// Key derives the content identity of a slot from its stable attributes.
// Two appointments describing the same real-world slot produce the same key
// even when the source hands out different per-cycle IDs for them. Falls
// back to the city when the location is empty.
func (a Appointment) Key() string {
	location := a.Location
	if location == "" {
		location = a.City
	}
	return strings.Join([]string{a.Date, a.Time, location, a.ExamCategory}, keyDelimiter)
}
