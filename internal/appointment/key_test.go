package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyDeterministic(t *testing.T) {
	a := Appointment{
		ID:           "cycle-1-id",
		Date:         "2025-02-15",
		Time:         "09:00-12:00",
		Location:     "Downtown Center",
		ExamCategory: "IELTS",
		City:         "Tehran",
		Status:       StatusAvailable,
	}
	assert.Equal(t, a.Key(), a.Key())
	assert.Equal(t, "2025-02-15|09:00-12:00|Downtown Center|IELTS", a.Key())
}

func TestKeyIgnoresEphemeralIdentityAndStatus(t *testing.T) {
	a := Appointment{ID: "x1", Date: "2025-02-15", Time: "09:00-12:00", Location: "A", ExamCategory: "IELTS", Status: StatusFilled}
	b := a
	b.ID = "x2"
	b.Status = StatusAvailable

	assert.Equal(t, a.Key(), b.Key())
}

func TestKeyFallsBackToCity(t *testing.T) {
	a := Appointment{Date: "2025-02-15", Time: "09:00-12:00", City: "Shiraz", ExamCategory: "IELTS"}
	assert.Equal(t, "2025-02-15|09:00-12:00|Shiraz|IELTS", a.Key())
}

func TestKeyDistinguishesSlots(t *testing.T) {
	base := Appointment{Date: "2025-02-15", Time: "09:00-12:00", Location: "A", ExamCategory: "IELTS"}

	variants := []Appointment{
		{Date: "2025-02-16", Time: "09:00-12:00", Location: "A", ExamCategory: "IELTS"},
		{Date: "2025-02-15", Time: "13:00-16:00", Location: "A", ExamCategory: "IELTS"},
		{Date: "2025-02-15", Time: "09:00-12:00", Location: "B", ExamCategory: "IELTS"},
		{Date: "2025-02-15", Time: "09:00-12:00", Location: "A", ExamCategory: "TOEFL"},
	}
	for _, v := range variants {
		assert.NotEqual(t, base.Key(), v.Key())
	}
}
