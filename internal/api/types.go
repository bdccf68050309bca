package api

import (
	"time"

	"github.com/hackgods/slotwatch/internal/appointment"
	"github.com/hackgods/slotwatch/internal/notify"
)

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Env     string `json:"env,omitempty"`
}

type CycleSummary struct {
	StartedAt      time.Time                  `json:"startedAt"`
	Duration       string                     `json:"duration"`
	Fetched        int                        `json:"fetched"`
	NewlyAvailable int                        `json:"newlyAvailable"`
	StatusChanged  int                        `json:"statusChanged"`
	Removed        int                        `json:"removed"`
	Tracked        int                        `json:"tracked"`
	Eligible       int                        `json:"eligible"`
	Notified       int                        `json:"notified"`
	StatusCounts   map[appointment.Status]int `json:"statusCounts"`
}

type StatusResponse struct {
	Status    string        `json:"status"`
	Version   string        `json:"version,omitempty"`
	Env       string        `json:"env,omitempty"`
	Cycles    int           `json:"cycles"`
	LastCycle *CycleSummary `json:"lastCycle,omitempty"`
}

type TrackedResponse struct {
	Count   int                              `json:"count"`
	Tracked []appointment.TrackedAppointment `json:"tracked"`
}

type DecisionsResponse struct {
	Count     int               `json:"count"`
	Decisions []notify.Decision `json:"decisions"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
