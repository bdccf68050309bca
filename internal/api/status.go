package api

import (
	"net/http"

	"github.com/hackgods/slotwatch/internal/engine"
)

type StatusHandler struct {
	engine  *engine.Engine
	env     string
	version string
}

func NewStatusHandler(e *engine.Engine, env, version string) *StatusHandler {
	return &StatusHandler{engine: e, env: env, version: version}
}

func (h *StatusHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "ok",
		Version: h.version,
		Env:     h.env,
	})
}

// Status summarizes the most recent cycle. Before the first cycle it
// reports waiting with zeroed counters.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:  "waiting",
		Version: h.version,
		Env:     h.env,
		Cycles:  h.engine.CycleCount(),
	}

	if report := h.engine.LastReport(); report != nil {
		resp.Status = "ok"
		resp.LastCycle = &CycleSummary{
			StartedAt:      report.StartedAt,
			Duration:       report.Duration.String(),
			Fetched:        report.Fetched,
			NewlyAvailable: report.NewlyAvailable,
			StatusChanged:  report.StatusChanged,
			Removed:        report.Removed,
			Tracked:        report.Tracked,
			Eligible:       report.Eligible,
			Notified:       report.Notified,
			StatusCounts:   report.StatusCounts,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Tracked dumps the tracked records from the last cycle's snapshot.
func (h *StatusHandler) Tracked(w http.ResponseWriter, r *http.Request) {
	report := h.engine.LastReport()
	if report == nil {
		writeError(w, http.StatusServiceUnavailable, "no_cycle_yet", "no polling cycle has completed")
		return
	}
	writeJSON(w, http.StatusOK, TrackedResponse{
		Count:   len(report.TrackedRecords),
		Tracked: report.TrackedRecords,
	})
}

// Decisions dumps the last cycle's eligibility decisions, the audit trail
// for why each candidate was included or suppressed.
func (h *StatusHandler) Decisions(w http.ResponseWriter, r *http.Request) {
	report := h.engine.LastReport()
	if report == nil {
		writeError(w, http.StatusServiceUnavailable, "no_cycle_yet", "no polling cycle has completed")
		return
	}
	writeJSON(w, http.StatusOK, DecisionsResponse{
		Count:     len(report.Decisions),
		Decisions: report.Decisions,
	})
}
