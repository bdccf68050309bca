// Package engine runs the serialized polling cycle:
// fetch -> detect -> filter -> dispatch -> mark-notified.
// One cycle runs to completion before the next begins, and the retention
// sweep shares the same lock so it never interleaves with a cycle.
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hackgods/slotwatch/internal/appointment"
	"github.com/hackgods/slotwatch/internal/notify"
	"github.com/hackgods/slotwatch/internal/tracker"
)

// Fetcher is the upstream source boundary. The scraper implements it; tests
// stub it.
type Fetcher interface {
	Fetch(ctx context.Context) ([]appointment.Appointment, error)
}

// CycleReport is the retained outcome of the most recent cycle. The
// inspection API serves from this snapshot so it never reads the live
// stores concurrently with a cycle.
type CycleReport struct {
	StartedAt      time.Time                        `json:"startedAt"`
	Duration       time.Duration                    `json:"duration"`
	Fetched        int                              `json:"fetched"`
	NewlyAvailable int                              `json:"newlyAvailable"`
	StatusChanged  int                              `json:"statusChanged"`
	Removed        int                              `json:"removed"`
	Tracked        int                              `json:"tracked"`
	Eligible       int                              `json:"eligible"`
	Notified       int                              `json:"notified"`
	StatusCounts   map[appointment.Status]int       `json:"statusCounts"`
	Decisions      []notify.Decision                `json:"decisions"`
	TrackedRecords []appointment.TrackedAppointment `json:"trackedRecords"`
}

type Engine struct {
	fetcher    Fetcher
	detector   *tracker.Detector
	filter     *notify.Filter
	dispatcher *notify.Dispatcher
	sweeper    *tracker.Sweeper

	mu         sync.Mutex
	lastReport *CycleReport
	cycleCount int
}

func New(fetcher Fetcher, detector *tracker.Detector, filter *notify.Filter, dispatcher *notify.Dispatcher, sweeper *tracker.Sweeper) *Engine {
	return &Engine{
		fetcher:    fetcher,
		detector:   detector,
		filter:     filter,
		dispatcher: dispatcher,
		sweeper:    sweeper,
	}
}

// RunCycle executes one full polling cycle. Transient store-write failures
// are logged and the cycle continues on in-memory state; an eligibility
// invariant violation aborts the notification step but leaves tracking
// state intact for the next cycle.
func (e *Engine) RunCycle(ctx context.Context) (*CycleReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()

	fetched, err := e.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch cycle input: %w", err)
	}

	changes, err := e.detector.Process(fetched)
	if err != nil {
		// In-memory state is current; the next cycle's save retries.
		log.Printf("tracking store write failed, continuing in memory: %v", err)
	}

	report := &CycleReport{
		StartedAt:      start,
		Fetched:        len(fetched),
		NewlyAvailable: len(changes.NewlyAvailable),
		StatusChanged:  len(changes.StatusChanged),
		Removed:        len(changes.Removed),
		Tracked:        len(changes.AllTracked),
		StatusCounts:   countStatuses(fetched),
	}
	for _, rec := range changes.AllTracked {
		report.TrackedRecords = append(report.TrackedRecords, *rec)
	}

	eligible, decisions, err := e.filter.Eligible(fetched)
	report.Decisions = decisions
	if err != nil {
		report.Duration = time.Since(start)
		e.retain(report)
		return report, fmt.Errorf("eligibility check: %w", err)
	}
	report.Eligible = len(eligible)

	delivered, dispatchErr := e.dispatcher.Dispatch(ctx, eligible)
	if dispatchErr != nil {
		log.Printf("dispatch: %v", dispatchErr)
	}

	if len(delivered) > 0 {
		report.Notified = len(delivered)
		if err := e.filter.MarkNotified(delivered); err != nil {
			log.Printf("notification ledger write failed, continuing in memory: %v", err)
		}
	}

	report.Duration = time.Since(start)
	e.retain(report)
	return report, nil
}

// Cleanup runs the retention sweep. It takes the cycle lock, so it can be
// driven from a separate timer without interleaving with a cycle.
func (e *Engine) Cleanup() (tracker.CleanupStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sweeper.Cleanup()
}

func (e *Engine) retain(report *CycleReport) {
	e.lastReport = report
	e.cycleCount++
}

// LastReport returns the most recent cycle's snapshot, or nil before the
// first cycle completes.
func (e *Engine) LastReport() *CycleReport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastReport
}

// CycleCount returns how many cycles have completed since startup.
func (e *Engine) CycleCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cycleCount
}

func countStatuses(appts []appointment.Appointment) map[appointment.Status]int {
	counts := make(map[appointment.Status]int)
	for _, appt := range appts {
		counts[appt.Status]++
	}
	return counts
}
