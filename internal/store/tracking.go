package store

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hackgods/slotwatch/internal/appointment"
)

// trackingDocument is the on-disk shape of the tracking store. Records are
// held as raw messages on load so one malformed entry can be skipped
// without discarding the rest of the document.
type trackingDocument struct {
	TrackedAppointments map[string]json.RawMessage `json:"trackedAppointments"`
}

type trackingDocumentOut struct {
	TrackedAppointments map[string]*appointment.TrackedAppointment `json:"trackedAppointments"`
}

// TrackingStore is the durable map from ephemeral identity to tracking
// record. Single-writer: only the change detector mutates it, and only one
// cycle runs at a time. Save rewrites the whole document.
type TrackingStore struct {
	path    string
	records map[string]*appointment.TrackedAppointment
}

func NewTrackingStore(path string) *TrackingStore {
	return &TrackingStore{
		path:    path,
		records: make(map[string]*appointment.TrackedAppointment),
	}
}

// Load reads the tracking document from disk. Any failure leaves the store
// empty and returns the error so the caller can log it; startup is never
// blocked on a bad file.
func (s *TrackingStore) Load() error {
	s.records = make(map[string]*appointment.TrackedAppointment)

	var doc trackingDocument
	if err := loadJSON(s.path, &doc); err != nil {
		return fmt.Errorf("load tracking store: %w", err)
	}

	for id, raw := range doc.TrackedAppointments {
		if id == "" {
			continue
		}
		var rec appointment.TrackedAppointment
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Printf("skipping malformed tracking record id=%s err=%v", id, err)
			continue
		}
		s.records[id] = &rec
	}
	return nil
}

// Save rewrites the full tracking document.
func (s *TrackingStore) Save() error {
	doc := trackingDocumentOut{TrackedAppointments: s.records}
	if err := saveJSON(s.path, doc); err != nil {
		return fmt.Errorf("save tracking store: %w", err)
	}
	return nil
}

func (s *TrackingStore) Get(id string) (*appointment.TrackedAppointment, bool) {
	rec, ok := s.records[id]
	return rec, ok
}

func (s *TrackingStore) Put(id string, rec *appointment.TrackedAppointment) {
	s.records[id] = rec
}

func (s *TrackingStore) Delete(id string) {
	delete(s.records, id)
}

func (s *TrackingStore) Len() int {
	return len(s.records)
}

// All returns a snapshot of the index. The map is a copy; the records are
// the live pointers.
func (s *TrackingStore) All() map[string]*appointment.TrackedAppointment {
	out := make(map[string]*appointment.TrackedAppointment, len(s.records))
	for id, rec := range s.records {
		out[id] = rec
	}
	return out
}

// SweepOlderThan drops every record whose LastSeen is before cutoff and
// returns how many were removed. The caller persists afterwards.
func (s *TrackingStore) SweepOlderThan(cutoff time.Time) int {
	removed := 0
	for id, rec := range s.records {
		if rec.LastSeen.Before(cutoff) {
			delete(s.records, id)
			removed++
		}
	}
	return removed
}
