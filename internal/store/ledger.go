package store

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

const ledgerVersion = "1"

// ledgerDocument is the on-disk shape of the notification ledger.
type ledgerDocument struct {
	Version                 string                     `json:"version"`
	LastUpdated             time.Time                  `json:"lastUpdated"`
	NotifiedAppointmentKeys map[string]json.RawMessage `json:"notifiedAppointmentKeys"`
}

type ledgerDocumentOut struct {
	Version                 string               `json:"version"`
	LastUpdated             time.Time            `json:"lastUpdated"`
	NotifiedAppointmentKeys map[string]time.Time `json:"notifiedAppointmentKeys"`
}

// Ledger maps content keys to the time of the last notification attempt.
// It is kept separate from the tracking store on purpose: a slot that
// disappears from fetch results loses its tracking record, but its ledger
// entry lives on so the slot stays suppressed if it returns under a new
// ephemeral identity.
type Ledger struct {
	path string
	keys map[string]time.Time
}

func NewLedger(path string) *Ledger {
	return &Ledger{
		path: path,
		keys: make(map[string]time.Time),
	}
}

// Load reads the ledger document. Failures leave the ledger empty and are
// returned for logging; startup is never blocked.
func (l *Ledger) Load() error {
	l.keys = make(map[string]time.Time)

	var doc ledgerDocument
	if err := loadJSON(l.path, &doc); err != nil {
		return fmt.Errorf("load notification ledger: %w", err)
	}

	for key, raw := range doc.NotifiedAppointmentKeys {
		if key == "" {
			continue
		}
		var at time.Time
		if err := json.Unmarshal(raw, &at); err != nil {
			log.Printf("skipping malformed ledger entry key=%s err=%v", key, err)
			continue
		}
		l.keys[key] = at
	}
	return nil
}

// Save rewrites the full ledger document with a fresh lastUpdated stamp.
func (l *Ledger) Save() error {
	doc := ledgerDocumentOut{
		Version:                 ledgerVersion,
		LastUpdated:             time.Now().UTC(),
		NotifiedAppointmentKeys: l.keys,
	}
	if err := saveJSON(l.path, doc); err != nil {
		return fmt.Errorf("save notification ledger: %w", err)
	}
	return nil
}

// LastNotified returns when the key was last notified, if ever.
func (l *Ledger) LastNotified(key string) (time.Time, bool) {
	at, ok := l.keys[key]
	return at, ok
}

// Mark records a notification attempt for the key, overwriting any earlier
// timestamp. The caller persists afterwards.
func (l *Ledger) Mark(key string, at time.Time) {
	l.keys[key] = at
}

func (l *Ledger) Len() int {
	return len(l.keys)
}

// SweepOlderThan drops entries last notified before cutoff and returns how
// many were removed.
func (l *Ledger) SweepOlderThan(cutoff time.Time) int {
	removed := 0
	for key, at := range l.keys {
		if at.Before(cutoff) {
			delete(l.keys, key)
			removed++
		}
	}
	return removed
}
