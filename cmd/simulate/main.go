// Command simulate runs a fake appointment source for end-to-end watcher
// runs: it serves a feed whose slots churn between available and filled,
// occasionally disappear, and get fresh ids every cycle, which is exactly
// the identity churn the watcher has to cope with against the real source.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type simSlot struct {
	ID           string
	Date         string
	Time         string
	Location     string
	ExamCategory string
	City         string
	Available    bool
	Hidden       bool
	Capacity     int
}

type feedItem struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Location     string `json:"location"`
	ExamCategory string `json:"exam_category"`
	City         string `json:"city"`
	Status       string `json:"status"`
	Capacity     *int   `json:"capacity"`
}

type simulator struct {
	mu    sync.Mutex
	slots []*simSlot
	churn float64
}

var (
	cities     = []string{"Tehran", "Isfahan", "Shiraz", "Tabriz", "Mashhad"}
	categories = []string{"IELTS", "IELTS UKVI", "Life Skills A1", "TOEFL"}
	timeSlots  = []string{"09:00-12:00", "13:00-16:00", "16:30-19:30"}
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulate starting")

	port := getenv("SIM_PORT", "9090")
	slotCount := getenvInt("SIM_SLOTS", 40)
	churn := getenvFloat("SIM_CHURN", 0.15)

	gofakeit.Seed(time.Now().UnixNano())

	sim := &simulator{churn: churn}
	for i := 0; i < slotCount; i++ {
		sim.slots = append(sim.slots, newSlot())
	}
	log.Printf("serving %d slots churn=%.2f", slotCount, churn)

	r := chi.NewRouter()
	r.Get("/appointments", sim.handleFeed)

	srv := &http.Server{Addr: ":" + port, Handler: r}

	rootCtx, stopSignal := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignal()

	go func() {
		log.Printf("fake source listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve error: %v", err)
		}
	}()

	<-rootCtx.Done()
	log.Println("shutting down simulate")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func newSlot() *simSlot {
	date := gofakeit.DateRange(time.Now(), time.Now().AddDate(0, 2, 0))
	return &simSlot{
		ID:           uuid.NewString(),
		Date:         date.Format("2006-01-02"),
		Time:         timeSlots[gofakeit.Number(0, len(timeSlots)-1)],
		Location:     fmt.Sprintf("%s Exam Center", gofakeit.LastName()),
		ExamCategory: categories[gofakeit.Number(0, len(categories)-1)],
		City:         cities[gofakeit.Number(0, len(cities)-1)],
		Available:    gofakeit.Bool(),
		Capacity:     gofakeit.Number(0, 12),
	}
}

// handleFeed mutates the world a little on every poll, then serves it.
func (s *simulator) handleFeed(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.step()
	items := s.render()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := writeFeed(w, items); err != nil {
		log.Printf("write feed: %v", err)
	}
}

func (s *simulator) step() {
	for _, slot := range s.slots {
		if rand.Float64() >= s.churn {
			continue
		}
		switch {
		case slot.Hidden:
			slot.Hidden = false
		case rand.Float64() < 0.2:
			slot.Hidden = true
		case rand.Float64() < 0.3:
			// Identity churn: same slot, new id, like the real source.
			slot.ID = uuid.NewString()
		default:
			slot.Available = !slot.Available
			if slot.Available && slot.Capacity == 0 {
				slot.Capacity = gofakeit.Number(1, 12)
			}
		}
	}
	// Occasionally a brand-new slot shows up.
	if rand.Float64() < s.churn {
		s.slots = append(s.slots, newSlot())
	}
}

func (s *simulator) render() []feedItem {
	items := make([]feedItem, 0, len(s.slots))
	for _, slot := range s.slots {
		if slot.Hidden {
			continue
		}
		status := "Registration full"
		if slot.Available {
			status = "Available"
		}
		capacity := slot.Capacity
		items = append(items, feedItem{
			ID:           slot.ID,
			Date:         slot.Date,
			Time:         slot.Time,
			Location:     slot.Location,
			ExamCategory: slot.ExamCategory,
			City:         slot.City,
			Status:       status,
			Capacity:     &capacity,
		})
	}
	return items
}

func writeFeed(w http.ResponseWriter, items []feedItem) error {
	payload := struct {
		Appointments []feedItem `json:"appointments"`
	}{Appointments: items}
	return json.NewEncoder(w).Encode(payload)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
