// Package scraper is the upstream fetch layer: it pulls the source feed,
// normalizes each entry into an Appointment with a classified status, and
// applies the user's city/category/month filters. Timeouts live here; the
// engine itself never touches the network.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/slotwatch/internal/appointment"
)

// feedItem is one entry of the source's JSON feed.
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

type feed struct {
	Appointments []feedItem `json:"appointments"`
}

// FilterOptions narrows the fetched feed before it reaches the engine.
// Empty lists mean "no restriction".
type FilterOptions struct {
	Cities         []string
	ExamCategories []string
	Months         []string // YYYY-MM prefixes of the appointment date
}

type Client struct {
	baseURL string
	httpc   *http.Client
	opts    FilterOptions
}

func NewClient(baseURL string, timeout time.Duration, opts FilterOptions) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		opts:    opts,
	}
}

// Fetch pulls one cycle's worth of appointments. Entries the source ships
// without an id get a generated one; the engine treats ids as cycle-local
// either way. Duplicate ids within one response collapse to the last entry.
func (c *Client) Fetch(ctx context.Context) ([]appointment.Appointment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch appointments: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned status %d", resp.StatusCode)
	}

	var f feed
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	byID := make(map[string]appointment.Appointment, len(f.Appointments))
	order := make([]string, 0, len(f.Appointments))
	for _, item := range f.Appointments {
		appt := appointment.Appointment{
			ID:           item.ID,
			Date:         item.Date,
			Time:         item.Time,
			Location:     item.Location,
			ExamCategory: item.ExamCategory,
			City:         item.City,
			Status:       ClassifyStatus(item.Status, item.Capacity),
		}
		if appt.ID == "" {
			appt.ID = uuid.NewString()
		}
		if !c.opts.matches(appt) {
			continue
		}
		if _, ok := byID[appt.ID]; !ok {
			order = append(order, appt.ID)
		}
		byID[appt.ID] = appt
	}

	out := make([]appointment.Appointment, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out, nil
}
