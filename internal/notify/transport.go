package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/hackgods/slotwatch/internal/appointment"
)

// Transport delivers one batch of eligible appointments to a destination.
// Transports format their own output; the engine only hands them data.
type Transport interface {
	Name() string
	Send(ctx context.Context, appts []appointment.Appointment) error
}

// ConsoleTransport writes one line per appointment to the process log.
type ConsoleTransport struct{}

func (ConsoleTransport) Name() string { return "console" }

func (ConsoleTransport) Send(_ context.Context, appts []appointment.Appointment) error {
	for _, appt := range appts {
		log.Printf("NOTIFY key=%s city=%s category=%s date=%s time=%s",
			appt.Key(), appt.City, appt.ExamCategory, appt.Date, appt.Time)
	}
	return nil
}

// FileTransport appends one JSON line per appointment to a log file.
type FileTransport struct {
	Path string
}

func (t FileTransport) Name() string { return "file" }

func (t FileTransport) Send(_ context.Context, appts []appointment.Appointment) error {
	f, err := os.OpenFile(t.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open notification log: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, appt := range appts {
		entry := struct {
			At          time.Time               `json:"at"`
			Appointment appointment.Appointment `json:"appointment"`
		}{
			At:          time.Now().UTC(),
			Appointment: appt,
		}
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("append notification log: %w", err)
		}
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync notification log: %w", err)
	}
	return nil
}

// WebhookTransport POSTs the batch as JSON to a chat-bot style endpoint.
type WebhookTransport struct {
	URL    string
	Client *http.Client
}

func NewWebhookTransport(url string) *WebhookTransport {
	return &WebhookTransport{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *WebhookTransport) Name() string { return "webhook" }

func (t *WebhookTransport) Send(ctx context.Context, appts []appointment.Appointment) error {
	payload := struct {
		Appointments []appointment.Appointment `json:"appointments"`
	}{Appointments: appts}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
