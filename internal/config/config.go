package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env             string        // dev, prod
	HTTPPort        string        // inspection API port, default 8080
	SourceURL       string        // required, the appointment feed endpoint
	PollInterval    time.Duration // how often a polling cycle runs
	FetchTimeout    time.Duration // per-fetch HTTP timeout
	TrackingPath    string        // tracking document path
	LedgerPath      string        // notification-ledger document path
	NotifyLogPath   string        // file transport target, empty disables it
	WebhookURL      string        // webhook transport target, empty disables it
	ConsoleNotify   bool          // console transport toggle
	MaxTrackingDays int           // retention horizon for both documents
	CleanupInterval time.Duration // how often the retention sweep runs
	ShutdownTimeout time.Duration // graceful shutdown timeout
	Cities          []string      // filter: allowed cities, empty = all
	ExamCategories  []string      // filter: allowed exam categories
	Months          []string      // filter: allowed YYYY-MM months
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:             getEnv("APP_ENV", "dev"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		SourceURL:       os.Getenv("SOURCE_URL"),
		PollInterval:    getDuration("POLL_INTERVAL", time.Minute),
		FetchTimeout:    getDuration("FETCH_TIMEOUT", 30*time.Second),
		TrackingPath:    getEnv("TRACKING_PATH", "data/tracked_appointments.json"),
		LedgerPath:      getEnv("LEDGER_PATH", "data/notified_keys.json"),
		NotifyLogPath:   os.Getenv("NOTIFY_LOG_PATH"),
		WebhookURL:      os.Getenv("WEBHOOK_URL"),
		ConsoleNotify:   getBool("CONSOLE_NOTIFY", true),
		MaxTrackingDays: getInt("MAX_TRACKING_DAYS", 30),
		CleanupInterval: getDuration("CLEANUP_INTERVAL", 6*time.Hour),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Cities:          getList("FILTER_CITIES"),
		ExamCategories:  getList("FILTER_EXAM_CATEGORIES"),
		Months:          getList("FILTER_MONTHS"),
	}

	if cfg.SourceURL == "" {
		return Config{}, errors.New("SOURCE_URL is required")
	}
	if cfg.MaxTrackingDays <= 0 {
		return Config{}, errors.New("MAX_TRACKING_DAYS must be positive")
	}

	return cfg, nil
}

// RetentionHorizon converts MaxTrackingDays into a duration.
func (c Config) RetentionHorizon() time.Duration {
	return time.Duration(c.MaxTrackingDays) * 24 * time.Hour
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		fmt.Fprintf(os.Stderr, "invalid duration for %s=%q, using default %s\n", key, v, def)
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		fmt.Fprintf(os.Stderr, "invalid integer for %s=%q, using default %d\n", key, v, def)
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		fmt.Fprintf(os.Stderr, "invalid boolean for %s=%q, using default %t\n", key, v, def)
	}
	return def
}

// getList splits a comma-separated env var, trimming blanks.
func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
