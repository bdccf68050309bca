package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackgods/slotwatch/internal/api"
	"github.com/hackgods/slotwatch/internal/config"
	"github.com/hackgods/slotwatch/internal/engine"
	"github.com/hackgods/slotwatch/internal/notify"
	"github.com/hackgods/slotwatch/internal/scraper"
	"github.com/hackgods/slotwatch/internal/store"
	"github.com/hackgods/slotwatch/internal/tracker"
)

const version = "1.0.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("watcher starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s source=%s poll_interval=%s retention_days=%d",
		cfg.Env, cfg.SourceURL, cfg.PollInterval, cfg.MaxTrackingDays)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	trackingStore := store.NewTrackingStore(cfg.TrackingPath)
	if err := trackingStore.Load(); err != nil {
		log.Printf("tracking store load error, starting empty: %v", err)
	}
	ledger := store.NewLedger(cfg.LedgerPath)
	if err := ledger.Load(); err != nil {
		log.Printf("notification ledger load error, starting empty: %v", err)
	}
	log.Printf("loaded state tracked=%d ledger_keys=%d", trackingStore.Len(), ledger.Len())

	fetcher := scraper.NewClient(cfg.SourceURL, cfg.FetchTimeout, scraper.FilterOptions{
		Cities:         cfg.Cities,
		ExamCategories: cfg.ExamCategories,
		Months:         cfg.Months,
	})

	var transports []notify.Transport
	if cfg.ConsoleNotify {
		transports = append(transports, notify.ConsoleTransport{})
	}
	if cfg.NotifyLogPath != "" {
		transports = append(transports, notify.FileTransport{Path: cfg.NotifyLogPath})
	}
	if cfg.WebhookURL != "" {
		transports = append(transports, notify.NewWebhookTransport(cfg.WebhookURL))
	}
	log.Printf("configured %d notification transport(s)", len(transports))

	eng := engine.New(
		fetcher,
		tracker.NewDetector(trackingStore),
		notify.NewFilter(trackingStore, ledger),
		notify.NewDispatcher(transports...),
		tracker.NewSweeper(trackingStore, ledger, cfg.RetentionHorizon()),
	)

	// Inspection server; read-only, serves the last cycle's snapshot.
	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: api.NewRouter(api.RouterConfig{
			Engine:  eng,
			Env:     cfg.Env,
			Version: version,
		}),
	}
	go func() {
		log.Printf("inspection api listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("inspection api error: %v", err)
		}
	}()

	// Cleanup runs at startup, then on its own timer. The engine serializes
	// it against cycles.
	runCleanup(eng)
	runCycle(rootCtx, eng, cfg.FetchTimeout)

	pollTicker := time.NewTicker(cfg.PollInterval)
	defer pollTicker.Stop()
	cleanupTicker := time.NewTicker(cfg.CleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Println("shutdown signal received, stopping watcher")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("inspection api shutdown error: %v", err)
			}
			cancel()
			return
		case <-cleanupTicker.C:
			runCleanup(eng)
		case <-pollTicker.C:
			runCycle(rootCtx, eng, cfg.FetchTimeout)
		}
	}
}

func runCycle(ctx context.Context, eng *engine.Engine, fetchTimeout time.Duration) {
	// The timeout bounds the fetch; store writes run to completion even
	// during shutdown, so they are not tied to this context.
	cycleCtx, cancel := context.WithTimeout(ctx, fetchTimeout+30*time.Second)
	defer cancel()

	start := time.Now()
	report, err := eng.RunCycle(cycleCtx)
	if err != nil {
		if errors.Is(err, notify.ErrEligibilityInvariant) {
			log.Printf("ERROR notification batch rejected: %v", err)
			return
		}
		log.Printf("cycle error: %v", err)
		return
	}
	log.Printf("cycle complete in %s fetched=%d new_available=%d changed=%d removed=%d tracked=%d eligible=%d notified=%d",
		time.Since(start), report.Fetched, report.NewlyAvailable, report.StatusChanged,
		report.Removed, report.Tracked, report.Eligible, report.Notified)
}

func runCleanup(eng *engine.Engine) {
	stats, err := eng.Cleanup()
	if err != nil {
		log.Printf("cleanup error: %v", err)
	}
	if stats.TrackingRemoved > 0 || stats.LedgerRemoved > 0 {
		log.Printf("cleanup removed tracking=%d ledger=%d", stats.TrackingRemoved, stats.LedgerRemoved)
	}
}
