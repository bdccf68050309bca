// Package api is the inspection surface of the watcher: a read-only HTTP
// server exposing the last cycle's snapshot. It never touches the live
// stores, only the report the engine retained, so it is safe to serve
// while cycles run.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/slotwatch/internal/engine"
)

type RouterConfig struct {
	Engine  *engine.Engine
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	h := NewStatusHandler(cfg.Engine, cfg.Env, cfg.Version)
	r.Get("/health/live", h.Liveness)
	r.Get("/status", h.Status)
	r.Get("/tracked", h.Tracked)
	r.Get("/decisions", h.Decisions)

	return r
}
