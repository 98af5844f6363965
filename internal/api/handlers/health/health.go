// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/5w1tchy/shelfbot/internal/api/httpx"
	"golang.org/x/sync/errgroup"
)

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

type Handler struct {
	checks  map[string]Check
	timeout time.Duration
}

// New takes named checks; nil entries are skipped, so optional backends can
// be passed unconditionally.
func New(checks map[string]Check) *Handler {
	h := &Handler{checks: make(map[string]Check), timeout: 500 * time.Millisecond}
	for name, c := range checks {
		if c != nil {
			h.checks[name] = c
		}
	}
	return h
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Live)
	mux.HandleFunc("GET /readyz", h.Ready)
}

func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready runs every check concurrently under one deadline.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	errs := make([]error, len(h.checks))
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}

	var g errgroup.Group
	for i, name := range names {
		check := h.checks[name]
		g.Go(func() error {
			errs[i] = check(ctx)
			return nil
		})
	}
	_ = g.Wait()

	status := http.StatusOK
	for i, name := range names {
		if errs[i] != nil {
			results[name] = errs[i].Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	body := map[string]any{"status": "ready", "checks": results}
	if status != http.StatusOK {
		body["status"] = "not ready"
	}
	httpx.WriteJSON(w, status, body)
}
