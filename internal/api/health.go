// v0
// internal/api/health.go
package api

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthState tracks readiness. Liveness is implied while the process
// runs; readiness needs the flag set and a reachable store.
type HealthState struct {
	mu     sync.RWMutex
	ready  bool
	store  Pinger
	budget time.Duration
}

func NewHealthState(store Pinger) *HealthState {
	return &HealthState{store: store, budget: 2 * time.Second}
}

func (h *HealthState) SetReady(value bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = value
}

func (h *HealthState) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

func (h *HealthState) check(ctx context.Context) error {
	if h.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, h.budget)
	defer cancel()
	return h.store.Ping(ctx)
}

func healthLiveHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func healthReadyHandler(health *HealthState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !health.Ready() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
			return
		}
		if err := health.check(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "store_unreachable", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
