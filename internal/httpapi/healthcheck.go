package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ebitech02/WanderWise/internal/utils"
)

const healthTimeout = 2 * time.Second

// Pinger is a backend whose reachability /healthz reports.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	backend Pinger
}

func NewHealthchecker(backend Pinger) healthchecker {
	return &healthcheckerImpl{backend: backend}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.backend.Ping(ctx); err != nil {
		slog.Error("failed to check cache backend", "error", err)
		utils.WriteError(w, http.StatusServiceUnavailable, "cache backend unavailable")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(mux *http.ServeMux, backend Pinger) {
	healthchecker := NewHealthchecker(backend)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
