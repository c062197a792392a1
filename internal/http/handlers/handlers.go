package handlers

import (
	"context"
	"log/slog"
	nethttp "net/http"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
	"github.com/preston-bernstein/poll-position/internal/loader"
	"github.com/preston-bernstein/poll-position/internal/warmer"
)

// DatasetLoader is the read side of the loader used by the HTTP API.
type DatasetLoader interface {
	Load(ctx context.Context) []polls.RawPollRow
	DiscoverSeasons(ctx context.Context) []polls.Season
	Report() (loader.LoadReport, bool)
}

// Handler wires HTTP routes to the poll loader.
type Handler struct {
	loader   DatasetLoader
	logger   *slog.Logger
	statusFn func() warmer.Status
}

// NewHandler constructs a Handler. statusFn may be nil, in which case /ready always succeeds.
func NewHandler(l DatasetLoader, logger *slog.Logger, statusFn func() warmer.Status) *Handler {
	return &Handler{
		loader:   l,
		logger:   logger,
		statusFn: statusFn,
	}
}

// Health reports the service health.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports whether the warm-up load has finished.
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if h.statusFn == nil {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, nethttp.StatusServiceUnavailable, msg, h.logger)
}

// NotFound answers unknown paths with a JSON error.
func (h *Handler) NotFound(w nethttp.ResponseWriter, r *nethttp.Request) {
	writeError(w, r, nethttp.StatusNotFound, "not found", h.logger)
}

// MethodNotAllowed answers known paths hit with the wrong method.
func (h *Handler) MethodNotAllowed(w nethttp.ResponseWriter, r *nethttp.Request) {
	writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
}

// loadContext detaches the memoized load from the caller's cancellation so a
// dropped client cannot leave a degraded dataset cached for the process.
func loadContext(r *nethttp.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
