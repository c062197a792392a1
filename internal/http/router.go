package http

import (
	nethttp "net/http"

	"github.com/gorilla/mux"

	"github.com/preston-bernstein/poll-position/internal/http/handlers"
)

// NewRouter registers the read API on a gorilla/mux router.
func NewRouter(h *handlers.Handler) nethttp.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods(nethttp.MethodGet)
	r.HandleFunc("/ready", h.Ready).Methods(nethttp.MethodGet)
	r.HandleFunc("/polls", h.Polls).Methods(nethttp.MethodGet)
	r.HandleFunc("/polls/report", h.Report).Methods(nethttp.MethodGet)
	r.HandleFunc("/seasons", h.Seasons).Methods(nethttp.MethodGet)

	r.NotFoundHandler = nethttp.HandlerFunc(h.NotFound)
	r.MethodNotAllowedHandler = nethttp.HandlerFunc(h.MethodNotAllowed)
	return r
}
