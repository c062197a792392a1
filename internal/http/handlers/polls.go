package handlers

import (
	"errors"
	"log/slog"
	nethttp "net/http"
	"strconv"
	"strings"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
	"github.com/preston-bernstein/poll-position/internal/loader"
	"github.com/preston-bernstein/poll-position/internal/logging"
)

// PollsResponse is the payload of GET /polls.
type PollsResponse struct {
	Count   int                `json:"count"`
	Seasons []polls.Season     `json:"seasons"`
	Rows    []polls.RawPollRow `json:"rows"`
}

// SeasonsResponse is the payload of GET /seasons.
type SeasonsResponse struct {
	Seasons []polls.Season `json:"seasons"`
}

// Polls returns the aggregated dataset, optionally filtered.
func (h *Handler) Polls(w nethttp.ResponseWriter, r *nethttp.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, r, nethttp.StatusBadRequest, err.Error(), h.logger)
		return
	}

	logger := loggerFromContext(r, h.logger)
	rows := h.loader.Load(loadContext(r))
	if err := loader.CheckDataset(rows); err != nil {
		logging.Error(logger, "dataset failed contract check", err)
		writeError(w, r, nethttp.StatusInternalServerError, "poll data unavailable", h.logger)
		return
	}

	seasons := polls.SeasonsOf(rows)
	rows = filter.Apply(rows)
	logging.Info(logger, "served polls",
		slog.Int(logging.FieldCount, len(rows)),
		slog.Int(logging.FieldSeasons, len(seasons)),
	)
	writeJSON(w, nethttp.StatusOK, PollsResponse{Count: len(rows), Seasons: seasons, Rows: rows}, h.logger)
}

// Seasons returns the discovered seasons.
func (h *Handler) Seasons(w nethttp.ResponseWriter, r *nethttp.Request) {
	seasons := h.loader.DiscoverSeasons(loadContext(r))
	writeJSON(w, nethttp.StatusOK, SeasonsResponse{Seasons: seasons}, h.logger)
}

// Report returns the outcome of the most recent load.
func (h *Handler) Report(w nethttp.ResponseWriter, r *nethttp.Request) {
	report, ok := h.loader.Report()
	if !ok {
		writeError(w, r, nethttp.StatusNotFound, "no load has completed", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, report, h.logger)
}

func parseFilter(r *nethttp.Request) (polls.Filter, error) {
	q := r.URL.Query()
	var f polls.Filter

	if raw := strings.TrimSpace(q.Get("season")); raw != "" {
		season, err := strconv.Atoi(raw)
		if err != nil || season <= 0 {
			return polls.Filter{}, errors.New("invalid season (expected a positive year)")
		}
		f.Season = polls.Season(season)
	}
	if raw := strings.TrimSpace(q.Get("week")); raw != "" {
		week, err := strconv.Atoi(raw)
		if err != nil || week <= 0 {
			return polls.Filter{}, errors.New("invalid week (expected a positive integer)")
		}
		f.Week = week
	}
	f.School = strings.TrimSpace(q.Get("school"))
	f.Conference = strings.TrimSpace(q.Get("conference"))
	return f, nil
}
