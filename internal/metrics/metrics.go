package metrics

import (
	"sync"
	"time"
)

type endpointStats struct {
	calls           int
	errors          int
	lastCallLatency time.Duration
}

type loadStats struct {
	loads        int
	lastRows     int
	lastSeasons  int
	lastDuration time.Duration
}

// Recorder captures lightweight, in-memory metrics about upstream calls and loads.
// When telemetry is enabled the same events are forwarded to OpenTelemetry instruments.
type Recorder struct {
	mu        sync.Mutex
	endpoints map[string]*endpointStats
	outcomes  map[string]int
	cache     map[string]map[bool]int
	load      loadStats
	otel      *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		endpoints: make(map[string]*endpointStats),
		outcomes:  make(map[string]int),
		cache:     make(map[string]map[bool]int),
		otel:      otel,
	}
}

// RecordSourceAttempt increments counters for an upstream call and stores the last observed latency.
func (r *Recorder) RecordSourceAttempt(endpoint string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats, ok := r.endpoints[endpoint]
	if !ok {
		stats = &endpointStats{}
		r.endpoints[endpoint] = stats
	}
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordSourceAttempt(endpoint, duration, err)
	}
}

// RecordSeasonFetch counts per-season fetch outcomes (ok, http_status, transport, malformed).
func (r *Recorder) RecordSeasonFetch(outcome string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.outcomes[outcome]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordSeasonFetch(outcome)
	}
}

// RecordCacheLookup tracks hits and misses for a named cache entry.
func (r *Recorder) RecordCacheLookup(name string, hit bool) {
	if r == nil {
		return
	}
	r.mu.Lock()
	byResult, ok := r.cache[name]
	if !ok {
		byResult = make(map[bool]int)
		r.cache[name] = byResult
	}
	byResult[hit]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordCacheLookup(name, hit)
	}
}

// RecordLoad tracks one uncached aggregation run.
func (r *Recorder) RecordLoad(duration time.Duration, rows, seasons int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.load.loads++
	r.load.lastRows = rows
	r.load.lastSeasons = seasons
	r.load.lastDuration = duration
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordLoad(duration, rows)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// SourceCalls returns the total attempts recorded for an endpoint.
func (r *Recorder) SourceCalls(endpoint string) int {
	return r.Snapshot(endpoint).Calls
}

// SourceErrors returns the total failed attempts recorded for an endpoint.
func (r *Recorder) SourceErrors(endpoint string) int {
	return r.Snapshot(endpoint).Errors
}

// SeasonFetches returns how many season fetches ended with outcome.
func (r *Recorder) SeasonFetches(outcome string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcomes[outcome]
}

// CacheLookups returns hit or miss counts for a named cache entry.
func (r *Recorder) CacheLookups(name string, hit bool) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache[name][hit]
}

// Loads returns the number of uncached loads and the row count of the last one.
func (r *Recorder) Loads() (count, lastRows int) {
	if r == nil {
		return 0, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load.loads, r.load.lastRows
}

// Snapshot returns a copy of the current stats for an endpoint.
type Snapshot struct {
	Calls           int
	Errors          int
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(endpoint string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.endpoints[endpoint]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		LastCallLatency: stats.lastCallLatency,
	}
}
