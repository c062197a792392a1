package warmer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
	"github.com/preston-bernstein/poll-position/internal/loader"
	"github.com/preston-bernstein/poll-position/internal/logging"
)

// DatasetLoader is the part of the loader the warmer drives.
type DatasetLoader interface {
	Load(ctx context.Context) []polls.RawPollRow
	Report() (loader.LoadReport, bool)
}

// SnapshotWriter persists the loaded dataset to disk.
type SnapshotWriter interface {
	WriteDataset(rows []polls.RawPollRow) error
}

// Warmer runs the first load in the background at boot so requests find a warm cache.
// The dataset never changes afterwards, so there is no refresh loop.
type Warmer struct {
	loader DatasetLoader
	writer SnapshotWriter
	logger *slog.Logger
	now    func() time.Time

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the outcome of the warm-up load.
type Status struct {
	LastAttempt     time.Time      `json:"lastAttempt"`
	LastSuccess     time.Time      `json:"lastSuccess"`
	Rows            int            `json:"rows"`
	Seasons         int            `json:"seasons"`
	DegradedSeasons []polls.Season `json:"degradedSeasons"`
	LastError       string         `json:"lastError,omitempty"`
	contractOK      bool
}

// IsReady reports whether a load finished and its rows passed the contract check.
func (s Status) IsReady() bool {
	return !s.LastSuccess.IsZero() && s.contractOK
}

// New constructs a Warmer. writer may be nil.
func New(l DatasetLoader, writer SnapshotWriter, logger *slog.Logger) *Warmer {
	return &Warmer{
		loader: l,
		writer: writer,
		logger: logger,
		now:    time.Now,
		done:   make(chan struct{}),
	}
}

// Start launches the warm-up load. Calling it again is a no-op.
func (w *Warmer) Start(ctx context.Context) {
	w.startMu.Lock()
	if w.started {
		w.startMu.Unlock()
		return
	}
	w.started = true
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.startMu.Unlock()

	go func() {
		defer close(w.done)
		defer cancel()
		logging.Info(w.logger, "warmer started")
		w.warmOnce(runCtx)
	}()
}

// Stop cancels an in-flight warm-up and waits for it to finish or for ctx to expire.
func (w *Warmer) Stop(ctx context.Context) error {
	w.startMu.Lock()
	started := w.started
	cancel := w.cancel
	w.startMu.Unlock()

	w.stopOnce.Do(func() {
		if cancel != nil {
			cancel()
		}
	})
	if !started {
		return nil
	}

	select {
	case <-w.done:
		logging.Info(w.logger, "warmer stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the warm-up load has finished.
func (w *Warmer) Done() <-chan struct{} {
	return w.done
}

// IsReady reports whether the warm-up load has completed successfully.
func (w *Warmer) IsReady() bool {
	return w.Status().IsReady()
}

// Status returns a snapshot of the warm-up outcome.
func (w *Warmer) Status() Status {
	w.statusMu.RLock()
	defer w.statusMu.RUnlock()
	out := w.status
	out.DegradedSeasons = append([]polls.Season(nil), w.status.DegradedSeasons...)
	return out
}

func (w *Warmer) warmOnce(ctx context.Context) {
	start := w.now()
	w.recordAttempt(start)

	rows := w.loader.Load(ctx)
	elapsed := w.now().Sub(start)

	st := Status{LastAttempt: start, LastSuccess: start, Rows: len(rows), contractOK: true}
	if report, ok := w.loader.Report(); ok {
		st.Seasons = len(report.Discovery.Seasons)
		st.DegradedSeasons = report.Degraded()
	}

	if err := loader.CheckDataset(rows); err != nil {
		logging.Error(w.logger, "warm-up dataset failed contract check", err)
		st.contractOK = false
		st.LastError = err.Error()
		w.setStatus(st)
		return
	}

	if w.writer != nil {
		if err := w.writer.WriteDataset(rows); err != nil {
			logging.Error(w.logger, "dataset snapshot write failed", err)
			st.LastError = err.Error()
		}
	}
	w.setStatus(st)

	logging.Info(w.logger, "warmer loaded dataset",
		slog.Int(logging.FieldCount, len(rows)),
		slog.Int(logging.FieldSeasons, st.Seasons),
		slog.Any("degraded", st.DegradedSeasons),
		slog.Int64(logging.FieldDurationMS, elapsed.Milliseconds()),
	)
}

func (w *Warmer) recordAttempt(at time.Time) {
	w.statusMu.Lock()
	defer w.statusMu.Unlock()
	w.status.LastAttempt = at
}

func (w *Warmer) setStatus(st Status) {
	w.statusMu.Lock()
	defer w.statusMu.Unlock()
	w.status = st
}
