package warmer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
	"github.com/preston-bernstein/poll-position/internal/loader"
	"github.com/preston-bernstein/poll-position/internal/providers"
	"github.com/preston-bernstein/poll-position/internal/teststubs"
)

type fakeLoader struct {
	rows   []polls.RawPollRow
	report loader.LoadReport
	block  chan struct{}
	calls  int
}

func (f *fakeLoader) Load(ctx context.Context) []polls.RawPollRow {
	f.calls++
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
		}
	}
	return f.rows
}

func (f *fakeLoader) Report() (loader.LoadReport, bool) {
	return f.report, true
}

func waitDone(t *testing.T, w *Warmer) {
	t.Helper()
	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for warm-up")
	}
}

func TestWarmerLoadsAndWritesSnapshot(t *testing.T) {
	src := &teststubs.StubSource{
		Seasons: []polls.Season{2024, 2023},
		Polls: map[polls.Season]providers.LatestPoll{
			2024: {Shape: providers.ShapeSeasonAware, Rows: []polls.RawPollRow{
				{Poll: polls.PollAPTop25, SeasonType: "regular", School: "Oregon", Rank: 1},
			}},
		},
	}
	l := loader.New(src, nil, loader.Config{})
	writer := &teststubs.StubSnapshotWriter{}

	w := New(l, writer, nil)
	if w.IsReady() {
		t.Fatal("warmer should not be ready before starting")
	}
	w.Start(context.Background())
	waitDone(t, w)

	if !w.IsReady() {
		t.Fatalf("expected ready after warm-up, status %+v", w.Status())
	}
	st := w.Status()
	if st.Rows != 1 || st.Seasons != 2 {
		t.Fatalf("unexpected status %+v", st)
	}
	if len(st.DegradedSeasons) != 1 || st.DegradedSeasons[0] != 2023 {
		t.Fatalf("expected 2023 degraded, got %v", st.DegradedSeasons)
	}
	written := writer.Written()
	if len(written) != 1 || written[0][0].School != "Oregon" {
		t.Fatalf("expected snapshot of loaded rows, got %v", written)
	}

	if rows := l.Load(context.Background()); len(rows) != 1 || src.PollCalls.Load() != 2 {
		t.Fatalf("expected warm cache, got rows=%v calls=%d", rows, src.PollCalls.Load())
	}
}

func TestWarmerStartIsIdempotent(t *testing.T) {
	f := &fakeLoader{rows: []polls.RawPollRow{}}
	w := New(f, nil, nil)

	w.Start(context.Background())
	w.Start(context.Background())
	waitDone(t, w)

	if f.calls != 1 {
		t.Fatalf("expected a single load, got %d", f.calls)
	}
}

func TestWarmerStopIsIdempotent(t *testing.T) {
	w := New(&fakeLoader{rows: []polls.RawPollRow{}}, nil, nil)

	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("first stop returned error: %v", err)
	}
	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("second stop returned error: %v", err)
	}
}

func TestWarmerStopCancelsInFlightLoad(t *testing.T) {
	f := &fakeLoader{rows: []polls.RawPollRow{}, block: make(chan struct{})}
	w := New(f, nil, nil)
	w.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Stop(ctx); err != nil {
		t.Fatalf("expected stop to wait for the canceled load, got %v", err)
	}
	select {
	case <-w.Done():
	default:
		t.Fatal("expected warm-up goroutine to have finished")
	}
}

func TestWarmerStopHonoursDeadline(t *testing.T) {
	f := &fakeLoader{rows: []polls.RawPollRow{}, block: make(chan struct{})}
	w := New(f, nil, nil)
	w.cancel = func() {}
	w.started = true

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := w.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestWarmerContractViolationIsNotReady(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	f := &fakeLoader{rows: []polls.RawPollRow{{Poll: "Coaches", SeasonType: "regular", Season: 2024}}}
	writer := &teststubs.StubSnapshotWriter{}
	w := New(f, writer, logger)

	w.Start(context.Background())
	waitDone(t, w)

	if w.IsReady() {
		t.Fatal("expected warmer not ready after contract violation")
	}
	if !strings.Contains(w.Status().LastError, "contract violation") {
		t.Fatalf("unexpected last error %q", w.Status().LastError)
	}
	if len(writer.Written()) != 0 {
		t.Fatal("expected no snapshot for invalid dataset")
	}
	if !strings.Contains(buf.String(), "contract check") {
		t.Fatalf("expected contract failure to be logged, got %q", buf.String())
	}
}

func TestWarmerWriteErrorLogsButStaysReady(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	writer := &teststubs.StubSnapshotWriter{Err: errors.New("disk full")}
	w := New(&fakeLoader{rows: []polls.RawPollRow{}}, writer, logger)

	w.Start(context.Background())
	waitDone(t, w)

	if !w.IsReady() {
		t.Fatal("expected ready even when the snapshot write fails")
	}
	if w.Status().LastError != "disk full" {
		t.Fatalf("unexpected last error %q", w.Status().LastError)
	}
	if !strings.Contains(buf.String(), "snapshot write failed") {
		t.Fatalf("expected write failure to be logged, got %q", buf.String())
	}
}
