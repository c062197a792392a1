package providers

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
	"github.com/preston-bernstein/poll-position/internal/logging"
	"github.com/preston-bernstein/poll-position/internal/metrics"
)

type fakeSource struct {
	seasons     []polls.Season
	seasonsErr  error
	poll        LatestPoll
	pollErr     error
	seasonCalls int
	pollCalls   int
}

func (f *fakeSource) FetchSeasons(ctx context.Context) ([]polls.Season, error) {
	_ = ctx
	f.seasonCalls++
	return f.seasons, f.seasonsErr
}

func (f *fakeSource) FetchLatestPoll(ctx context.Context, season polls.Season) (LatestPoll, error) {
	_ = ctx
	_ = season
	f.pollCalls++
	return f.poll, f.pollErr
}

func TestInstrumentedSourceRecordsCallsWithoutRetrying(t *testing.T) {
	inner := &fakeSource{
		seasons: []polls.Season{2023, 2024},
		pollErr: &HTTPStatusError{Endpoint: EndpointLatestPoll, StatusCode: 500},
	}
	rec := metrics.NewRecorder()
	src := NewInstrumentedSource(inner, nil, rec, "pollapi")

	seasons, err := src.FetchSeasons(context.Background())
	if err != nil || len(seasons) != 2 {
		t.Fatalf("expected seasons passthrough, got %v %v", seasons, err)
	}
	if _, err := src.FetchLatestPoll(context.Background(), 2024); err == nil {
		t.Fatal("expected poll error passthrough")
	}

	if inner.pollCalls != 1 {
		t.Fatalf("expected exactly one upstream poll call, got %d", inner.pollCalls)
	}
	if got := rec.SourceCalls(EndpointSeasons); got != 1 {
		t.Fatalf("expected 1 seasons call, got %d", got)
	}
	if got := rec.SourceErrors(EndpointLatestPoll); got != 1 {
		t.Fatalf("expected 1 latest-poll error, got %d", got)
	}
}

type fakeFilesSource struct {
	fakeSource
	files    polls.SeasonFilesResponse
	filesErr error
}

func (f *fakeFilesSource) FetchSeasonFiles(ctx context.Context, season polls.Season) (polls.SeasonFilesResponse, error) {
	_ = ctx
	_ = season
	return f.files, f.filesErr
}

func TestInstrumentedSourceForwardsSeasonFiles(t *testing.T) {
	inner := &fakeFilesSource{files: polls.SeasonFilesResponse{
		Season: 2024,
		Files:  []polls.SeasonFile{{Key: "polls/2024/latest.json", Size: 2048}},
	}}
	rec := metrics.NewRecorder()
	src := NewInstrumentedSource(inner, nil, rec, "pollapi")

	lister, ok := src.(SeasonFilesSource)
	if !ok {
		t.Fatal("expected instrumented source to list season files")
	}
	resp, err := lister.FetchSeasonFiles(context.Background(), 2024)
	if err != nil || len(resp.Files) != 1 || resp.Files[0].Key != "polls/2024/latest.json" {
		t.Fatalf("unexpected files %+v %v", resp, err)
	}
	if got := rec.SourceCalls(EndpointSeasonPoll); got != 1 {
		t.Fatalf("expected 1 season-poll call, got %d", got)
	}
}

func TestInstrumentedSourceSeasonFilesUnsupported(t *testing.T) {
	rec := metrics.NewRecorder()
	for _, inner := range []Source{&fakeSource{}, nil} {
		src := NewInstrumentedSource(inner, nil, rec, "fixture")
		_, err := src.(SeasonFilesSource).FetchSeasonFiles(context.Background(), 2024)
		if !errors.Is(err, ErrSeasonFilesUnsupported) {
			t.Fatalf("expected ErrSeasonFilesUnsupported, got %v", err)
		}
	}
	if got := rec.SourceCalls(EndpointSeasonPoll); got != 0 {
		t.Fatalf("expected no recorded calls, got %d", got)
	}
}

func TestInstrumentedSourceMeasuresLatency(t *testing.T) {
	rec := metrics.NewRecorder()
	src := NewInstrumentedSource(&fakeSource{}, nil, rec, "").(*instrumentedSource)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	src.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * 25 * time.Millisecond)
	}

	_, _ = src.FetchSeasons(context.Background())

	if got := rec.Snapshot(EndpointSeasons).LastCallLatency; got != 25*time.Millisecond {
		t.Fatalf("expected 25ms latency, got %s", got)
	}
	if src.name != "source" {
		t.Fatalf("expected fallback name, got %s", src.name)
	}
}

func TestInstrumentedSourceHandlesNilInner(t *testing.T) {
	src := NewInstrumentedSource(nil, nil, nil, "none")

	if _, err := src.FetchSeasons(context.Background()); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	poll, err := src.FetchLatestPoll(context.Background(), 2024)
	if !errors.Is(err, ErrSourceUnavailable) || poll.Shape != ShapeUnknown {
		t.Fatalf("expected ErrSourceUnavailable with unknown shape, got %v %v", poll, err)
	}
}

func TestInstrumentedSourceLogsThroughContextLogger(t *testing.T) {
	var buf bytes.Buffer
	scoped := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := logging.WithLogger(context.Background(), scoped)

	src := NewInstrumentedSource(&fakeSource{poll: LatestPoll{Shape: ShapeLegacy}}, nil, nil, "pollapi")
	_, _ = src.FetchLatestPoll(ctx, 2021)

	out := buf.String()
	for _, want := range []string{"provider=pollapi", "endpoint=latest-poll", "season=2021", "shape=legacy"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log output %q", want, out)
		}
	}
}
