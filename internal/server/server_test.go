package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/preston-bernstein/poll-position/internal/config"
	"github.com/preston-bernstein/poll-position/internal/http/handlers"
	"github.com/preston-bernstein/poll-position/internal/metrics"
	"github.com/preston-bernstein/poll-position/internal/providers"
	"github.com/preston-bernstein/poll-position/internal/snapshots"
	"github.com/preston-bernstein/poll-position/internal/testutil"
)

func fixtureConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Port:           "0",
		Provider:       config.ProviderFixture,
		FallbackSeason: 2024,
		Cache:          config.CacheConfig{Backend: config.CacheMemory},
		SnapshotDir:    t.TempDir(),
	}
}

func runServer(t *testing.T, srv *Server, ctx context.Context, cancel context.CancelFunc) <-chan struct{} {
	t.Helper()
	done := make(chan struct{})
	go func() {
		srv.Run(ctx, cancel)
		close(done)
	}()
	return done
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServerServesFixtureDataset(t *testing.T) {
	cfg := fixtureConfig(t)
	rec, _ := testutil.NewRecorderWithShutdown()
	srv := newServerWithMetrics(context.Background(), cfg, nil, nil, rec)

	rr := testutil.Serve(srv.Handler(), http.MethodGet, "/polls", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp handlers.PollsResponse
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Count != 5 {
		t.Fatalf("expected 5 filtered rows, got %d", resp.Count)
	}
	if len(resp.Seasons) != 2 || resp.Seasons[0] != 2024 || resp.Seasons[1] != 2023 {
		t.Fatalf("unexpected seasons %v", resp.Seasons)
	}
	for _, row := range resp.Rows[3:] {
		if row.Season != 2023 {
			t.Fatalf("expected legacy rows stamped with 2023, got %+v", row)
		}
	}

	if rr := testutil.Serve(srv.Handler(), http.MethodGet, "/polls/report", nil); rr.Code != http.StatusOK {
		t.Fatalf("expected report after load, got %d", rr.Code)
	}
	if got := rec.SourceCalls(providers.EndpointLatestPoll); got == 0 {
		t.Fatalf("expected instrumented source calls to be recorded")
	}
}

func TestServerUnknownRouteReturnsJSON404(t *testing.T) {
	rec, _ := testutil.NewRecorderWithShutdown()
	srv := newServerWithMetrics(context.Background(), fixtureConfig(t), nil, nil, rec)

	rr := testutil.Serve(srv.Handler(), http.MethodGet, "/nope", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
	rr = testutil.Serve(srv.Handler(), http.MethodPost, "/polls", nil)
	testutil.AssertStatus(t, rr, http.StatusMethodNotAllowed)
}

func TestRunWarmsAndWritesSnapshot(t *testing.T) {
	cfg := fixtureConfig(t)
	rec, _ := testutil.NewRecorderWithShutdown()
	srv := newServerWithMetrics(context.Background(), cfg, nil, nil, rec)
	stub := &testutil.StubHTTPServer{AddrVal: ":0", HandlerVal: srv.Handler(), ListenErr: http.ErrServerClosed}
	srv.httpServer = stub

	ctx, cancel := context.WithCancel(context.Background())
	done := runServer(t, srv, ctx, cancel)

	deadline := time.Now().Add(2 * time.Second)
	for !srv.warmer.Status().IsReady() {
		if time.Now().After(deadline) {
			t.Fatal("warmer never became ready")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	waitDone(t, done)

	if stub.ShutdownCalls.Load() != 1 {
		t.Fatalf("expected http shutdown once, got %d", stub.ShutdownCalls.Load())
	}
	if _, err := os.Stat(snapshots.DatasetSnapshotPath(cfg.SnapshotDir)); err != nil {
		t.Fatalf("expected dataset snapshot, got %v", err)
	}
}

func TestRunStopsWarmerAndServer(t *testing.T) {
	w := &testutil.StubWarmer{}
	httpSrv := &testutil.StubHTTPServer{AddrVal: ":0"}
	srv := newServerWithDeps(config.Config{}, nil, testutil.NewLoaderWithRows(nil), httpSrv, w)

	ctx, cancel := context.WithCancel(context.Background())
	done := runServer(t, srv, ctx, cancel)
	cancel()
	waitDone(t, done)

	if w.StartCalls.Load() != 1 || w.StopCalls.Load() != 1 {
		t.Fatalf("expected warmer start/stop once, got %d/%d", w.StartCalls.Load(), w.StopCalls.Load())
	}
	if httpSrv.ShutdownCalls.Load() != 1 {
		t.Fatalf("expected http shutdown, got %d", httpSrv.ShutdownCalls.Load())
	}
}

func TestRunListenFailureTriggersStop(t *testing.T) {
	w := &testutil.StubWarmer{Err: errors.New("stop failed")}
	httpSrv := &testutil.ErrHTTPServer{}
	logger, buf := testutil.NewBufferLogger()
	srv := newServerWithDeps(config.Config{}, logger, testutil.NewLoaderWithRows(nil), httpSrv, w)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runServer(t, srv, ctx, cancel)
	waitDone(t, done)

	if httpSrv.ShutdownCalls.Load() != 1 {
		t.Fatalf("expected shutdown after listen failure")
	}
	if buf.Len() == 0 {
		t.Fatalf("expected listen and stop failures to be logged")
	}
}

func TestGracefulShutdownTimesOut(t *testing.T) {
	prev := shutdownTimeout
	shutdownTimeout = 20 * time.Millisecond
	t.Cleanup(func() { shutdownTimeout = prev })

	httpSrv := &testutil.BlockingHTTPServer{AddrVal: ":0", Unblock: make(chan struct{})}
	closed := false
	srv := newServerWithDeps(config.Config{}, nil, testutil.NewLoaderWithRows(nil), httpSrv, &testutil.StubWarmer{})
	srv.closeCache = func() error {
		closed = true
		return nil
	}

	srv.gracefulShutdown()
	if httpSrv.ShutdownCalls.Load() != 1 {
		t.Fatalf("expected blocking shutdown attempted")
	}
	if !closed {
		t.Fatalf("expected cache closed even when http shutdown times out")
	}
}

func TestBuildMetricsFallsBackOnSetupError(t *testing.T) {
	prev := metricsSetup
	metricsSetup = func(context.Context, metrics.TelemetryConfig) (*metrics.Recorder, http.Handler, func(context.Context) error, error) {
		return nil, nil, nil, errors.New("otel down")
	}
	t.Cleanup(func() { metricsSetup = prev })

	cfg := config.Config{Metrics: config.MetricsConfig{Enabled: true, Port: "9999"}}
	rec, srv, stop := buildMetrics(context.Background(), cfg, nil, nil)
	if rec == nil {
		t.Fatalf("expected fallback recorder")
	}
	if srv != nil || stop != nil {
		t.Fatalf("expected no metrics server on setup failure")
	}
}

func TestBuildMetricsServesHandlerWhenEnabled(t *testing.T) {
	prev := metricsSetup
	metricsSetup = func(context.Context, metrics.TelemetryConfig) (*metrics.Recorder, http.Handler, func(context.Context) error, error) {
		return metrics.NewRecorder(), http.NewServeMux(), func(context.Context) error { return nil }, nil
	}
	t.Cleanup(func() { metricsSetup = prev })

	cfg := config.Config{Metrics: config.MetricsConfig{Enabled: true, Port: "9999"}}
	_, srv, stop := buildMetrics(context.Background(), cfg, nil, nil)
	if srv == nil || srv.Addr() != ":9999" {
		t.Fatalf("expected metrics server on :9999")
	}
	if stop == nil {
		t.Fatalf("expected shutdown func")
	}
}

func TestBuildMetricsUsesProvidedRecorder(t *testing.T) {
	rec := metrics.NewRecorder()
	got, srv, stop := buildMetrics(context.Background(), config.Config{}, nil, rec)
	if got != rec || srv != nil || stop != nil {
		t.Fatalf("expected provided recorder to be used as-is")
	}
}

func TestNetHTTPServerAccessors(t *testing.T) {
	h := http.NewServeMux()
	s := netHTTPServer{srv: &http.Server{Addr: ":1234", Handler: h}}
	if s.Addr() != ":1234" || s.Handler() == nil {
		t.Fatalf("unexpected accessors")
	}
}

func TestLoaderAccessor(t *testing.T) {
	l := testutil.NewLoaderWithRows(testutil.SampleDataset())
	srv := newServerWithDeps(config.Config{}, nil, l, &testutil.StubHTTPServer{}, &testutil.StubWarmer{})
	if srv.Loader() != l {
		t.Fatalf("expected loader accessor to return injected loader")
	}
}
