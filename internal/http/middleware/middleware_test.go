package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/preston-bernstein/poll-position/internal/logging"
	"github.com/preston-bernstein/poll-position/internal/metrics"
	"github.com/preston-bernstein/poll-position/internal/testutil"
)

func TestLoggingMiddlewareSetsRequestIDAndCallsNext(t *testing.T) {
	logger, _ := testutil.NewBufferLogger()
	rec := metrics.NewRecorder()
	nextCalled := false

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		if got := RequestIDFromContext(r.Context()); got == "" {
			t.Fatalf("expected request id in context")
		}
		w.WriteHeader(http.StatusTeapot)
	})

	handler := LoggingMiddleware(logger, rec, next)
	rr := testutil.Serve(handler, http.MethodGet, "/polls", nil)

	if !nextCalled {
		t.Fatalf("expected next handler to be called")
	}
	testutil.AssertStatus(t, rr, http.StatusTeapot)
	if got := rec.Snapshot("http").Calls; got != 0 {
		t.Fatalf("expected no source metrics recorded, got %d", got)
	}
}

func TestLoggingMiddlewareGeneratesRequestIDWhenMissing(t *testing.T) {
	logger, _ := testutil.NewBufferLogger()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := LoggingMiddleware(logger, nil, next)
	rr := testutil.Serve(handler, http.MethodGet, "/polls?season=2024", nil)

	testutil.AssertStatus(t, rr, http.StatusOK)
	if got := rr.Header().Get("X-Request-ID"); got == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
}

func TestLoggingMiddlewareKeepsValidIncomingRequestID(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := RequestIDFromContext(r.Context()); got != "incoming-1" {
			t.Fatalf("expected incoming id in context, got %s", got)
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/seasons", nil)
	req.Header.Set("X-Request-ID", "incoming-1")
	rr := testutil.ServeRequest(LoggingMiddleware(logger, nil, next), req)

	if got := rr.Header().Get("X-Request-ID"); got != "incoming-1" {
		t.Fatalf("expected incoming id echoed, got %s", got)
	}
	out := buf.String()
	for _, want := range []string{"request_id=incoming-1", "path=/seasons", "status_code=200"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log output %q", want, out)
		}
	}
}

func TestLoggingMiddlewareStoresScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context(), nil).Info("inside handler")
	})

	testutil.Serve(LoggingMiddleware(logger, nil, next), http.MethodGet, "/polls", nil)

	if !strings.Contains(buf.String(), "msg=\"inside handler\" request_id=") {
		t.Fatalf("expected handler log to carry request id, got %q", buf.String())
	}
}

func TestLoggingMiddlewareDefaultsLogger(t *testing.T) {
	handler := LoggingMiddleware(nil, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := testutil.Serve(handler, http.MethodGet, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/health", "/health"},
		{"/ready", "/ready"},
		{"/polls", "/polls"},
		{"/polls/report", "/polls/report"},
		{"/seasons", "/seasons"},
		{"/polls/2024", "other"},
		{"/wp-admin", "other"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.in); got != tt.want {
			t.Fatalf("normalizePath(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestRequestIDHelpers(t *testing.T) {
	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Fatalf("expected empty id, got %s", got)
	}

	ctx = withRequestID(ctx, "abc123")
	if got := RequestIDFromContext(ctx); got != "abc123" {
		t.Fatalf("expected id from context, got %s", got)
	}
}

func BenchmarkLoggingMiddleware(b *testing.B) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	rec := metrics.NewRecorder()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Microsecond)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/polls", nil)
	rr := httptest.NewRecorder()

	handler := LoggingMiddleware(logger, rec, next)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.ServeHTTP(rr, req)
	}
}
