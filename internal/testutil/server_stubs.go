package testutil

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/preston-bernstein/poll-position/internal/warmer"
)

// StubWarmer implements the server's Warmer for tests.
type StubWarmer struct {
	StartCalls atomic.Int32
	StopCalls  atomic.Int32
	Err        error
	StatusVal  warmer.Status
}

func (w *StubWarmer) Start(ctx context.Context) {
	_ = ctx
	w.StartCalls.Add(1)
}

func (w *StubWarmer) Stop(ctx context.Context) error {
	_ = ctx
	w.StopCalls.Add(1)
	return w.Err
}

func (w *StubWarmer) Status() warmer.Status {
	return w.StatusVal
}

// StubHTTPServer implements httpServer for tests. ListenAndServe runs on a
// background goroutine in the server, so counters are atomic.
type StubHTTPServer struct {
	AddrVal       string
	HandlerVal    http.Handler
	ListenCalls   atomic.Int32
	ShutdownCalls atomic.Int32
	ListenErr     error
	ShutdownErr   error
}

func (s *StubHTTPServer) ListenAndServe() error {
	s.ListenCalls.Add(1)
	return s.ListenErr
}

func (s *StubHTTPServer) Shutdown(ctx context.Context) error {
	_ = ctx
	s.ShutdownCalls.Add(1)
	return s.ShutdownErr
}

func (s *StubHTTPServer) Addr() string {
	return s.AddrVal
}

func (s *StubHTTPServer) Handler() http.Handler {
	return s.HandlerVal
}

// BlockingHTTPServer allows simulating a shutdown that waits on an unblock channel.
type BlockingHTTPServer struct {
	AddrVal       string
	HandlerVal    http.Handler
	ShutdownCalls atomic.Int32
	Unblock       chan struct{}
}

func (b *BlockingHTTPServer) ListenAndServe() error {
	return nil
}

func (b *BlockingHTTPServer) Shutdown(ctx context.Context) error {
	b.ShutdownCalls.Add(1)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.Unblock:
		return nil
	}
}

func (b *BlockingHTTPServer) Addr() string {
	return b.AddrVal
}

func (b *BlockingHTTPServer) Handler() http.Handler {
	return b.HandlerVal
}

// ErrHTTPServer returns an error on ListenAndServe; Shutdown increments a counter.
type ErrHTTPServer struct {
	ShutdownCalls atomic.Int32
}

func (e *ErrHTTPServer) ListenAndServe() error {
	return errors.New("listen failure")
}

func (e *ErrHTTPServer) Shutdown(ctx context.Context) error {
	_ = ctx
	e.ShutdownCalls.Add(1)
	return nil
}

func (e *ErrHTTPServer) Addr() string {
	return ":0"
}

func (e *ErrHTTPServer) Handler() http.Handler {
	return http.NewServeMux()
}
