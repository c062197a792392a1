package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/poll-position/internal/config"
	httpserver "github.com/preston-bernstein/poll-position/internal/http"
	"github.com/preston-bernstein/poll-position/internal/http/handlers"
	"github.com/preston-bernstein/poll-position/internal/http/middleware"
	"github.com/preston-bernstein/poll-position/internal/loader"
	"github.com/preston-bernstein/poll-position/internal/logging"
	"github.com/preston-bernstein/poll-position/internal/metrics"
	"github.com/preston-bernstein/poll-position/internal/providers"
	"github.com/preston-bernstein/poll-position/internal/warmer"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	loader        *loader.Loader
	httpServer    httpServer
	metricsServer httpServer
	warmer        Warmer
	metricsStop   func(context.Context) error
	closeCache    func() error
}

// New constructs a server with the configured source, cache and warmer.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) *Server {
	return newServerWithMetrics(ctx, cfg, logger, nil, nil)
}

func newServerWithSource(ctx context.Context, cfg config.Config, logger *slog.Logger, source providers.Source) *Server {
	return newServerWithMetrics(ctx, cfg, logger, source, nil)
}

func newServerWithMetrics(ctx context.Context, cfg config.Config, logger *slog.Logger, source providers.Source, recorder *metrics.Recorder) *Server {
	recorder, metricsSrv, metricsShutdown := buildMetrics(ctx, cfg, logger, recorder)

	if source == nil {
		source = BuildSource(cfg, logger, recorder)
	} else {
		source = providers.NewInstrumentedSource(source, logger, recorder, sourceName(cfg))
	}
	comps := buildComponentsWithSource(ctx, cfg, logger, recorder, source)

	var writer warmer.SnapshotWriter
	if comps.Writer != nil {
		writer = comps.Writer
	}
	w := warmer.New(comps.Loader, writer, logger)
	httpSrv := buildHTTPServer(cfg, comps.Loader, logger, recorder, w)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		loader:        comps.Loader,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		warmer:        w,
		metricsStop:   metricsShutdown,
		closeCache:    comps.Close,
	}
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, l *loader.Loader, httpSrv httpServer, w Warmer) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		loader:     l,
		httpServer: httpSrv,
		warmer:     w,
	}
}

func buildHTTPServer(cfg config.Config, l *loader.Loader, logger *slog.Logger, recorder *metrics.Recorder, w Warmer) httpServer {
	var statusFn func() warmer.Status
	if w != nil {
		statusFn = w.Status
	}

	handler := handlers.NewHandler(l, logger, statusFn)
	router := httpserver.NewRouter(handler)
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	wrapped := middleware.LoggingMiddleware(logger, recorder, router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      wrapped,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// Run starts the warmer and HTTP server, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	s.warmer.Start(context.WithoutCancel(ctx))

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	logging.Info(s.logger, "http server starting", slog.String("addr", s.httpServer.Addr()))
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	logging.Info(s.logger, "metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	if err := s.warmer.Stop(shutdownCtx); err != nil {
		logging.Error(s.logger, "failed to stop warmer", err)
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	if s.closeCache != nil {
		if err := s.closeCache(); err != nil {
			logging.Warn(s.logger, "cache close failed", "error", err)
		}
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(ctx context.Context, cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(ctx, recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:    ":" + recCfg.Port,
				Handler: handler,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		logging.Info(logger, "starting "+name+" server", slog.String("addr", srv.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}

// Loader exposes the poll loader (useful for tests).
func (s *Server) Loader() *loader.Loader {
	return s.loader
}
