package server

import (
	"log/slog"
	"strings"

	"github.com/preston-bernstein/poll-position/internal/config"
	"github.com/preston-bernstein/poll-position/internal/logging"
	"github.com/preston-bernstein/poll-position/internal/metrics"
	"github.com/preston-bernstein/poll-position/internal/providers"
	"github.com/preston-bernstein/poll-position/internal/providers/fixture"
	"github.com/preston-bernstein/poll-position/internal/providers/pollapi"
)

func selectSource(cfg config.Config, logger *slog.Logger) providers.Source {
	switch sourceName(cfg) {
	case config.ProviderFixture:
		return fixture.New()
	case config.ProviderPollAPI:
		return pollapi.NewClient(pollapi.Config{
			BaseURL: cfg.PollAPI.BaseURL,
			Timeout: cfg.PollAPI.Timeout,
		})
	default:
		logging.Warn(logger, "unknown provider, falling back to pollapi", slog.String("provider", cfg.Provider))
		return pollapi.NewClient(pollapi.Config{
			BaseURL: cfg.PollAPI.BaseURL,
			Timeout: cfg.PollAPI.Timeout,
		})
	}
}

// BuildSource selects the configured source and wraps it with call metrics.
func BuildSource(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) providers.Source {
	return providers.NewInstrumentedSource(selectSource(cfg, logger), logger, recorder, sourceName(cfg))
}

func sourceName(cfg config.Config) string {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		return config.ProviderPollAPI
	}
	return name
}
