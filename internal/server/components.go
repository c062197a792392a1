package server

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/poll-position/internal/config"
	"github.com/preston-bernstein/poll-position/internal/domain/polls"
	"github.com/preston-bernstein/poll-position/internal/loader"
	"github.com/preston-bernstein/poll-position/internal/metrics"
	"github.com/preston-bernstein/poll-position/internal/providers"
	"github.com/preston-bernstein/poll-position/internal/snapshots"
)

// Components are the pieces shared by the server and the CLI.
type Components struct {
	Source providers.Source
	Loader *loader.Loader
	// Writer is nil when no snapshot directory is configured.
	Writer *snapshots.Writer
	Close  func() error
}

// BuildComponents wires source, cache, loader and snapshot writer from cfg.
func BuildComponents(ctx context.Context, cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) Components {
	return buildComponentsWithSource(ctx, cfg, logger, recorder, BuildSource(cfg, logger, recorder))
}

func buildComponentsWithSource(ctx context.Context, cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder, source providers.Source) Components {
	c, closeFn := buildCache(ctx, cfg, logger)
	l := loader.New(source, c, loader.Config{
		FallbackSeason: polls.Season(cfg.FallbackSeason),
		Logger:         logger,
		Metrics:        recorder,
	})

	var writer *snapshots.Writer
	if cfg.SnapshotDir != "" {
		writer = snapshots.NewWriter(cfg.SnapshotDir)
	}

	return Components{
		Source: source,
		Loader: l,
		Writer: writer,
		Close:  closeFn,
	}
}
