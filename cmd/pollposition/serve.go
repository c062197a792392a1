package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/poll-position/internal/logging"
	"github.com/preston-bernstein/poll-position/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the read API",
		Long: `Start the HTTP read API and, when enabled, the metrics server.

The first load runs in the background at boot; /ready turns green once it
finished and passed the dataset contract check. The server runs until
interrupted (Ctrl+C) or it receives SIGTERM.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stdout)
	logging.Info(logger, "config loaded",
		slog.String(logging.FieldProvider, cfg.Provider),
		slog.String("cache", cfg.Cache.Backend),
		slog.String("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(ctx, cfg, logger)
	srv.Run(ctx, stop)
	return nil
}

// commandContext returns the command's context, or Background when run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
