// Package main is the entry point for the pollposition CLI.
//
// Usage:
//
//	pollposition serve                   # Start the read API
//	pollposition load --output yaml      # Load every season once and print it
//	pollposition seasons --files         # List seasons and their stored poll files
//	pollposition version                 # Show version info
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/poll-position/internal/config"
	"github.com/preston-bernstein/poll-position/internal/logging"
)

// Set at build time via ldflags, e.g. -ldflags "-X main.version=1.0.0".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const serviceName = "poll-position"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pollposition",
		Short: "Aggregate AP Top 25 regular-season polls across seasons",
		Long: `pollposition discovers the seasons published by the poll API, loads the
latest poll of each one, keeps only AP Top 25 regular-season rows and serves
the combined dataset.

Configuration comes from environment variables, optionally layered over a
YAML file passed with --config.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "path to a YAML config file")

	root.AddCommand(newServeCmd(), newLoadCmd(), newSeasonsCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pollposition %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}

// loadConfig resolves --config (or POLL_POSITION_CONFIG) into a Config.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFile(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.Config, out io.Writer) *slog.Logger {
	return logging.NewLogger(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: serviceName,
		Version: version,
		Output:  out,
	})
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
