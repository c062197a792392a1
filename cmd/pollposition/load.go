package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/preston-bernstein/poll-position/internal/config"
	"github.com/preston-bernstein/poll-position/internal/domain/polls"
	"github.com/preston-bernstein/poll-position/internal/loader"
	"github.com/preston-bernstein/poll-position/internal/logging"
	"github.com/preston-bernstein/poll-position/internal/server"
	"github.com/preston-bernstein/poll-position/internal/snapshots"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// loadOutput is what `load` prints.
type loadOutput struct {
	Count   int                `json:"count" yaml:"count"`
	Seasons []polls.Season     `json:"seasons" yaml:"seasons"`
	Rows    []polls.RawPollRow `json:"rows" yaml:"rows"`
}

func newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load every season once and print the dataset",
		Long: `Discover seasons, load the latest poll of each one and print the combined
AP Top 25 regular-season dataset.

Exit codes:
  0 - Dataset loaded (degraded seasons simply contribute no rows)
  1 - The dataset failed the contract check or could not be printed

Example:
  pollposition load --output yaml
  pollposition load --snapshot-dir ./data
  pollposition load --from-snapshot --snapshot-dir ./data`,
		RunE: runLoad,
	}
	cmd.Flags().StringP("output", "o", outputJSON, "output format (json|yaml)")
	cmd.Flags().String("snapshot-dir", "", "write (or with --from-snapshot, read) the dataset snapshot here")
	cmd.Flags().Bool("from-snapshot", false, "print the stored snapshot instead of calling the API")
	return cmd
}

func runLoad(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output")
	if format != outputJSON && format != outputYAML {
		return fmt.Errorf("unsupported output %q (expected json or yaml)", format)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("snapshot-dir"); dir != "" {
		cfg.SnapshotDir = dir
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	var rows []polls.RawPollRow
	if fromSnapshot, _ := cmd.Flags().GetBool("from-snapshot"); fromSnapshot {
		rows, err = readSnapshot(cfg.SnapshotDir)
		if err != nil {
			return err
		}
	} else {
		rows, err = loadDataset(cmd, cfg, logger)
		if err != nil {
			return err
		}
	}

	if err := loader.CheckDataset(rows); err != nil {
		logging.Error(logger, "dataset failed contract check", err)
		return err
	}
	return writeOutput(cmd.OutOrStdout(), format, loadOutput{
		Count:   len(rows),
		Seasons: polls.SeasonsOf(rows),
		Rows:    rows,
	})
}

func loadDataset(cmd *cobra.Command, cfg config.Config, logger *slog.Logger) ([]polls.RawPollRow, error) {
	ctx := commandContext(cmd)
	comps := server.BuildComponents(ctx, cfg, logger, nil)
	defer func() {
		if err := comps.Close(); err != nil {
			logging.Warn(logger, "cache close failed", "error", err)
		}
	}()

	rows := comps.Loader.Load(ctx)
	if report, ok := comps.Loader.Report(); ok {
		if degraded := report.Degraded(); len(degraded) > 0 {
			logging.Warn(logger, "some seasons contributed no rows", slog.Any(logging.FieldSeasons, degraded))
		}
	}

	if comps.Writer != nil && loader.CheckDataset(rows) == nil {
		if err := comps.Writer.WriteDataset(rows); err != nil {
			return nil, fmt.Errorf("write snapshot: %w", err)
		}
		logging.Info(logger, "dataset snapshot written", slog.String(logging.FieldPath, snapshots.DatasetSnapshotPath(comps.Writer.BasePath())))
	}
	return rows, nil
}

func readSnapshot(dir string) ([]polls.RawPollRow, error) {
	if dir == "" {
		return nil, errors.New("--from-snapshot needs --snapshot-dir or SNAPSHOT_DIR")
	}
	ds, err := snapshots.NewFSStore(dir).LoadDataset()
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return ds.Rows, nil
}

func writeOutput(w io.Writer, format string, payload any) error {
	if format == outputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(payload); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
