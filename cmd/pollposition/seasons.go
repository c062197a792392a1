package main

import (
	"errors"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/poll-position/internal/config"
	"github.com/preston-bernstein/poll-position/internal/logging"
	"github.com/preston-bernstein/poll-position/internal/providers"
	"github.com/preston-bernstein/poll-position/internal/server"
)

func newSeasonsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seasons",
		Short: "Print the discovered seasons",
		Long: `Print the seasons the poll API publishes, newest first. When discovery
fails the configured fallback season is printed instead.

With --files, the stored poll files of each season are listed as well.
Listing files needs the pollapi provider.`,
		RunE: runSeasons,
	}
	cmd.Flags().Bool("files", false, "also list the stored poll files of each season")
	return cmd
}

func runSeasons(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	comps := server.BuildComponents(ctx, cfg, logger, nil)
	defer func() {
		if err := comps.Close(); err != nil {
			logging.Warn(logger, "cache close failed", "error", err)
		}
	}()

	withFiles, _ := cmd.Flags().GetBool("files")
	lister, ok := comps.Source.(providers.SeasonFilesSource)
	if withFiles && !ok {
		return fmt.Errorf("--files needs the %s provider", config.ProviderPollAPI)
	}
	seasons := comps.Loader.DiscoverSeasons(ctx)

	out := cmd.OutOrStdout()
	if !withFiles {
		for _, s := range seasons {
			fmt.Fprintln(out, s)
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEASON\tKEY\tSIZE\tLAST MODIFIED")
	for _, s := range seasons {
		files, err := lister.FetchSeasonFiles(ctx, s)
		if errors.Is(err, providers.ErrSeasonFilesUnsupported) {
			return fmt.Errorf("--files needs the %s provider: %w", config.ProviderPollAPI, err)
		}
		if err != nil {
			logging.Warn(logger, "failed to list season files", slog.Int(logging.FieldSeason, int(s)), "error", err)
			fmt.Fprintf(tw, "%d\t-\t-\t-\n", s)
			continue
		}
		if len(files.Files) == 0 {
			fmt.Fprintf(tw, "%d\t-\t-\t-\n", s)
		}
		for _, f := range files.Files {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", s, f.Key, f.Size, f.LastModified)
		}
	}
	return tw.Flush()
}
