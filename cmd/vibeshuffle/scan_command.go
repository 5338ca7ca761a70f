package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vibeshuffle/internal/library"
	"vibeshuffle/internal/logging"
	"vibeshuffle/internal/playerrun"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [music_dir]",
		Short: "Embed every track and fill the cache without playing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.withMusicDir(args)
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg, "")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			report, stats, err := playerrun.Scan(cmd.Context(), cfg, logger, playerrun.LibraryOptions{
				Progress: library.TerminalProgress(),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Discovered", fmt.Sprint(report.Discovered)},
				{"Loaded", fmt.Sprint(report.Loaded)},
				{"Skipped", fmt.Sprint(report.Skipped)},
				{"Cache hits", fmt.Sprint(report.Hits)},
				{"Computed", fmt.Sprint(report.Computed)},
				{"Recomputed", fmt.Sprint(report.Recomputed)},
				{"Cache write failures", fmt.Sprint(stats.Failures)},
			}
			fmt.Fprintln(out, renderTable([]column{col("Scan"), numCol("Count")}, rows, ""))
			return nil
		},
	}
}
