package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vibeshuffle/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, ffplay/ffprobe and the embedder",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			for _, r := range results {
				fmt.Fprintln(out, renderCheck(r, colorize))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderCheckSummary(results, colorize))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d required checks failed", len(failed))
			}
			return nil
		},
	}
}
