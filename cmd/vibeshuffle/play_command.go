package main

import (
	"os"

	"github.com/spf13/cobra"

	"vibeshuffle/internal/library"
	"vibeshuffle/internal/playerrun"
)

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var noShuffle bool

	cmd := &cobra.Command{
		Use:   "play [music_dir]",
		Short: "Load a music folder and start the interactive player",
		Long: `Load every audio file under the music directory, embedding any the cache
does not know yet, then read one-letter commands from stdin (h for help).

While the player runs, 'vibeshuffle ctl' controls it from other terminals or
desktop hotkeys.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.withMusicDir(args)
			if err != nil {
				return err
			}
			return playerrun.Run(cmd.Context(), cfg, playerrun.Options{
				LibraryOptions: playerrun.LibraryOptions{Progress: library.TerminalProgress()},
				DryRun:         dryRun,
				NoShuffle:      noShuffle,
				Input:          os.Stdin,
				Output:         cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the player without producing sound")
	cmd.Flags().BoolVar(&noShuffle, "no-shuffle", false, "Keep the playlist in directory order")
	return cmd
}
