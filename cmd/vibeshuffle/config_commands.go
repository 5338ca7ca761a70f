package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"vibeshuffle/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n\nNext steps:\n", target)
			for i, step := range initSteps(target) {
				fmt.Fprintf(out, "  %d. %s\n", i+1, step)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

// initSteps walks a new user from the sample file to a first playback.
func initSteps(target string) []string {
	return []string{
		fmt.Sprintf("Set paths.music_dir in %s (or export VIBESHUFFLE_MUSIC_DIR)", target),
		"Point [embedder] at your model: kind = \"http\" with base_url, or kind = \"command\"",
		"Run vibeshuffle doctor to check ffplay, ffprobe and the embedder",
		"Run vibeshuffle scan to warm the embedding cache",
		"Run vibeshuffle play",
	}
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file and show the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			if ctx.configSeen {
				fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			} else {
				fmt.Fprintf(out, "Config path: %s (not found, defaults used)\n", ctx.configPath)
			}
			fmt.Fprintln(out, renderTable([]column{col("Setting"), pathCol("Value")}, settingRows(cfg), ""))
			if err := cfg.ValidateMusicDir(); err != nil {
				fmt.Fprintf(out, "Warning: %v\n", err)
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func settingRows(cfg *config.Config) [][]string {
	musicDir := cfg.Paths.MusicDir
	if musicDir == "" {
		musicDir = "(unset)"
	}
	embedder := cfg.Embedder.Kind
	switch cfg.Embedder.Kind {
	case "http":
		embedder += " " + cfg.Embedder.BaseURL
	case "command":
		embedder += " " + strings.Join(cfg.Embedder.Command, " ")
	}
	return [][]string{
		{"Music directory", musicDir},
		{"Cache", fmt.Sprintf("%s, %s fingerprint, %s", cfg.Cache.Backend, cfg.Cache.Fingerprint, cfg.Paths.CacheDir)},
		{"Embedder", embedder},
		{"Model", cfg.Embedder.Model},
		{"Similarity", fmt.Sprintf("lookahead %d, duplicate distance < %.2f", cfg.Similarity.Lookahead, cfg.Similarity.DuplicateThreshold)},
		{"Player", fmt.Sprintf("%s at %d%% volume", cfg.Player.Backend, int(math.Round(cfg.Player.Volume*100)))},
		{"Logging", fmt.Sprintf("%s, level %s", cfg.Logging.Format, cfg.Logging.Level)},
	}
}
