package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"vibeshuffle/internal/embedcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the embedding cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))

	return cacheCmd
}

func withBackend(ctx *commandContext, cmd *cobra.Command, fn func(embedcache.Backend) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	backend, err := embedcache.OpenBackend(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("open embedding cache: %w", err)
	}
	defer backend.Close()
	return fn(backend)
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached embeddings, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(ctx, cmd, func(backend embedcache.Backend) error {
				records, corrupt, err := backend.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "Cached embeddings: none")
				} else {
					const stampLayout = "2006-01-02 15:04"
					rows := make([][]string, 0, len(records))
					for i, rec := range records {
						rows = append(rows, []string{
							strconv.Itoa(i + 1),
							rec.Path,
							rec.Model,
							strconv.Itoa(rec.Dimension),
							shortFingerprint(rec.Fingerprint),
							rec.CreatedAt.Local().Format(stampLayout),
						})
					}
					fmt.Fprintln(out, renderTable(
						[]column{numCol("#"), pathCol("Path"), col("Model"), numCol("Dim"), col("Fingerprint"), col("Created")},
						rows,
						fmt.Sprintf("%d records", len(records)),
					))
				}
				if corrupt > 0 {
					fmt.Fprintf(out, "%d unreadable records will be recomputed on next use\n", corrupt)
				}
				return nil
			})
		},
	}
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show embedding cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return withBackend(ctx, cmd, func(backend embedcache.Backend) error {
				records, corrupt, err := backend.List(cmd.Context())
				if err != nil {
					return err
				}
				models := map[string]int{}
				var newest time.Time
				for _, rec := range records {
					models[rec.Model]++
					if rec.CreatedAt.After(newest) {
						newest = rec.CreatedAt
					}
				}
				last := "never"
				if !newest.IsZero() {
					last = newest.Local().Format(time.RFC3339)
				}
				rows := [][]string{
					{"Backend", cfg.Cache.Backend},
					{"Directory", cfg.Paths.CacheDir},
					{"Fingerprint", cfg.Cache.Fingerprint},
					{"Records", strconv.Itoa(len(records))},
					{"Unreadable", strconv.Itoa(corrupt)},
					{"Models", strconv.Itoa(len(models))},
					{"Last write", last},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{col("Cache"), pathCol("Value")}, rows, ""))
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached embedding",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear the cache without --yes")
			}
			return withBackend(ctx, cmd, func(backend embedcache.Backend) error {
				removed, err := backend.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached embeddings\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm removal")
	return cmd
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove embeddings whose files no longer exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(ctx, cmd, func(backend embedcache.Backend) error {
				removed, err := embedcache.Prune(cmd.Context(), backend)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d stale embeddings\n", removed)
				return nil
			})
		},
	}
}

func shortFingerprint(fp string) string {
	const keep = 20
	if len(fp) <= keep {
		return fp
	}
	return fp[:keep] + "…"
}
