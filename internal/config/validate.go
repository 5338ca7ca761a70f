package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateEmbedder(); err != nil {
		return err
	}
	if err := c.validateSimilarity(); err != nil {
		return err
	}
	if err := c.validatePlayer(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	return nil
}

// ValidateMusicDir reports a clear error when no music directory is configured.
// Commands that only touch the cache do not need one, so Validate leaves it out.
func (c *Config) ValidateMusicDir() error {
	if strings.TrimSpace(c.Paths.MusicDir) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/vibeshuffle/config.toml"
		}
		return fmt.Errorf("paths.music_dir is required. Pass a directory argument, set VIBESHUFFLE_MUSIC_DIR or edit %s (create with 'vibeshuffle config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case "files", "sqlite":
	default:
		return fmt.Errorf("cache.backend: unsupported value %q (expected files or sqlite)", c.Cache.Backend)
	}
	switch c.Cache.Fingerprint {
	case "content", "name_size":
	default:
		return fmt.Errorf("cache.fingerprint: unsupported value %q (expected content or name_size)", c.Cache.Fingerprint)
	}
	if c.Cache.Dimension < 0 {
		return errors.New("cache.dimension must be >= 0")
	}
	return nil
}

func (c *Config) validateEmbedder() error {
	switch c.Embedder.Kind {
	case "http":
		if strings.TrimSpace(c.Embedder.BaseURL) == "" {
			return errors.New("embedder.base_url must be set when embedder.kind is http")
		}
	case "command":
		if len(c.Embedder.Command) == 0 {
			return errors.New("embedder.command must be set when embedder.kind is command")
		}
	default:
		return fmt.Errorf("embedder.kind: unsupported value %q (expected http or command)", c.Embedder.Kind)
	}
	if c.Embedder.TimeoutSeconds > maxEmbedderTimeoutSeconds {
		return fmt.Errorf("embedder.timeout_seconds must be <= %d", maxEmbedderTimeoutSeconds)
	}
	return nil
}

func (c *Config) validateSimilarity() error {
	if c.Similarity.Lookahead <= 0 || c.Similarity.Lookahead > maxLookahead {
		return fmt.Errorf("similarity.lookahead must be between 1 and %d", maxLookahead)
	}
	if c.Similarity.DuplicateThreshold < 0 {
		return errors.New("similarity.duplicate_threshold must be >= 0")
	}
	return nil
}

func (c *Config) validatePlayer() error {
	switch c.Player.Backend {
	case "ffplay", "null":
	default:
		return fmt.Errorf("player.backend: unsupported value %q (expected ffplay or null)", c.Player.Backend)
	}
	if c.Player.Volume < 0 || c.Player.Volume > 1 {
		return errors.New("player.volume must be between 0 and 1")
	}
	if c.Player.PollIntervalMS > maxPollIntervalMS {
		return fmt.Errorf("player.poll_interval_ms must be <= %d", maxPollIntervalMS)
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.MinScore < 0 || c.Search.MinScore > 100 {
		return errors.New("search.min_score must be between 0 and 100")
	}
	return nil
}
