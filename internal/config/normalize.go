package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCache()
	c.normalizeEmbedder()
	c.normalizePlayer()
	c.normalizeSearch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.MusicDir) == "" {
		if value, ok := os.LookupEnv("VIBESHUFFLE_MUSIC_DIR"); ok {
			c.Paths.MusicDir = strings.TrimSpace(value)
		}
	}
	if c.Paths.MusicDir, err = expandPath(strings.TrimSpace(c.Paths.MusicDir)); err != nil {
		return fmt.Errorf("paths.music_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(strings.TrimSpace(c.Paths.CacheDir)); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCache() {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
	c.Cache.Fingerprint = strings.ToLower(strings.TrimSpace(c.Cache.Fingerprint))
	switch c.Cache.Fingerprint {
	case "":
		c.Cache.Fingerprint = defaultFingerprint
	case "name+size", "namesize":
		c.Cache.Fingerprint = "name_size"
	}
}

func (c *Config) normalizeEmbedder() {
	c.Embedder.Kind = strings.ToLower(strings.TrimSpace(c.Embedder.Kind))
	if c.Embedder.Kind == "" {
		c.Embedder.Kind = defaultEmbedderKind
	}
	if value, ok := os.LookupEnv("VIBESHUFFLE_EMBEDDER_URL"); ok && strings.TrimSpace(value) != "" {
		c.Embedder.BaseURL = value
	}
	c.Embedder.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.Embedder.BaseURL), "/")
	if c.Embedder.Kind == "http" && c.Embedder.BaseURL == "" {
		c.Embedder.BaseURL = defaultEmbedderBaseURL
	}
	args := make([]string, 0, len(c.Embedder.Command))
	for _, arg := range c.Embedder.Command {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			args = append(args, trimmed)
		}
	}
	c.Embedder.Command = args
	c.Embedder.Model = strings.TrimSpace(c.Embedder.Model)
	if c.Embedder.TimeoutSeconds <= 0 {
		c.Embedder.TimeoutSeconds = defaultEmbedderTimeout
	}
}

func (c *Config) normalizePlayer() {
	c.Player.Backend = strings.ToLower(strings.TrimSpace(c.Player.Backend))
	if c.Player.Backend == "" {
		c.Player.Backend = defaultPlayerBackend
	}
	if c.Player.PollIntervalMS <= 0 {
		c.Player.PollIntervalMS = defaultPollIntervalMS
	}
	if len(c.Player.Extensions) == 0 {
		c.Player.Extensions = append([]string(nil), defaultExtensions...)
		return
	}
	exts := make([]string, 0, len(c.Player.Extensions))
	seen := make(map[string]struct{}, len(c.Player.Extensions))
	for _, ext := range c.Player.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = append(exts, defaultExtensions...)
	}
	c.Player.Extensions = exts
}

func (c *Config) normalizeSearch() {
	if c.Search.Limit <= 0 {
		c.Search.Limit = defaultSearchLimit
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
