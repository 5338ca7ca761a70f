package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	MusicDir string `toml:"music_dir"`
	CacheDir string `toml:"cache_dir"`
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Cache contains configuration for the embedding cache.
type Cache struct {
	// Backend selects the durable layout: "files" (one JSON record per
	// fingerprint) or "sqlite".
	Backend string `toml:"backend"`
	// Fingerprint selects the key scheme: "content" (sha256 of file bytes) or
	// "name_size" (file name + byte length). Changing it invalidates every record.
	Fingerprint string `toml:"fingerprint"`
	// Dimension pins the expected vector length. Zero adopts the first vector seen.
	Dimension int `toml:"dimension"`
}

// Embedder contains configuration for the external embedding function.
type Embedder struct {
	Kind           string   `toml:"kind"` // "http" or "command"
	BaseURL        string   `toml:"base_url"`
	Command        []string `toml:"command"`
	Model          string   `toml:"model"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Similarity contains tuning for next-track selection.
type Similarity struct {
	// Lookahead is the number of nearest neighbours fetched per refill.
	Lookahead int `toml:"lookahead"`
	// DuplicateThreshold is the L2 distance under which a candidate is treated
	// as the same recommendation as the current track. Model dependent.
	DuplicateThreshold float64 `toml:"duplicate_threshold"`
}

// Player contains playback configuration.
type Player struct {
	Backend        string   `toml:"backend"` // "ffplay" or "null"
	Volume         float64  `toml:"volume"`
	PollIntervalMS int      `toml:"poll_interval_ms"`
	ShuffleOnStart bool     `toml:"shuffle_on_start"`
	Extensions     []string `toml:"extensions"`
}

// Probe contains configuration for the decodability check run during scans.
type Probe struct {
	Enabled bool `toml:"enabled"`
}

// Search contains configuration for fuzzy track search.
type Search struct {
	Limit    int `toml:"limit"`
	MinScore int `toml:"min_score"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for VibeShuffle.
//
// Configuration sections by subsystem:
//   - Paths: music library, embedding cache, runtime state and logs
//   - Cache: embedding cache backend and fingerprint scheme
//   - Embedder: external embedding model endpoint
//   - Similarity: nearest-neighbour lookahead and duplicate threshold
//   - Player: audio backend, volume, end-of-track polling
//   - Probe: ffprobe decodability check
//   - Search: fuzzy search result shaping
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Cache      Cache      `toml:"cache"`
	Embedder   Embedder   `toml:"embedder"`
	Similarity Similarity `toml:"similarity"`
	Player     Player     `toml:"player"`
	Probe      Probe      `toml:"probe"`
	Search     Search     `toml:"search"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vibeshuffle/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vibeshuffle.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories. The cache directory
// is created on a best-effort basis; the embedding cache degrades to
// compute-only mode when it is unusable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.CacheDir) != "" {
		_ = os.MkdirAll(c.Paths.CacheDir, 0o755)
	}
	return nil
}

// SocketPath returns the control socket location used by play and ctl.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.StateDir, "vibeshuffle.sock")
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "vibeshuffle.lock")
}

// FFplayBinary returns the ffplay executable name used by the audio backend.
func (c *Config) FFplayBinary() string {
	return "ffplay"
}

// FFprobeBinary returns the ffprobe executable name used for decodability checks.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "vibeshuffle", "embeddings")
	}
	return "~/.cache/vibeshuffle/embeddings"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration text.
func SampleConfig() string {
	return sampleConfig
}
