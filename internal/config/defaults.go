package config

const (
	defaultStateDir           = "~/.local/share/vibeshuffle"
	defaultLogDir             = "~/.local/share/vibeshuffle/logs"
	defaultCacheBackend       = "files"
	defaultFingerprint        = "content"
	defaultEmbedderKind       = "http"
	defaultEmbedderBaseURL    = "http://127.0.0.1:9002"
	defaultEmbedderTimeout    = 120
	defaultLookahead          = 17
	defaultDuplicateThreshold = 0.26
	defaultPlayerBackend      = "ffplay"
	defaultVolume             = 0.8
	defaultPollIntervalMS     = 100
	defaultSearchLimit        = 10
	defaultSearchMinScore     = 40
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	maxPollIntervalMS         = 5000
	maxLookahead              = 1024
	maxEmbedderTimeoutSeconds = 3600
)

var defaultExtensions = []string{".mp3", ".flac", ".ogg", ".wav", ".m4a", ".opus"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir(),
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Cache: Cache{
			Backend:     defaultCacheBackend,
			Fingerprint: defaultFingerprint,
		},
		Embedder: Embedder{
			Kind:           defaultEmbedderKind,
			BaseURL:        defaultEmbedderBaseURL,
			TimeoutSeconds: defaultEmbedderTimeout,
		},
		Similarity: Similarity{
			Lookahead:          defaultLookahead,
			DuplicateThreshold: defaultDuplicateThreshold,
		},
		Player: Player{
			Backend:        defaultPlayerBackend,
			Volume:         defaultVolume,
			PollIntervalMS: defaultPollIntervalMS,
			ShuffleOnStart: true,
			Extensions:     append([]string(nil), defaultExtensions...),
		},
		Probe: Probe{
			Enabled: true,
		},
		Search: Search{
			Limit:    defaultSearchLimit,
			MinScore: defaultSearchMinScore,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
