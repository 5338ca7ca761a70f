package main

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vibeshuffle/internal/audio"
	"vibeshuffle/internal/embedding"
	"vibeshuffle/internal/ipc"
	"vibeshuffle/internal/library"
	"vibeshuffle/internal/player"
	"vibeshuffle/internal/preflight"
	"vibeshuffle/internal/session"
)

type cliTestEnv struct {
	baseDir    string
	musicDir   string
	configPath string
	socketPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(base, "xdg-cache"))
	t.Setenv("VIBESHUFFLE_MUSIC_DIR", "")

	env := &cliTestEnv{
		baseDir:    base,
		musicDir:   filepath.Join(base, "music"),
		configPath: filepath.Join(base, "config.toml"),
		socketPath: filepath.Join(base, "state", "vibeshuffle.sock"),
	}
	if err := os.MkdirAll(env.musicDir, 0o755); err != nil {
		t.Fatalf("mkdir music: %v", err)
	}

	content := fmt.Sprintf(`[paths]
music_dir = %q
cache_dir = %q
state_dir = %q
log_dir = %q

[embedder]
kind = "command"
command = ["sh", "-c", "echo '[0.5, 0.25, 1.0]'"]

[player]
backend = "null"
shuffle_on_start = false

[probe]
enabled = false

[logging]
level = "error"
`, env.musicDir, filepath.Join(base, "cache"), filepath.Join(base, "state"), filepath.Join(base, "logs"))
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e *cliTestEnv) writeTrack(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.musicDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write track: %v", err)
	}
	return path
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)
	requireContains(t, out, "null at ")
	requireContains(t, out, "duplicate distance <")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	requireContains(t, out, "Set paths.music_dir in "+target)
	requireContains(t, out, "5. Run vibeshuffle play")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, env, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config exists without --overwrite")
	}
}

func TestScanAndCacheCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeTrack(t, "one.mp3", "first track")
	doomed := env.writeTrack(t, "two.flac", "second track")

	out, _, err := runCLI(t, env, "scan")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "Loaded")

	out, _, err = runCLI(t, env, "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "one.mp3")
	requireContains(t, out, "two.flac")

	out, _, err = runCLI(t, env, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Records")

	if err := os.Remove(doomed); err != nil {
		t.Fatalf("remove track: %v", err)
	}
	out, _, err = runCLI(t, env, "cache", "prune")
	if err != nil {
		t.Fatalf("cache prune: %v", err)
	}
	requireContains(t, out, "Pruned 1 stale embeddings")

	if _, _, err := runCLI(t, env, "cache", "clear"); err == nil {
		t.Fatal("expected cache clear to require --yes")
	}
	out, _, err = runCLI(t, env, "cache", "clear", "--yes")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 1 cached embeddings")

	out, _, err = runCLI(t, env, "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "Cached embeddings: none")
}

func TestScanEmptyLibraryFails(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, env, "scan")
	if err == nil {
		t.Fatal("expected empty playlist error")
	}
	requireContains(t, err.Error(), "playlist is empty")
}

func TestDoctor(t *testing.T) {
	env := setupCLITestEnv(t)
	for _, dir := range []string{"state", "logs", "cache"} {
		if err := os.MkdirAll(filepath.Join(env.baseDir, dir), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	out, _, err := runCLI(t, env, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Music directory")
	requireContains(t, out, "[OK]")
	requireContains(t, out, " failed; ")
}

func TestRenderCheckSummary(t *testing.T) {
	tests := []struct {
		name    string
		results []preflight.Result
		want    string
	}{
		{
			name:    "all passed",
			results: []preflight.Result{{Name: "ffprobe", Passed: true}},
			want:    "1 ok, 0 warnings, 0 failed; ready to play",
		},
		{
			name: "optional failure",
			results: []preflight.Result{
				{Name: "ffprobe", Passed: true},
				{Name: "Cache directory", Optional: true},
			},
			want: "1 ok, 1 warnings, 0 failed; playback works with reduced features",
		},
		{
			name: "required failure wins",
			results: []preflight.Result{
				{Name: "Cache directory", Optional: true},
				{Name: "Embedder"},
			},
			want: "0 ok, 1 warnings, 1 failed; fix the failed checks before running vibeshuffle play",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderCheckSummary(tt.results, false); got != tt.want {
				t.Fatalf("summary = %q, want %q", got, tt.want)
			}
		})
	}

	line := renderCheck(preflight.Result{Name: "Embedder", Detail: "connection refused"}, false)
	if !strings.Contains(line, "Embedder:") || !strings.Contains(line, "[ERROR] connection refused") {
		t.Fatalf("unexpected check line %q", line)
	}
}

func TestTrimPathHead(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"/music/a.mp3", 20, "/music/a.mp3"},
		{"/home/user/Music/Artist/Album/01 Song.flac", 24, "…/Album/01 Song.flac"},
		{"/abcdefghijklmnop.mp3", 10, "…lmnop.mp3"},
	}
	for _, tt := range tests {
		got := trimPathHead(tt.in, tt.maxLen)
		if got != tt.want {
			t.Fatalf("trimPathHead(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
		if n := len([]rune(got)); n > tt.maxLen {
			t.Fatalf("trimPathHead(%q, %d) is %d runes long", tt.in, tt.maxLen, n)
		}
	}
}

func TestCtlWithoutPlayer(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, env, "ctl", "similar")
	if err == nil {
		t.Fatal("expected connection error")
	}
	requireContains(t, err.Error(), "vibeshuffle play")
}

func TestParseCtlArgs(t *testing.T) {
	tests := []struct {
		args    []string
		want    ipc.ActionRequest
		wantErr bool
	}{
		{args: []string{"similar"}, want: ipc.ActionRequest{Action: "similar"}},
		{args: []string{"Search", "blue", "moon"}, want: ipc.ActionRequest{Action: "search", Query: "blue moon"}},
		{args: []string{"select", "2"}, want: ipc.ActionRequest{Action: "select", Number: 2}},
		{args: []string{"volume", "25"}, want: ipc.ActionRequest{Action: "volume", Volume: 0.25}},
		{args: []string{"select", "0"}, wantErr: true},
		{args: []string{"volume", "150"}, wantErr: true},
		{args: []string{"search"}, wantErr: true},
		{args: []string{"toggle", "now"}, wantErr: true},
		{args: []string{"rewind"}, wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseCtlArgs(tt.args)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseCtlArgs(%v) expected error", tt.args)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseCtlArgs(%v): %v", tt.args, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseCtlArgs(%v) = %+v, want %+v", tt.args, got, tt.want)
		}
	}
}

func TestCtlDrivesRunningPlayer(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.MkdirAll(filepath.Dir(env.socketPath), 0o755); err != nil {
		t.Fatalf("mkdir state: %v", err)
	}

	store, err := library.NewStore(
		[]library.Track{{Path: "/music/Alpha.mp3"}, {Path: "/music/Bravo.mp3"}},
		[]embedding.Vector{{0, 0}, {1, 1}},
	)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	sess, err := session.New(store, session.Options{Lookahead: 17, DuplicateThreshold: 0.26, Volume: 1, Rand: rand.New(rand.NewPCG(1, 1))})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	ctrl, err := player.New(sess, audio.NewNull(), player.Options{PollInterval: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("player.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = ctrl.Run(ctx) }()

	srv, err := ipc.NewServer(ctx, env.socketPath, ctrl, nil)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	defer srv.Close()

	out, _, err := runCLI(t, env, "ctl", "toggle")
	if err != nil {
		t.Fatalf("ctl toggle: %v", err)
	}
	requireContains(t, out, "playing: Alpha")

	out, _, err = runCLI(t, env, "ctl", "search", "brav")
	if err != nil {
		t.Fatalf("ctl search: %v", err)
	}
	requireContains(t, out, "Bravo")

	out, _, err = runCLI(t, env, "ctl", "status")
	if err != nil {
		t.Fatalf("ctl status: %v", err)
	}
	requireContains(t, out, "playing")
	requireContains(t, out, "1/2")

	if _, _, err := runCLI(t, env, "ctl", "select", "5"); err == nil {
		t.Fatal("expected invalid selection error")
	}
}

func TestLogsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "logs")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "No log entries")

	logDir := filepath.Join(env.baseDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatalf("mkdir logs: %v", err)
	}
	content := `{"ts":"2026-03-01T10:00:00Z","level":"info","msg":"playing","component":"player"}
{"ts":"2026-03-01T10:00:01Z","level":"warn","msg":"cache write failed","component":"embedcache"}
`
	if err := os.WriteFile(filepath.Join(logDir, "vibeshuffle.log"), []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err = runCLI(t, env, "logs", "--level", "warn")
	if err != nil {
		t.Fatalf("logs --level: %v", err)
	}
	requireContains(t, out, "WARN embedcache: cache write failed")
	if strings.Contains(out, "playing") {
		t.Fatalf("expected info entry to be filtered, got:\n%s", out)
	}

	if _, _, err := runCLI(t, env, "logs", "--level", "loud"); err == nil {
		t.Fatal("expected invalid level error")
	}
}
