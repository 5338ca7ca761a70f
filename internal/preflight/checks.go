package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"vibeshuffle/internal/config"
	"vibeshuffle/internal/deps"
)

const embedderCheckTimeout = 5 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckReadableDirectory verifies that the directory exists and can be listed.
func CheckReadableDirectory(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "readable")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckSystemDeps evaluates the external programs the config needs. Both
// doctor and play use it so the requirement list lives in one place.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	var requirements []deps.Requirement
	if strings.EqualFold(cfg.Player.Backend, "ffplay") {
		requirements = append(requirements, deps.Requirement{
			Name:    "FFplay",
			Command: cfg.FFplayBinary(),
			Hint:    "install ffmpeg or set player.backend = \"null\"",
		})
	}
	requirements = append(requirements, deps.Requirement{
		Name:     "FFprobe",
		Command:  FFprobePath(cfg),
		Optional: !cfg.Probe.Enabled,
		Hint:     "install ffmpeg or set probe.enabled = false",
	})
	if strings.EqualFold(cfg.Embedder.Kind, "command") && len(cfg.Embedder.Command) > 0 {
		requirements = append(requirements, deps.Requirement{
			Name:    "Embedder command",
			Command: cfg.Embedder.Command[0],
		})
	}
	return deps.CheckBinaries(requirements)
}

// FFprobePath resolves ffprobe, preferring the copy shipped next to ffplay.
func FFprobePath(cfg *config.Config) string {
	return deps.ResolveCompanion(cfg.FFplayBinary(), cfg.FFprobeBinary())
}

// CheckEmbedder verifies that the embedding service is reachable. Any HTTP
// response counts as reachable; only transport failures fail the check.
func CheckEmbedder(ctx context.Context, cfg config.Embedder) Result {
	const name = "Embedder"

	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "command":
		if len(cfg.Command) == 0 {
			return Result{Name: name, Detail: "embedder.command is empty"}
		}
		if _, err := exec.LookPath(cfg.Command[0]); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("binary %q not found", cfg.Command[0])}
		}
		return Result{Name: name, Passed: true, Detail: strings.Join(cfg.Command, " ")}
	case "http", "":
	default:
		return Result{Name: name, Detail: fmt.Sprintf("unsupported kind %q", cfg.Kind)}
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing embedder.base_url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, embedderCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid url (%v)", err)}
	}
	client := &http.Client{Timeout: embedderCheckTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeEmbedderError(err)}
	}
	resp.Body.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable (%d)", base, resp.StatusCode)}
}

func summarizeEmbedderError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (embedder unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (embedder unreachable)"
	}
	return fmt.Sprintf("unreachable (%v)", err)
}
