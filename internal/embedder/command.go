package embedder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"vibeshuffle/internal/embedding"
)

// Command runs an external program per file.
type Command struct {
	argv    []string
	model   string
	timeout time.Duration
}

// NewCommand returns a Command embedder. The file path is appended to argv.
func NewCommand(argv []string, model string, timeout time.Duration) (*Command, error) {
	cleaned := make([]string, 0, len(argv))
	for _, arg := range argv {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil, errors.New("embedder command is empty")
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &Command{argv: cleaned, model: strings.TrimSpace(model), timeout: timeout}, nil
}

// Model returns the configured model name, or the program base name.
func (c *Command) Model() string {
	if c.model != "" {
		return c.model
	}
	return filepath.Base(c.argv[0])
}

// Embed runs the program and parses its stdout.
func (c *Command) Embed(ctx context.Context, path string) (embedding.Vector, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := append(append([]string(nil), c.argv[1:]...), path)
	cmd := exec.CommandContext(ctx, c.argv[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run %s: %w: %s", c.argv[0], err, strings.TrimSpace(stderr.String()))
	}
	vec, _, err := decodeVector(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", path, err)
	}
	return vec, nil
}
