package embedder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"vibeshuffle/internal/config"
	"vibeshuffle/internal/embedding"
)

// Embedder computes the embedding of one audio file.
type Embedder interface {
	Embed(ctx context.Context, path string) (embedding.Vector, error)
	// Model names the model version for cache diagnostics.
	Model() string
}

// New builds the embedder described by cfg.
func New(cfg config.Embedder) (Embedder, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "http", "":
		return NewHTTP(cfg.BaseURL, cfg.Model, timeout), nil
	case "command":
		return NewCommand(cfg.Command, cfg.Model, timeout)
	default:
		return nil, fmt.Errorf("embedder kind: unsupported value %q", cfg.Kind)
	}
}

// response is accepted from both adapters; Command also accepts a bare array.
type response struct {
	Embedding []float64 `json:"embedding"`
	Model     string    `json:"model"`
}

func decodeVector(data []byte) (embedding.Vector, string, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, "", errors.New("empty embedder output")
	}
	if strings.HasPrefix(trimmed, "[") {
		var values []float64
		if err := json.Unmarshal([]byte(trimmed), &values); err != nil {
			return nil, "", fmt.Errorf("decode embedding array: %w", err)
		}
		vec := embedding.FromFloat64(values)
		return vec, "", vec.Validate(0)
	}
	var resp response
	if err := json.Unmarshal([]byte(trimmed), &resp); err != nil {
		return nil, "", fmt.Errorf("decode embedding object: %w", err)
	}
	vec := embedding.FromFloat64(resp.Embedding)
	return vec, resp.Model, vec.Validate(0)
}
