package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vibeshuffle/internal/embedding"
)

const (
	embedAudioPath     = "/embed/audio"
	defaultHTTPTimeout = 120 * time.Second
	maxResponseBytes   = 16 << 20
)

// HTTP calls an embedding service over JSON.
type HTTP struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewHTTP returns an HTTP embedder. A non-positive timeout uses the default.
func NewHTTP(baseURL, model string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTP{
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		model:      strings.TrimSpace(model),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Model returns the configured model name, or the base URL when unset.
func (h *HTTP) Model() string {
	if h.model != "" {
		return h.model
	}
	return h.baseURL
}

// Embed posts the file path to the service and decodes the returned vector.
func (h *HTTP) Embed(ctx context.Context, path string) (embedding.Vector, error) {
	payload := map[string]any{"music_file": path}
	if h.model != "" {
		payload["model"] = h.model
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+embedAudioPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", embedAudioPath, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%s returned %s: %s", embedAudioPath, resp.Status, strings.TrimSpace(string(data)))
	}

	vec, _, err := decodeVector(data)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", path, err)
	}
	return vec, nil
}
