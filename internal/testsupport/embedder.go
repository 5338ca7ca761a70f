package testsupport

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"vibeshuffle/internal/embedding"
)

// FakeEmbedder returns scripted vectors keyed by file base name and counts
// how often each file was embedded.
type FakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string]embedding.Vector
	fail    map[string]error
	calls   map[string]int
	model   string
}

// NewFakeEmbedder returns an embedder that answers from vectors (keyed by base name).
func NewFakeEmbedder(vectors map[string]embedding.Vector) *FakeEmbedder {
	copied := make(map[string]embedding.Vector, len(vectors))
	for name, vec := range vectors {
		copied[name] = vec.Clone()
	}
	return &FakeEmbedder{
		vectors: copied,
		fail:    make(map[string]error),
		calls:   make(map[string]int),
		model:   "fake-model",
	}
}

// Set replaces the vector returned for name.
func (f *FakeEmbedder) Set(name string, vec embedding.Vector) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vectors[name] = vec.Clone()
}

// Fail makes Embed return err for name.
func (f *FakeEmbedder) Fail(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[name] = err
}

// Embed implements embedder.Embedder.
func (f *FakeEmbedder) Embed(_ context.Context, path string) (embedding.Vector, error) {
	name := filepath.Base(path)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	if err, ok := f.fail[name]; ok {
		return nil, err
	}
	vec, ok := f.vectors[name]
	if !ok {
		return nil, fmt.Errorf("fake embedder: no vector for %s", name)
	}
	return vec.Clone(), nil
}

// Model implements embedder.Embedder.
func (f *FakeEmbedder) Model() string { return f.model }

// Calls returns how many times name was embedded.
func (f *FakeEmbedder) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// TotalCalls returns the number of Embed invocations.
func (f *FakeEmbedder) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}
