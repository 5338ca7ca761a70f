package library

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"

	"vibeshuffle/internal/embedding"
)

// ErrEmptyPlaylist reports that no playable track was found.
var ErrEmptyPlaylist = errors.New("playlist is empty")

// Track is one audio file in the playlist.
type Track struct {
	Path string
}

// Name returns the file name without directory or extension.
func (t Track) Name() string {
	if t.Path == "" {
		return ""
	}
	base := filepath.Base(t.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Store holds tracks and vectors in parallel order.
type Store struct {
	tracks  []Track
	vectors []embedding.Vector
	index   map[string]int
}

// NewStore builds a store from parallel slices. Every vector must share the
// first vector's dimensionality and paths must be unique.
func NewStore(tracks []Track, vectors []embedding.Vector) (*Store, error) {
	if len(tracks) != len(vectors) {
		return nil, fmt.Errorf("store: %d tracks but %d vectors", len(tracks), len(vectors))
	}
	if len(tracks) == 0 {
		return nil, ErrEmptyPlaylist
	}
	dim := vectors[0].Dim()
	for i, vec := range vectors {
		if err := vec.Validate(dim); err != nil {
			return nil, fmt.Errorf("store: track %s: %w", tracks[i].Path, err)
		}
	}
	s := &Store{
		tracks:  append([]Track(nil), tracks...),
		vectors: append([]embedding.Vector(nil), vectors...),
	}
	s.reindex()
	if len(s.index) != len(s.tracks) {
		return nil, errors.New("store: duplicate track paths")
	}
	return s, nil
}

// Len returns the number of tracks.
func (s *Store) Len() int { return len(s.tracks) }

// Dimension returns the shared vector length.
func (s *Store) Dimension() int {
	if len(s.vectors) == 0 {
		return 0
	}
	return s.vectors[0].Dim()
}

// TrackAt returns the track at i.
func (s *Store) TrackAt(i int) (Track, bool) {
	if i < 0 || i >= len(s.tracks) {
		return Track{}, false
	}
	return s.tracks[i], true
}

// VectorAt returns the embedding at i, or nil when i is out of range.
func (s *Store) VectorAt(i int) embedding.Vector {
	if i < 0 || i >= len(s.vectors) {
		return nil
	}
	return s.vectors[i]
}

// Vectors exposes the embeddings in playlist order. Callers must not modify it.
func (s *Store) Vectors() []embedding.Vector { return s.vectors }

// IndexOf returns the position of path.
func (s *Store) IndexOf(path string) (int, bool) {
	i, ok := s.index[path]
	return i, ok
}

// Names returns display names in playlist order.
func (s *Store) Names() []string {
	names := make([]string, len(s.tracks))
	for i, track := range s.tracks {
		names[i] = track.Name()
	}
	return names
}

// Shuffle applies one uniformly random permutation to tracks and vectors.
// Every index held before the call is invalid afterwards.
func (s *Store) Shuffle(rng *rand.Rand) {
	for i := len(s.tracks) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s.tracks[i], s.tracks[j] = s.tracks[j], s.tracks[i]
		s.vectors[i], s.vectors[j] = s.vectors[j], s.vectors[i]
	}
	s.reindex()
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.tracks))
	for i, track := range s.tracks {
		s.index[track.Path] = i
	}
}
