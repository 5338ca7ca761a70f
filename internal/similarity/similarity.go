// Package similarity ranks playlist entries by embedding distance.
//
// Nearest is a brute-force k-nearest-neighbour query: O(n·d) per call, which
// is fine because playlists hold at most a few thousand tracks and the
// session only queries when its pending queue runs dry.
package similarity

import (
	"math"
	"sort"

	"vibeshuffle/internal/embedding"
)

// DefaultLookahead is the number of neighbours fetched per refill.
const DefaultLookahead = 17

// DefaultDuplicateThreshold is the near-duplicate distance for the reference model.
const DefaultDuplicateThreshold = 0.26

// Nearest returns up to k indices of vectors closest to query in ascending
// L2 distance, skipping indices for which exclude returns true. Ties keep
// index order. Fewer than k indices are returned when fewer candidates remain.
func Nearest(vectors []embedding.Vector, query embedding.Vector, exclude func(int) bool, k int) []int {
	if k <= 0 || len(vectors) == 0 {
		return []int{}
	}
	type candidate struct {
		index    int
		distance float64
	}
	candidates := make([]candidate, 0, len(vectors))
	for i, vec := range vectors {
		if exclude != nil && exclude(i) {
			continue
		}
		d := embedding.Distance(query, vec)
		if math.IsInf(d, 1) || math.IsNaN(d) {
			continue
		}
		candidates = append(candidates, candidate{index: i, distance: d})
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].distance < candidates[b].distance
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	out := make([]int, len(candidates))
	for i, c := range candidates {
		out[i] = c.index
	}
	return out
}

// Engine answers refill queries against a fixed vector set.
type Engine struct {
	vectors   []embedding.Vector
	lookahead int
	threshold float64
}

// NewEngine returns an Engine. Non-positive lookahead uses DefaultLookahead;
// a negative threshold disables duplicate suppression.
func NewEngine(vectors []embedding.Vector, lookahead int, threshold float64) *Engine {
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	return &Engine{vectors: vectors, lookahead: lookahead, threshold: threshold}
}

// SetVectors swaps the vector set, e.g. after the store is reshuffled.
func (e *Engine) SetVectors(vectors []embedding.Vector) { e.vectors = vectors }

// Lookahead returns the refill size.
func (e *Engine) Lookahead() int { return e.lookahead }

// Threshold returns the near-duplicate distance.
func (e *Engine) Threshold() float64 { return e.threshold }

// Refill returns the lookahead nearest neighbours of query not excluded.
func (e *Engine) Refill(query embedding.Vector, exclude func(int) bool) []int {
	return Nearest(e.vectors, query, exclude, e.lookahead)
}

// SuppressDuplicates drops leading queue entries closer than the threshold to
// current, calling markRecent for each dropped index.
func (e *Engine) SuppressDuplicates(queue []int, current embedding.Vector, markRecent func(int)) []int {
	return SuppressDuplicates(queue, e.vectors, current, e.threshold, markRecent)
}

// SuppressDuplicates pops the head of queue while its vector lies strictly
// within threshold of current, marking each popped index recently played. It
// stops at the first distinct candidate or when the queue is empty.
func SuppressDuplicates(queue []int, vectors []embedding.Vector, current embedding.Vector, threshold float64, markRecent func(int)) []int {
	for len(queue) > 0 {
		head := queue[0]
		if head < 0 || head >= len(vectors) {
			queue = queue[1:]
			continue
		}
		if embedding.Distance(vectors[head], current) >= threshold {
			break
		}
		if markRecent != nil {
			markRecent(head)
		}
		queue = queue[1:]
	}
	return queue
}
