package similarity

import (
	"math/rand/v2"
	"sort"
	"testing"

	"vibeshuffle/internal/embedding"
)

// A, B, C, D from the reference scenario.
var scenario = []embedding.Vector{
	{0, 0},    // A
	{1, 0},    // B
	{5, 5},    // C
	{0.05, 0}, // D
}

const (
	idxA = 0
	idxB = 1
	idxC = 2
	idxD = 3
)

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func excludeSet(indices ...int) func(int) bool {
	set := make(map[int]bool, len(indices))
	for _, i := range indices {
		set[i] = true
	}
	return func(i int) bool { return set[i] }
}

func TestNearestScenario(t *testing.T) {
	got := Nearest(scenario, scenario[idxA], excludeSet(idxA), 2)
	if want := []int{idxD, idxB}; !equalInts(got, want) {
		t.Fatalf("Nearest = %v, want %v", got, want)
	}
}

func TestNearestWithoutExclusionIncludesQuery(t *testing.T) {
	got := Nearest(scenario, scenario[idxA], nil, 2)
	if want := []int{idxA, idxD}; !equalInts(got, want) {
		t.Fatalf("Nearest = %v, want %v", got, want)
	}
}

func TestNearestShortAndEmpty(t *testing.T) {
	if got := Nearest(scenario, scenario[idxA], excludeSet(idxA, idxB), 10); !equalInts(got, []int{idxD, idxC}) {
		t.Fatalf("Nearest = %v", got)
	}
	if got := Nearest(scenario, scenario[idxA], excludeSet(0, 1, 2, 3), 3); len(got) != 0 {
		t.Fatalf("Nearest with everything excluded = %v", got)
	}
	if got := Nearest(scenario, scenario[idxA], nil, 0); got == nil || len(got) != 0 {
		t.Fatalf("Nearest k=0 = %#v", got)
	}
}

func TestNearestTiesKeepIndexOrder(t *testing.T) {
	vectors := []embedding.Vector{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	got := Nearest(vectors, embedding.Vector{0, 0}, nil, 4)
	if !equalInts(got, []int{0, 1, 2, 3}) {
		t.Fatalf("Nearest = %v", got)
	}
}

func TestNearestMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	vectors := make([]embedding.Vector, 60)
	for i := range vectors {
		vectors[i] = embedding.Vector{rng.Float32(), rng.Float32(), rng.Float32()}
	}
	for trial := 0; trial < 20; trial++ {
		query := vectors[rng.IntN(len(vectors))]
		excluded := map[int]bool{}
		for i := 0; i < 10; i++ {
			excluded[rng.IntN(len(vectors))] = true
		}
		k := 1 + rng.IntN(15)

		got := Nearest(vectors, query, func(i int) bool { return excluded[i] }, k)

		var want []int
		for i := range vectors {
			if !excluded[i] {
				want = append(want, i)
			}
		}
		sort.SliceStable(want, func(a, b int) bool {
			return embedding.Distance(query, vectors[want[a]]) < embedding.Distance(query, vectors[want[b]])
		})
		if len(want) > k {
			want = want[:k]
		}
		if !equalInts(got, want) {
			t.Fatalf("trial %d: Nearest = %v, want %v", trial, got, want)
		}
		for i := 1; i < len(got); i++ {
			if embedding.Distance(query, vectors[got[i-1]]) > embedding.Distance(query, vectors[got[i]]) {
				t.Fatalf("trial %d: not ascending: %v", trial, got)
			}
		}
	}
}

func TestSuppressDuplicatesScenario(t *testing.T) {
	engine := NewEngine(scenario, DefaultLookahead, DefaultDuplicateThreshold)
	queue := engine.Refill(scenario[idxA], excludeSet(idxA))
	if !equalInts(queue, []int{idxD, idxB, idxC}) {
		t.Fatalf("Refill = %v", queue)
	}

	var marked []int
	queue = engine.SuppressDuplicates(queue, scenario[idxA], func(i int) { marked = append(marked, i) })
	if !equalInts(queue, []int{idxB, idxC}) {
		t.Fatalf("queue after suppression = %v, want [B C]", queue)
	}
	if !equalInts(marked, []int{idxD}) {
		t.Fatalf("marked = %v, want [D]", marked)
	}
}

func TestSuppressDuplicatesConsumesRuns(t *testing.T) {
	vectors := []embedding.Vector{{0}, {0.1}, {0.2}, {0.25}, {3}}
	var marked []int
	got := SuppressDuplicates([]int{1, 2, 3, 4}, vectors, vectors[0], 0.26, func(i int) { marked = append(marked, i) })
	if !equalInts(got, []int{4}) || !equalInts(marked, []int{1, 2, 3}) {
		t.Fatalf("queue = %v marked = %v", got, marked)
	}

	// Everything a duplicate: queue exhausted.
	got = SuppressDuplicates([]int{1, 2}, vectors, vectors[0], 1, nil)
	if len(got) != 0 {
		t.Fatalf("queue = %v, want empty", got)
	}

	// Strictly-less comparison: distance equal to threshold is kept.
	got = SuppressDuplicates([]int{3}, vectors, vectors[0], 0.25, nil)
	if !equalInts(got, []int{3}) {
		t.Fatalf("queue = %v, want [3]", got)
	}

	// Only the head is examined; a later duplicate survives.
	got = SuppressDuplicates([]int{4, 1}, vectors, vectors[0], 0.26, nil)
	if !equalInts(got, []int{4, 1}) {
		t.Fatalf("queue = %v, want [4 1]", got)
	}
}

func TestEngineDefaults(t *testing.T) {
	engine := NewEngine(nil, 0, 0.3)
	if engine.Lookahead() != DefaultLookahead {
		t.Fatalf("Lookahead = %d", engine.Lookahead())
	}
	if got := engine.Refill(embedding.Vector{1}, nil); len(got) != 0 {
		t.Fatalf("Refill on empty engine = %v", got)
	}
}
