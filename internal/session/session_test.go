package session

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"testing"

	"vibeshuffle/internal/embedding"
	"vibeshuffle/internal/library"
	"vibeshuffle/internal/similarity"
)

const (
	idxA = 0
	idxB = 1
	idxC = 2
	idxD = 3
)

func newStore(t *testing.T, vectors ...embedding.Vector) *library.Store {
	t.Helper()
	tracks := make([]library.Track, len(vectors))
	for i := range vectors {
		tracks[i] = library.Track{Path: fmt.Sprintf("/music/track-%02d.mp3", i)}
	}
	store, err := library.NewStore(tracks, vectors)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func scenarioSession(t *testing.T) *Session {
	t.Helper()
	store := newStore(t,
		embedding.Vector{0, 0},    // A
		embedding.Vector{1, 0},    // B
		embedding.Vector{5, 5},    // C
		embedding.Vector{0.05, 0}, // D
	)
	s, err := New(store, Options{
		Lookahead:          similarity.DefaultLookahead,
		DuplicateThreshold: similarity.DefaultDuplicateThreshold,
		Volume:             0.5,
		Rand:               rand.New(rand.NewPCG(1, 1)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestScenarioSuppressesDuplicateAndYieldsBThenC(t *testing.T) {
	s := scenarioSession(t)

	tr := s.Toggle(false)
	if !tr.Play() || tr.Index != idxA || !tr.Changed {
		t.Fatalf("first toggle = %+v", tr)
	}

	tr, err := s.NextSimilar()
	if err != nil {
		t.Fatalf("NextSimilar: %v", err)
	}
	if tr.Index != idxB || !tr.Play() {
		t.Fatalf("first similar = %+v, want B playing", tr)
	}
	if !s.recent.Contains(idxD) {
		t.Fatal("suppressed duplicate D should be marked recently played")
	}

	tr, err = s.NextSimilar()
	if err != nil {
		t.Fatalf("NextSimilar: %v", err)
	}
	if tr.Index != idxC {
		t.Fatalf("second similar = %d, want C", tr.Index)
	}
}

func TestDuplicateSuppressionSkipsCloseNeighbour(t *testing.T) {
	store := newStore(t,
		embedding.Vector{0, 0},   // X
		embedding.Vector{0.1, 0}, // Y, distance 0.1
		embedding.Vector{2, 0},   // Z
	)
	s, err := New(store, Options{DuplicateThreshold: 0.26})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Toggle(false)
	tr, err := s.NextSimilar()
	if err != nil {
		t.Fatalf("NextSimilar: %v", err)
	}
	if tr.Index != 2 {
		t.Fatalf("NextSimilar = %d, want Z (2)", tr.Index)
	}
}

func TestPreviousReturnsToEarlierTrack(t *testing.T) {
	s := scenarioSession(t)
	s.Toggle(false) // A playing
	if _, err := s.Select(idxB); err != nil {
		t.Fatalf("Select: %v", err)
	}
	tr := s.Previous()
	if tr.Index != idxA {
		t.Fatalf("Previous = %d, want A", tr.Index)
	}
	if !tr.Play() {
		t.Fatal("Previous while playing should play")
	}
	if got := s.history.Values(); !reflect.DeepEqual(got, []int{idxA}) {
		t.Fatalf("history = %v", got)
	}
}

func TestStopAndReplayDoesNotDuplicateHistory(t *testing.T) {
	s := scenarioSession(t)
	s.Toggle(false) // A playing
	if _, err := s.Select(idxB); err != nil {
		t.Fatalf("Select: %v", err)
	}
	s.Stop()
	if tr := s.Toggle(false); !tr.Play() || tr.Index != idxB {
		t.Fatalf("Toggle after stop = %+v, want play B", tr)
	}
	if got := s.history.Values(); !reflect.DeepEqual(got, []int{idxA, idxB}) {
		t.Fatalf("history = %v, want [A B]", got)
	}
	if tr := s.Previous(); tr.Index != idxA {
		t.Fatalf("Previous = %d, want A", tr.Index)
	}
}

func TestPreviousFallsBackToPlaylistOrder(t *testing.T) {
	s := scenarioSession(t)
	if _, err := s.Select(idxA); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if tr := s.Previous(); tr.Index != idxD {
		t.Fatalf("Previous from 0 = %d, want wrap to %d", tr.Index, idxD)
	}
	if tr := s.Previous(); tr.Index != idxC {
		t.Fatalf("Previous = %d, want %d", tr.Index, idxC)
	}
}

func TestNextRandomResetsRecencyAndQueue(t *testing.T) {
	s := scenarioSession(t)
	s.Toggle(false)
	if _, err := s.NextSimilar(); err != nil {
		t.Fatalf("NextSimilar: %v", err)
	}
	if s.recent.Len() == 0 || len(s.pending) == 0 {
		t.Fatalf("expected populated state, recent=%d pending=%d", s.recent.Len(), len(s.pending))
	}

	s.Stop()
	tr := s.NextRandom()
	if s.recent.Len() != 0 || len(s.pending) != 0 {
		t.Fatalf("random next left recent=%v pending=%v", s.recent.Values(), s.pending)
	}
	if tr.Play() {
		t.Fatal("random next while stopped must not play")
	}
	if tr.Index < 0 || tr.Index >= s.store.Len() {
		t.Fatalf("random index out of range: %d", tr.Index)
	}
}

func TestNavigationWhileStoppedOnlySelects(t *testing.T) {
	s := scenarioSession(t)
	if _, err := s.Select(idxA); err != nil {
		t.Fatalf("Select: %v", err)
	}
	tr, err := s.NextSimilar()
	if err != nil {
		t.Fatalf("NextSimilar: %v", err)
	}
	if tr.Action != ActionNone || !tr.Changed {
		t.Fatalf("transition = %+v, want selection only", tr)
	}
	if tr.Index != idxB {
		t.Fatalf("selected %d, want B", tr.Index)
	}
	if s.history.Len() != 0 {
		t.Fatalf("history should not grow without playback: %v", s.history.Values())
	}
	if s.Status() != Stopped {
		t.Fatalf("status = %v", s.Status())
	}
}

func TestSelectByIndexValidates(t *testing.T) {
	s := scenarioSession(t)
	s.Toggle(false)
	before := s.Snapshot()
	for _, i := range []int{-1, 4, 100} {
		if _, err := s.SelectByIndex(i); !errors.Is(err, ErrInvalidIndex) {
			t.Fatalf("SelectByIndex(%d) err = %v", i, err)
		}
	}
	if after := s.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("state changed on invalid index:\n%+v\n%+v", before, after)
	}

	if _, err := s.NextSimilar(); err != nil {
		t.Fatalf("NextSimilar: %v", err)
	}
	tr, err := s.SelectByIndex(idxC)
	if err != nil {
		t.Fatalf("SelectByIndex: %v", err)
	}
	if tr.Index != idxC || !tr.Play() {
		t.Fatalf("transition = %+v", tr)
	}
	// Recent holds only the newly played track, pending is reset.
	if got := s.recent.Values(); !reflect.DeepEqual(got, []int{idxC}) || len(s.pending) != 0 {
		t.Fatalf("recent = %v pending = %v", got, s.pending)
	}
}

func TestLikeRefillsWithoutChangingTrack(t *testing.T) {
	s := scenarioSession(t)
	s.Toggle(false) // A
	if _, err := s.NextSimilar(); err != nil { // B, pending [C]
		t.Fatalf("NextSimilar: %v", err)
	}
	tr, err := s.Like()
	if err != nil {
		t.Fatalf("Like: %v", err)
	}
	if tr.Index != idxB || tr.Action != ActionNone || tr.Changed {
		t.Fatalf("Like transition = %+v", tr)
	}
	// Recent holds A, D, B so only C remains.
	if !reflect.DeepEqual(s.pending, []int{idxC}) {
		t.Fatalf("pending = %v", s.pending)
	}
	for _, i := range s.pending {
		if s.recent.Contains(i) {
			t.Fatalf("pending entry %d is recent", i)
		}
	}

	fresh := scenarioSession(t)
	if _, err := fresh.Like(); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("Like without selection err = %v", err)
	}
}

func TestShuffleClearsStateAndKeepsCurrentTrack(t *testing.T) {
	s := scenarioSession(t)
	s.Toggle(false)
	if _, err := s.NextSimilar(); err != nil {
		t.Fatalf("NextSimilar: %v", err)
	}
	playing := s.Snapshot().Track.Path

	s.Shuffle()
	snap := s.Snapshot()
	if len(snap.History) != 0 || len(snap.Recent) != 0 || len(snap.Pending) != 0 {
		t.Fatalf("shuffle left state: %+v", snap)
	}
	if snap.Track.Path != playing {
		t.Fatalf("current track changed from %s to %s", playing, snap.Track.Path)
	}
	if !s.vector.Equal(s.store.VectorAt(snap.Index)) {
		t.Fatal("current vector out of sync after shuffle")
	}
}

func TestSingleTrackPlaylist(t *testing.T) {
	store := newStore(t, embedding.Vector{1, 1})
	s, err := New(store, Options{DuplicateThreshold: 0.26})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Toggle(false)
	for i := 0; i < 3; i++ {
		tr, err := s.NextSimilar()
		if err != nil {
			t.Fatalf("NextSimilar: %v", err)
		}
		if tr.Index != 0 {
			t.Fatalf("NextSimilar = %d", tr.Index)
		}
	}
	if s.history.Len() != 0 || s.recent.Len() != 0 {
		t.Fatalf("history=%d recent=%d, want 0", s.history.Len(), s.recent.Len())
	}
	if tr := s.Previous(); tr.Index != 0 {
		t.Fatalf("Previous = %d", tr.Index)
	}
}

func TestToggleStateMachine(t *testing.T) {
	s := scenarioSession(t)
	steps := []struct {
		name   string
		do     func() Transition
		action Action
		status Status
	}{
		{"start", func() Transition { return s.Toggle(false) }, ActionPlay, Playing},
		{"pause", func() Transition { return s.Toggle(true) }, ActionPause, Paused},
		{"resume", func() Transition { return s.Toggle(true) }, ActionResume, Playing},
		{"pause again", func() Transition { return s.Toggle(true) }, ActionPause, Paused},
		{"stop", s.Stop, ActionStop, Stopped},
		{"restart", func() Transition { return s.Toggle(false) }, ActionPlay, Playing},
	}
	for _, step := range steps {
		tr := step.do()
		if tr.Action != step.action || tr.Status != step.status || s.Status() != step.status {
			t.Fatalf("%s: action=%v status=%v, want %v %v", step.name, tr.Action, tr.Status, step.action, step.status)
		}
	}
	if s.Current() != idxA {
		t.Fatalf("current = %d", s.Current())
	}
}

func TestMarkStoppedKeepsSelection(t *testing.T) {
	s := scenarioSession(t)
	s.Toggle(false)
	s.MarkStopped()
	if s.Status() != Stopped || s.Current() != idxA {
		t.Fatalf("status=%v current=%d", s.Status(), s.Current())
	}
}

func TestSetVolumeClamps(t *testing.T) {
	s := scenarioSession(t)
	for in, want := range map[float64]float64{-1: 0, 0.3: 0.3, 7: 1} {
		if got := s.SetVolume(in); got != want {
			t.Fatalf("SetVolume(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestRecencyBoundUnderRandomOperations(t *testing.T) {
	for n := 1; n <= 6; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(uint64(n), 99))
			vectors := make([]embedding.Vector, n)
			for i := range vectors {
				vectors[i] = embedding.Vector{rng.Float32() * 2, rng.Float32() * 2}
			}
			s, err := New(newStore(t, vectors...), Options{
				Lookahead:          3,
				DuplicateThreshold: 0.26,
				Rand:               rand.New(rand.NewPCG(uint64(n), 7)),
			})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			for step := 0; step < 500; step++ {
				switch rng.IntN(9) {
				case 0:
					s.Toggle(s.Status() == Paused)
				case 1:
					s.Stop()
				case 2:
					s.NextRandom()
				case 3, 4:
					_, _ = s.NextSimilar()
				case 5:
					_, _ = s.Like()
				case 6:
					s.Previous()
				case 7:
					s.Shuffle()
				case 8:
					_, _ = s.SelectByIndex(rng.IntN(n+2) - 1)
				}
				snap := s.Snapshot()
				if len(snap.History) > n-1 || len(snap.Recent) > n-1 {
					t.Fatalf("step %d: history=%d recent=%d exceeds %d", step, len(snap.History), len(snap.Recent), n-1)
				}
				if snap.Index >= n || snap.Index < -1 {
					t.Fatalf("step %d: current %d out of range", step, snap.Index)
				}
				for _, p := range snap.Pending {
					if p < 0 || p >= n {
						t.Fatalf("step %d: pending index %d out of range", step, p)
					}
				}
			}
		})
	}
}

func TestNewRejectsEmptyStore(t *testing.T) {
	if _, err := New(nil, Options{}); !errors.Is(err, library.ErrEmptyPlaylist) {
		t.Fatalf("err = %v", err)
	}
}
