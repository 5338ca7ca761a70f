package session

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"vibeshuffle/internal/embedding"
	"vibeshuffle/internal/library"
	"vibeshuffle/internal/similarity"
)

var (
	// ErrInvalidIndex reports a selection outside the playlist.
	ErrInvalidIndex = errors.New("invalid track index")
	// ErrNoSelection reports an action that needs a current track before one is chosen.
	ErrNoSelection = errors.New("no track selected")
)

// Status is the playback state.
type Status int

const (
	Stopped Status = iota
	Playing
	Paused
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Action is the audio backend call a Transition asks for.
type Action int

const (
	// ActionNone leaves the backend alone; the selection may still have changed.
	ActionNone Action = iota
	// ActionPlay loads and starts the current track.
	ActionPlay
	// ActionResume unpauses the loaded track.
	ActionResume
	// ActionPause pauses the loaded track.
	ActionPause
	// ActionStop stops playback.
	ActionStop
)

func (a Action) String() string {
	switch a {
	case ActionPlay:
		return "play"
	case ActionResume:
		return "resume"
	case ActionPause:
		return "pause"
	case ActionStop:
		return "stop"
	default:
		return "none"
	}
}

// Transition describes the outcome of a session action.
type Transition struct {
	Action Action
	// Index is the current track after the action, or -1 when none is selected.
	Index  int
	Track  library.Track
	Status Status
	// Changed reports whether the selection moved.
	Changed bool
}

// Play reports whether the backend must load and play Track.
func (t Transition) Play() bool { return t.Action == ActionPlay }

// Snapshot is a read-only view of the session for status displays.
type Snapshot struct {
	Index   int
	Track   library.Track
	Status  Status
	Volume  float64
	History []int
	Recent  []int
	Pending []int
	Tracks  int
	// Lookahead and Threshold echo the similarity settings in effect.
	Lookahead int
	Threshold float64
}

// Options configures a Session.
type Options struct {
	Lookahead          int
	DuplicateThreshold float64
	Volume             float64
	Rand               *rand.Rand
}

// Session is the playback state machine.
type Session struct {
	store   *library.Store
	engine  *similarity.Engine
	rng     *rand.Rand
	current int
	vector  embedding.Vector
	status  Status
	volume  float64
	history *Ring
	recent  *RecentSet
	pending []int
}

// New returns a stopped session with nothing selected.
func New(store *library.Store, opts Options) (*Session, error) {
	if store == nil || store.Len() == 0 {
		return nil, library.ErrEmptyPlaylist
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	capacity := store.Len() - 1
	return &Session{
		store:   store,
		engine:  similarity.NewEngine(store.Vectors(), opts.Lookahead, opts.DuplicateThreshold),
		rng:     rng,
		current: -1,
		volume:  clamp(opts.Volume),
		history: NewRing(capacity),
		recent:  NewRecentSet(store.Len(), capacity),
	}, nil
}

// Store returns the playlist.
func (s *Session) Store() *library.Store { return s.store }

// Status returns the playback state.
func (s *Session) Status() Status { return s.status }

// Current returns the selected index, or -1.
func (s *Session) Current() int { return s.current }

// Volume returns the volume in [0, 1].
func (s *Session) Volume() float64 { return s.volume }

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	track, _ := s.store.TrackAt(s.current)
	return Snapshot{
		Index:   s.current,
		Track:   track,
		Status:  s.status,
		Volume:  s.volume,
		History: s.history.Values(),
		Recent:  s.recent.Values(),
		Pending: append([]int(nil), s.pending...),
		Tracks:  s.store.Len(),

		Lookahead: s.engine.Lookahead(),
		Threshold: s.engine.Threshold(),
	}
}

// Toggle switches between Playing and Paused. From Stopped or Paused it
// starts Playing: loaded tells whether the backend still holds a paused
// track (resume) or needs the current track loaded (play). With nothing
// selected the first track is chosen.
func (s *Session) Toggle(loaded bool) Transition {
	if s.status == Playing {
		s.status = Paused
		return s.transition(ActionPause, false)
	}
	changed := false
	if s.current < 0 {
		s.selectIndex(0)
		changed = true
	}
	if loaded && s.status == Paused {
		s.status = Playing
		return s.transition(ActionResume, changed)
	}
	t, _ := s.PlayCurrent()
	t.Changed = changed
	return t
}

// Stop moves to Stopped, keeping the selection.
func (s *Session) Stop() Transition {
	s.status = Stopped
	return s.transition(ActionStop, false)
}

// MarkStopped records that the backend failed to play, leaving the track
// selected but not playing.
func (s *Session) MarkStopped() {
	s.status = Stopped
}

// PlayCurrent records the current track in history and the recent set and
// asks the backend to play it. Replaying the track already on top of history
// does not add a second entry.
func (s *Session) PlayCurrent() (Transition, error) {
	if s.current < 0 {
		return s.transition(ActionNone, false), ErrNoSelection
	}
	// Replaying the track on top of history is not a new transition.
	if top, ok := s.history.Peek(); !ok || top != s.current {
		s.history.Push(s.current)
	}
	s.recent.Add(s.current)
	s.status = Playing
	return s.transition(ActionPlay, false), nil
}

// Select makes i current without touching the queue or recent set, playing
// it only if the session is Playing.
func (s *Session) Select(i int) (Transition, error) {
	if i < 0 || i >= s.store.Len() {
		return s.transition(ActionNone, false), fmt.Errorf("%w: %d (playlist has %d tracks)", ErrInvalidIndex, i, s.store.Len())
	}
	s.selectIndex(i)
	return s.advance(), nil
}

// SelectByIndex validates i, resets the pending queue and recent set, and
// makes i current.
func (s *Session) SelectByIndex(i int) (Transition, error) {
	if i < 0 || i >= s.store.Len() {
		return s.transition(ActionNone, false), fmt.Errorf("%w: %d (playlist has %d tracks)", ErrInvalidIndex, i, s.store.Len())
	}
	s.pending = nil
	s.recent.Clear()
	s.selectIndex(i)
	return s.advance(), nil
}

// NextRandom jumps to a uniformly random track and resets the recent set and
// pending queue.
func (s *Session) NextRandom() Transition {
	i := s.rng.IntN(s.store.Len())
	s.recent.Clear()
	s.pending = nil
	s.selectIndex(i)
	return s.advance()
}

// NextSimilar pops the next neighbour of the current track, refilling the
// pending queue when it is empty and skipping near-duplicates of the current
// track.
func (s *Session) NextSimilar() (Transition, error) {
	if s.current < 0 {
		return s.transition(ActionNone, false), ErrNoSelection
	}
	if len(s.pending) == 0 {
		s.refill()
	}
	s.suppress()
	if len(s.pending) == 0 {
		// Suppressed entries are recent now, so a second pass reaches further.
		s.refill()
		s.suppress()
	}
	if len(s.pending) == 0 {
		// Every other track is recent: start a fresh neighbourhood.
		s.recent.Clear()
		s.pending = s.engine.Refill(s.vector, s.notCurrent)
	}
	if len(s.pending) == 0 {
		return s.advance(), nil
	}
	next := s.pending[0]
	s.pending = s.pending[1:]
	s.selectIndex(next)
	return s.advance(), nil
}

// Like re-anchors recommendations on the current track by refilling the
// pending queue from its vector. The selection does not change.
func (s *Session) Like() (Transition, error) {
	if s.current < 0 {
		return s.transition(ActionNone, false), ErrNoSelection
	}
	s.refill()
	s.suppress()
	return s.transition(ActionNone, false), nil
}

// Previous steps back one real transition through history, or to the
// preceding playlist position when history has one entry or fewer.
func (s *Session) Previous() Transition {
	var target int
	if s.history.Len() > 1 {
		s.history.Pop()
		target, _ = s.history.Pop()
	} else {
		n := s.store.Len()
		cur := s.current
		if cur < 0 {
			cur = 0
		}
		target = ((cur-1)%n + n) % n
	}
	s.pending = nil
	s.selectIndex(target)
	return s.advance()
}

// Shuffle permutes the playlist and clears history, the recent set and the
// pending queue. The current track keeps playing at its new position.
func (s *Session) Shuffle() Transition {
	var currentPath string
	if track, ok := s.store.TrackAt(s.current); ok {
		currentPath = track.Path
	}
	s.store.Shuffle(s.rng)
	s.engine.SetVectors(s.store.Vectors())
	s.history.Clear()
	s.recent.Clear()
	s.pending = nil
	if currentPath != "" {
		if i, ok := s.store.IndexOf(currentPath); ok {
			s.current = i
			s.vector = s.store.VectorAt(i)
		}
	}
	return s.transition(ActionNone, false)
}

// SetVolume clamps v to [0, 1] and stores it.
func (s *Session) SetVolume(v float64) float64 {
	s.volume = clamp(v)
	return s.volume
}

func (s *Session) selectIndex(i int) {
	s.current = i
	s.vector = s.store.VectorAt(i)
}

// advance plays the new selection when Playing and reports it otherwise.
func (s *Session) advance() Transition {
	if s.status != Playing {
		return s.transition(ActionNone, true)
	}
	t, err := s.PlayCurrent()
	if err != nil {
		return s.transition(ActionNone, true)
	}
	t.Changed = true
	return t
}

func (s *Session) refill() {
	s.pending = s.engine.Refill(s.vector, s.excluded)
}

func (s *Session) suppress() {
	s.pending = s.engine.SuppressDuplicates(s.pending, s.vector, s.recent.Add)
}

func (s *Session) excluded(i int) bool {
	return i == s.current || s.recent.Contains(i)
}

// notCurrent excludes only the current track, except in a single-track
// playlist where the only track is also the only candidate.
func (s *Session) notCurrent(i int) bool {
	return i == s.current && s.store.Len() > 1
}

func (s *Session) transition(action Action, changed bool) Transition {
	track, _ := s.store.TrackAt(s.current)
	return Transition{
		Action:  action,
		Index:   s.current,
		Track:   track,
		Status:  s.status,
		Changed: changed,
	}
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
