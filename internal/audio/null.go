package audio

import (
	"strconv"
	"sync"
)

// Null is a silent backend that records the calls made to it.
type Null struct {
	mu       sync.Mutex
	calls    []string
	path     string
	volume   float64
	playing  bool
	paused   bool
	finished bool
	failPlay error
}

// NewNull returns a silent backend.
func NewNull() *Null {
	return &Null{volume: 1}
}

// FailPlay makes subsequent Play calls return err. A nil err clears it.
func (n *Null) FailPlay(err error) {
	n.mu.Lock()
	n.failPlay = err
	n.mu.Unlock()
}

// Finish simulates the loaded track reaching its end.
func (n *Null) Finish() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.playing {
		return
	}
	n.playing = false
	n.paused = false
	n.finished = true
}

// Calls returns the recorded calls, e.g. "load /music/a.mp3" or "play".
func (n *Null) Calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

// Path returns the loaded track.
func (n *Null) Path() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

// Volume returns the last volume set.
func (n *Null) Volume() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.volume
}

func (n *Null) Load(path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.record("load " + path)
	n.path = path
	n.playing = false
	n.paused = false
	n.finished = false
	return nil
}

func (n *Null) Play() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.record("play")
	if n.path == "" {
		return ErrNotLoaded
	}
	if n.failPlay != nil {
		return n.failPlay
	}
	n.playing = true
	n.paused = false
	n.finished = false
	return nil
}

func (n *Null) Pause() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.record("pause")
	if n.playing {
		n.paused = true
	}
	return nil
}

func (n *Null) Unpause() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.record("unpause")
	if !n.playing {
		return ErrNotLoaded
	}
	n.paused = false
	return nil
}

func (n *Null) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.record("stop")
	n.playing = false
	n.paused = false
	return nil
}

func (n *Null) SetVolume(volume float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.volume = clampVolume(volume)
	n.record("volume " + strconv.FormatFloat(n.volume, 'f', 2, 64))
}

func (n *Null) Busy() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.playing && !n.paused
}

func (n *Null) Finished() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.finished {
		return false
	}
	n.finished = false
	return true
}

func (n *Null) record(call string) {
	n.calls = append(n.calls, call)
}

var (
	_ Backend = (*Null)(nil)
	_ Backend = (*FFplay)(nil)
)
