package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"vibeshuffle/internal/logging"
)

// FFplay plays tracks through an ffplay child process.
type FFplay struct {
	binary string
	logger *slog.Logger

	mu       sync.Mutex
	path     string
	volume   float64
	proc     *process
	paused   bool
	finished bool
}

type process struct {
	cmd     *exec.Cmd
	done    chan struct{}
	stopped bool
}

// NewFFplay returns a backend that runs binary for each track.
func NewFFplay(binary string, logger *slog.Logger) *FFplay {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffplay"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FFplay{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "audio"),
		volume: 1,
	}
}

// Load stops any running track and remembers path for Play.
func (f *FFplay) Load(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("ffplay load: empty path")
	}
	f.mu.Lock()
	proc := f.detachLocked()
	f.path = path
	f.finished = false
	f.mu.Unlock()
	terminate(proc)
	return nil
}

// Play starts the loaded track from the beginning at the current volume.
func (f *FFplay) Play() error {
	f.mu.Lock()
	if f.path == "" {
		f.mu.Unlock()
		return ErrNotLoaded
	}
	old := f.detachLocked()
	f.mu.Unlock()
	terminate(old)

	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := exec.Command(f.binary, f.args()...) //nolint:gosec
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffplay: %w", err)
	}
	proc := &process{cmd: cmd, done: make(chan struct{})}
	f.proc = proc
	f.paused = false
	f.finished = false
	go f.wait(proc)
	f.logger.Debug("ffplay started",
		logging.Track(f.path),
		logging.Int("pid", cmd.Process.Pid),
	)
	return nil
}

// Pause suspends the ffplay process.
func (f *FFplay) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.proc == nil || f.paused {
		return nil
	}
	if err := unix.Kill(f.proc.cmd.Process.Pid, unix.SIGSTOP); err != nil {
		return fmt.Errorf("pause ffplay: %w", err)
	}
	f.paused = true
	return nil
}

// Unpause resumes a suspended ffplay process.
func (f *FFplay) Unpause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.proc == nil {
		return ErrNotLoaded
	}
	if !f.paused {
		return nil
	}
	if err := unix.Kill(f.proc.cmd.Process.Pid, unix.SIGCONT); err != nil {
		return fmt.Errorf("resume ffplay: %w", err)
	}
	f.paused = false
	return nil
}

// Stop kills the running track. It does not raise the finished event.
func (f *FFplay) Stop() error {
	f.mu.Lock()
	proc := f.detachLocked()
	f.mu.Unlock()
	terminate(proc)
	return nil
}

// SetVolume records the level passed to the next ffplay process.
func (f *FFplay) SetVolume(volume float64) {
	f.mu.Lock()
	f.volume = clampVolume(volume)
	f.mu.Unlock()
}

// Busy reports whether a track is playing and not paused.
func (f *FFplay) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.proc != nil && !f.paused
}

// Finished returns true once after ffplay exits on its own.
func (f *FFplay) Finished() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.finished {
		return false
	}
	f.finished = false
	return true
}

func (f *FFplay) args() []string {
	level := int(math.Round(f.volume * 100))
	return []string{
		"-nodisp",
		"-autoexit",
		"-loglevel", "quiet",
		"-volume", strconv.Itoa(level),
		"--", f.path,
	}
}

func (f *FFplay) wait(proc *process) {
	err := proc.cmd.Wait()
	close(proc.done)

	f.mu.Lock()
	defer f.mu.Unlock()
	if proc.stopped || f.proc != proc {
		return
	}
	f.proc = nil
	f.paused = false
	f.finished = true
	if err != nil {
		logging.WarnWithContext(f.logger, "ffplay exited with error", "playback_failed",
			logging.Track(f.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that ffplay can decode the file and an audio device is available"),
			logging.String(logging.FieldImpact, "track treated as finished"),
		)
	}
}

// detachLocked disowns the running process so its exit is not reported as
// a natural end. Callers hold f.mu and terminate the result after unlocking.
func (f *FFplay) detachLocked() *process {
	proc := f.proc
	if proc != nil {
		proc.stopped = true
	}
	f.proc = nil
	f.paused = false
	return proc
}

func terminate(proc *process) {
	if proc == nil || proc.cmd.Process == nil {
		return
	}
	_ = proc.cmd.Process.Kill()
	<-proc.done
}
