// Package player serializes every playback action through one goroutine.
//
// A Controller owns the session.Session and the audio.Backend. The stdin
// command loop, the IPC server and the end-of-track poller all submit
// Command values to its buffered channel; Run consumes them in order and is
// the only code that touches session state. Navigation results are applied
// to the backend according to the session's Transition: Play loads and
// starts the track, ActionNone only reports the new selection.
//
// ParseCommand translates the interactive one-line command language into
// Commands. Lock guards against two players sharing a control socket.
package player
