// Package session implements the playback state machine.
//
// A Session tracks the selected track, play status, volume, a bounded history
// used by Previous, a bounded recently-played set excluded from similarity
// queries, and a pending queue of precomputed neighbours consumed by
// NextSimilar. History and the recent set both hold at most len(playlist)-1
// indices, so a single-track playlist keeps them empty.
//
// Session performs no I/O. Every action returns a Transition telling the
// caller what the audio backend must do; navigation only asks for load+play
// when the session is already Playing, otherwise the new selection is simply
// reported. A Session is not safe for concurrent use: the player controller
// owns it from a single goroutine.
package session
