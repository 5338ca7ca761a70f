// Package audio defines the playback backend the player controller drives and
// its two implementations.
//
// FFplay spawns one ffplay process per track and pauses it with job-control
// signals. Null records calls without producing sound; it backs dry runs and
// controller tests.
//
// Backends are not safe for concurrent use by multiple controllers, but their
// end-of-track detection runs on background goroutines, so every method is
// safe to call while a track is finishing.
package audio
