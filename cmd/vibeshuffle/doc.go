// Package main hosts the VibeShuffle CLI entrypoint and command graph.
//
// `play` loads the library and runs the interactive player; `ctl` drives a
// running player over its control socket so desktop hotkeys can bind to
// single actions. `scan`, `cache`, `config` and `doctor` cover cache warming,
// cache maintenance, configuration scaffolding and environment checks.
//
// Keep this package lean: behavior lives in the internal packages and is
// surfaced here through commands and flags.
package main
