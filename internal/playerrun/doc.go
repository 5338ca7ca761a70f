// Package playerrun wires configuration into a running player: logging, the
// instance lock, the embedding cache, library initialization, the playback
// controller, the control socket and the interactive command loop.
//
// Run is what `vibeshuffle play` executes; Scan shares the initialization
// path for `vibeshuffle scan`.
package playerrun
