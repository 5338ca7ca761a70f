// Package preflight provides readiness checks for the directories, programs
// and embedding service VibeShuffle depends on.
//
// These checks run in two contexts:
//   - `vibeshuffle doctor` prints every result as a table.
//   - `vibeshuffle play` logs failed checks before loading the library so a
//     missing ffplay or an unreachable embedder is reported up front.
//
// Checks only run for features the configuration enables.
package preflight
