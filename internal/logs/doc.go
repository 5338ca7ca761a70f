// Package logs reads the player's JSON log file for `vibeshuffle logs`.
//
// Tail returns the last N lines or everything after a byte offset, and in
// follow mode polls until new lines arrive or the wait expires. ParseEntry
// and Filter turn raw JSON lines into readable, filtered output.
package logs
