// Package library builds the in-memory playlist: parallel slices of tracks and
// their embeddings in discovery order.
//
// Scan walks the music directory; Load embeds each file through the cache,
// skipping files that fail to fingerprint, probe, or embed. Store is read by
// the similarity engine and the player; Shuffle is the only mutation and it
// permutes tracks and vectors together.
package library
