// Package embedcache persists audio embeddings keyed by file fingerprint so
// the expensive model runs once per distinct file.
//
// Cache.GetOrCompute is the only entry point used while building a playlist:
// it fingerprints the file, consults the Backend, falls back to the embedder
// on a miss and writes the result back. Corrupt records (unreadable, malformed,
// empty, or of the wrong dimensionality) are discarded and recomputed. When the
// backend cannot be opened or written the cache keeps working in compute-only
// mode and logs a warning once.
//
// Two backends exist. FileBackend stores one JSON document per fingerprint at
// <dir>/<fingerprint>.json, written via temp file and rename. SQLiteBackend
// keeps the same records in <dir>/embeddings.db with vectors as little-endian
// float32 blobs. Records are never invalidated automatically; Clear and Prune
// are the manual paths.
package embedcache
