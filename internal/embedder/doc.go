// Package embedder adapts the external embedding model that maps an audio file
// to a feature vector.
//
// HTTP talks to a local embedding service (POST <base_url>/embed/audio with
// {"music_file": path}); Command runs a configured program with the file path
// appended and reads a JSON vector from stdout. Both are stateless and safe for
// concurrent use. New selects the adapter from configuration.
package embedder
