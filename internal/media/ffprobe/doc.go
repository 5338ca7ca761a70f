// Package ffprobe provides a typed wrapper around ffprobe JSON output and a
// decodability probe for audio files.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Inspect executes ffprobe and returns the parsed Result. Probe wraps it and
// fails unless the file carries at least one audio stream, which is how the
// library loader rejects undecodable files before paying for an embedding.
package ffprobe
