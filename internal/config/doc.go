// Package config loads, normalizes, and validates VibeShuffle configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VIBESHUFFLE_MUSIC_DIR. The Config type centralizes every knob the player and
// CLI need, so the music library, embedding cache and embedding model endpoint
// are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
