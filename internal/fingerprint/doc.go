// Package fingerprint derives the stable identity used as an embedding cache
// key for an audio file.
//
// Two schemes exist. SchemeContent hashes the file bytes with sha256 and
// changes whenever the audio changes, but not when the file is renamed.
// SchemeNameSize hashes the base name and byte length: it avoids reading the
// whole file but misses edits that preserve the size and survives no rename.
//
// Keys carry the scheme as a prefix ("content-<hex>", "name_size-<hex>") so
// switching schemes never aliases records produced by the other one. The key
// layout is part of the on-disk cache compatibility contract.
package fingerprint
