package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Scheme names a fingerprint derivation.
type Scheme string

const (
	SchemeContent  Scheme = "content"
	SchemeNameSize Scheme = "name_size"
)

// ParseScheme maps a configuration value to a Scheme.
func ParseScheme(value string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(value))) {
	case SchemeContent, "":
		return SchemeContent, nil
	case SchemeNameSize:
		return SchemeNameSize, nil
	default:
		return "", fmt.Errorf("unknown fingerprint scheme %q", value)
	}
}

// Fingerprinter computes cache keys for files.
type Fingerprinter struct {
	scheme Scheme
}

// New returns a Fingerprinter for the scheme. Unknown schemes fall back to content.
func New(scheme Scheme) Fingerprinter {
	if scheme != SchemeNameSize {
		scheme = SchemeContent
	}
	return Fingerprinter{scheme: scheme}
}

// Scheme reports the derivation in use.
func (f Fingerprinter) Scheme() Scheme {
	if f.scheme == "" {
		return SchemeContent
	}
	return f.scheme
}

// Of returns the fingerprint for the file at path.
func (f Fingerprinter) Of(path string) (string, error) {
	switch f.Scheme() {
	case SchemeNameSize:
		return NameSize(path)
	default:
		return Content(path)
	}
}

// Content hashes the file bytes.
func Content(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return key(SchemeContent, hasher.Sum(nil)), nil
}

// NameSize hashes the base name and byte length of the file.
func NameSize(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("fingerprint %s: is a directory", path)
	}
	hasher := sha256.New()
	hasher.Write([]byte(filepath.Base(path)))
	hasher.Write([]byte{0})
	hasher.Write([]byte(strconv.FormatInt(info.Size(), 10)))
	return key(SchemeNameSize, hasher.Sum(nil)), nil
}

// SchemeOf extracts the scheme prefix from a key.
func SchemeOf(fp string) (Scheme, bool) {
	prefix, _, ok := strings.Cut(fp, "-")
	if !ok {
		return "", false
	}
	switch Scheme(prefix) {
	case SchemeContent, SchemeNameSize:
		return Scheme(prefix), true
	}
	return "", false
}

// Valid reports whether fp is a well-formed key: a known scheme prefix and a
// 64 character lowercase hex digest. Keys double as file names, so anything
// else is rejected.
func Valid(fp string) bool {
	_, ok := SchemeOf(fp)
	if !ok {
		return false
	}
	_, digest, _ := strings.Cut(fp, "-")
	if len(digest) != sha256.Size*2 {
		return false
	}
	for _, r := range digest {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

func key(scheme Scheme, sum []byte) string {
	return string(scheme) + "-" + hex.EncodeToString(sum)
}
