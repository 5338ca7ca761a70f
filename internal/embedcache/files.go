package embedcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"vibeshuffle/internal/fingerprint"
)

const recordExt = ".json"

// FileBackend stores one JSON record per fingerprint.
type FileBackend struct {
	dir string
}

// OpenFiles prepares dir for records and verifies it is writable.
func OpenFiles(dir string) (*FileBackend, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cache directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return nil, fmt.Errorf("cache directory not writable: %w", err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return &FileBackend{dir: dir}, nil
}

// Dir returns the record directory.
func (b *FileBackend) Dir() string { return b.dir }

func (b *FileBackend) recordPath(fp string) (string, error) {
	if !fingerprint.Valid(fp) {
		return "", fmt.Errorf("invalid fingerprint %q", fp)
	}
	return filepath.Join(b.dir, fp+recordExt), nil
}

// Load reads and validates the record for fp.
func (b *FileBackend) Load(_ context.Context, fp string) (Record, error) {
	path, err := b.recordPath(fp)
	if err != nil {
		return Record{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("%w: read %s: %v", ErrCorruptRecord, path, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: parse %s: %v", ErrCorruptRecord, path, err)
	}
	if err := rec.check(fp); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Store writes rec atomically via a temp file in the same directory.
func (b *FileBackend) Store(_ context.Context, rec Record) error {
	path, err := b.recordPath(rec.Fingerprint)
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	tmp, err := os.CreateTemp(b.dir, rec.Fingerprint+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Remove deletes the record for fp. Missing records are not an error.
func (b *FileBackend) Remove(_ context.Context, fp string) error {
	path, err := b.recordPath(fp)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove record: %w", err)
	}
	return nil
}

// List decodes every record in the directory.
func (b *FileBackend) List(ctx context.Context) ([]Record, int, error) {
	names, err := b.recordNames()
	if err != nil {
		return nil, 0, err
	}
	records := make([]Record, 0, len(names))
	corrupt := 0
	for _, name := range names {
		rec, err := b.Load(ctx, strings.TrimSuffix(name, recordExt))
		if err != nil {
			corrupt++
			continue
		}
		records = append(records, rec)
	}
	sortNewestFirst(records)
	return records, corrupt, nil
}

// Clear removes every record file.
func (b *FileBackend) Clear(_ context.Context) (int, error) {
	names, err := b.recordNames()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, name := range names {
		if err := os.Remove(filepath.Join(b.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove %s: %w", name, err)
		}
		removed++
	}
	return removed, nil
}

// Close is a no-op.
func (b *FileBackend) Close() error { return nil }

func (b *FileBackend) recordNames() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, recordExt) {
			continue
		}
		if !fingerprint.Valid(strings.TrimSuffix(name, recordExt)) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
