package embedcache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"vibeshuffle/internal/embedding"
	"vibeshuffle/internal/fingerprint"
)

var (
	// ErrNotFound reports a fingerprint with no stored record.
	ErrNotFound = errors.New("embedding record not found")
	// ErrCorruptRecord reports a stored record that cannot be trusted.
	ErrCorruptRecord = errors.New("corrupt embedding record")
)

// Record is one persisted embedding.
type Record struct {
	Fingerprint string             `json:"fingerprint"`
	Scheme      fingerprint.Scheme `json:"scheme"`
	Path        string             `json:"path"`
	Model       string             `json:"model"`
	Dimension   int                `json:"dimension"`
	Embedding   embedding.Vector   `json:"embedding"`
	CreatedAt   time.Time          `json:"created_at"`
}

// check verifies the record is internally consistent for key fp.
func (r Record) check(fp string) error {
	if r.Fingerprint != fp {
		return fmt.Errorf("%w: fingerprint %q stored under %q", ErrCorruptRecord, r.Fingerprint, fp)
	}
	if err := r.Embedding.Validate(r.Dimension); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return nil
}

// Backend is durable storage for records.
type Backend interface {
	// Load returns ErrNotFound or an error wrapping ErrCorruptRecord.
	Load(ctx context.Context, fp string) (Record, error)
	Store(ctx context.Context, rec Record) error
	Remove(ctx context.Context, fp string) error
	// List returns every readable record, newest first. Corrupt records are
	// counted but not returned.
	List(ctx context.Context) ([]Record, int, error)
	// Clear removes every record and reports how many were removed.
	Clear(ctx context.Context) (int, error)
	Close() error
}

// Prune removes records whose original file no longer exists.
func Prune(ctx context.Context, backend Backend) (int, error) {
	records, _, err := backend.List(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, rec := range records {
		if rec.Path == "" {
			continue
		}
		if _, statErr := os.Stat(rec.Path); statErr == nil || !errors.Is(statErr, os.ErrNotExist) {
			continue
		}
		if err := backend.Remove(ctx, rec.Fingerprint); err != nil {
			return removed, fmt.Errorf("remove %s: %w", rec.Fingerprint, err)
		}
		removed++
	}
	return removed, nil
}

func sortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].Fingerprint < records[j].Fingerprint
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
