package embedcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"vibeshuffle/internal/embedding"
	"vibeshuffle/internal/fingerprint"
)

// SQLiteFileName is the database created inside the cache directory.
const SQLiteFileName = "embeddings.db"

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// SQLiteBackend stores records in a single SQLite database.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates <dir>/embeddings.db and applies migrations.
func OpenSQLite(ctx context.Context, dir string) (*SQLiteBackend, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cache directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, SQLiteFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteBackend{db: db, path: dbPath}, nil
}

// Path returns the database file location.
func (b *SQLiteBackend) Path() string { return b.path }

// Load reads and validates the record for fp.
func (b *SQLiteBackend) Load(ctx context.Context, fp string) (Record, error) {
	row := b.db.QueryRowContext(ctx,
		`SELECT fingerprint, scheme, path, model, dimension, vector, created_at
		 FROM embeddings WHERE fingerprint = ?`, fp)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	if err := rec.check(fp); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Store inserts or replaces the record.
func (b *SQLiteBackend) Store(ctx context.Context, rec Record) error {
	if !fingerprint.Valid(rec.Fingerprint) {
		return fmt.Errorf("invalid fingerprint %q", rec.Fingerprint)
	}
	blob, err := rec.Embedding.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode vector: %w", err)
	}
	return retryOnBusy(ctx, func() error {
		_, execErr := b.db.ExecContext(ctx,
			`INSERT INTO embeddings (fingerprint, scheme, path, model, dimension, vector, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(fingerprint) DO UPDATE SET
			   scheme = excluded.scheme,
			   path = excluded.path,
			   model = excluded.model,
			   dimension = excluded.dimension,
			   vector = excluded.vector,
			   created_at = excluded.created_at`,
			rec.Fingerprint, string(rec.Scheme), rec.Path, rec.Model, rec.Dimension, blob,
			rec.CreatedAt.UTC().Format(time.RFC3339Nano))
		return execErr
	})
}

// Remove deletes the record for fp.
func (b *SQLiteBackend) Remove(ctx context.Context, fp string) error {
	return retryOnBusy(ctx, func() error {
		_, err := b.db.ExecContext(ctx, "DELETE FROM embeddings WHERE fingerprint = ?", fp)
		return err
	})
}

// List returns every decodable record, newest first.
func (b *SQLiteBackend) List(ctx context.Context) ([]Record, int, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT fingerprint, scheme, path, model, dimension, vector, created_at FROM embeddings`)
	if err != nil {
		return nil, 0, fmt.Errorf("list embeddings: %w", err)
	}
	defer rows.Close()

	var records []Record
	corrupt := 0
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			corrupt++
			continue
		}
		if err := rec.check(rec.Fingerprint); err != nil {
			corrupt++
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate embeddings: %w", err)
	}
	sortNewestFirst(records)
	return records, corrupt, nil
}

// Clear deletes every record.
func (b *SQLiteBackend) Clear(ctx context.Context) (int, error) {
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, execErr := b.db.ExecContext(ctx, "DELETE FROM embeddings")
		if execErr != nil {
			return execErr
		}
		removed, execErr = res.RowsAffected()
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("clear embeddings: %w", err)
	}
	return int(removed), nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec       Record
		scheme    string
		blob      []byte
		createdAt string
	)
	if err := row.Scan(&rec.Fingerprint, &scheme, &rec.Path, &rec.Model, &rec.Dimension, &blob, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("%w: scan row: %v", ErrCorruptRecord, err)
	}
	rec.Scheme = fingerprint.Scheme(scheme)
	var vec embedding.Vector
	if err := vec.UnmarshalBinary(blob); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	rec.Embedding = vec
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rec.CreatedAt = ts
	}
	return rec, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
