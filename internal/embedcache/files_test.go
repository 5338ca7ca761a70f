package embedcache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vibeshuffle/internal/embedding"
	"vibeshuffle/internal/fingerprint"
)

func testFingerprint(c byte) string {
	return "content-" + strings.Repeat(string(c), 64)
}

func TestFileBackendRecordLayout(t *testing.T) {
	dir := t.TempDir()
	backend, err := OpenFiles(dir)
	if err != nil {
		t.Fatalf("OpenFiles: %v", err)
	}
	rec := Record{
		Fingerprint: testFingerprint('a'),
		Scheme:      fingerprint.SchemeContent,
		Path:        "/music/a.mp3",
		Model:       "m1",
		Dimension:   2,
		Embedding:   embedding.Vector{0.25, -1},
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := backend.Store(context.Background(), rec); err != nil {
		t.Fatalf("Store: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, rec.Fingerprint+".json"))
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"fingerprint", "scheme", "path", "model", "dimension", "embedding", "created_at"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("record missing %q: %s", key, data)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the record file, found %d entries", len(entries))
	}

	loaded, err := backend.Load(context.Background(), rec.Fingerprint)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Embedding.Equal(rec.Embedding) || loaded.Path != rec.Path {
		t.Fatalf("loaded %+v", loaded)
	}
}

func TestFileBackendLoadErrors(t *testing.T) {
	dir := t.TempDir()
	backend, err := OpenFiles(dir)
	if err != nil {
		t.Fatalf("OpenFiles: %v", err)
	}
	ctx := context.Background()

	if _, err := backend.Load(ctx, testFingerprint('b')); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := backend.Load(ctx, "../escape"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected invalid fingerprint error, got %v", err)
	}

	cases := map[byte]string{
		'c': `{"fingerprint":"` + testFingerprint('c') + `","dimension":2,"embedding":[]}`,
		'd': `{"fingerprint":"` + testFingerprint('d') + `","dimension":3,"embedding":[1,2]}`,
		'e': `{"fingerprint":"` + testFingerprint('f') + `","dimension":1,"embedding":[1]}`,
	}
	for c, body := range cases {
		fp := testFingerprint(c)
		if err := os.WriteFile(filepath.Join(dir, fp+".json"), []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := backend.Load(ctx, fp); !errors.Is(err, ErrCorruptRecord) {
			t.Fatalf("record %c: expected ErrCorruptRecord, got %v", c, err)
		}
	}

	_, corrupt, err := backend.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if corrupt != len(cases) {
		t.Fatalf("corrupt = %d, want %d", corrupt, len(cases))
	}
}

func TestSQLiteBackendStoresBlob(t *testing.T) {
	dir := t.TempDir()
	backend, err := OpenSQLite(context.Background(), dir)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer backend.Close()

	rec := Record{
		Fingerprint: testFingerprint('a'),
		Scheme:      fingerprint.SchemeContent,
		Path:        "/music/a.mp3",
		Dimension:   3,
		Embedding:   embedding.Vector{1, 2, 3},
		CreatedAt:   time.Now().UTC(),
	}
	ctx := context.Background()
	if err := backend.Store(ctx, rec); err != nil {
		t.Fatalf("Store: %v", err)
	}
	// Upsert replaces the vector.
	rec.Embedding = embedding.Vector{4, 5, 6}
	if err := backend.Store(ctx, rec); err != nil {
		t.Fatalf("Store: %v", err)
	}

	var blob []byte
	if err := backend.db.QueryRowContext(ctx, "SELECT vector FROM embeddings WHERE fingerprint = ?", rec.Fingerprint).Scan(&blob); err != nil {
		t.Fatalf("query blob: %v", err)
	}
	if len(blob) != 12 {
		t.Fatalf("blob length = %d", len(blob))
	}
	loaded, err := backend.Load(ctx, rec.Fingerprint)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Embedding.Equal(embedding.Vector{4, 5, 6}) {
		t.Fatalf("loaded %v", loaded.Embedding)
	}

	if err := backend.Remove(ctx, rec.Fingerprint); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := backend.Load(ctx, rec.Fingerprint); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		backend, err := OpenSQLite(context.Background(), dir)
		if err != nil {
			t.Fatalf("OpenSQLite #%d: %v", i, err)
		}
		var count int
		if err := backend.db.QueryRow("SELECT COUNT(1) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("count migrations: %v", err)
		}
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("loadMigrations: %v", err)
		}
		if count != len(migrations) {
			t.Fatalf("applied %d migrations, want %d", count, len(migrations))
		}
		_ = backend.Close()
	}
}
