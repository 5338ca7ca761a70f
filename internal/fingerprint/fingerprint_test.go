package fingerprint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestContentStableAndSensitive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.mp3")
	writeFile(t, path, "first")

	first, err := Content(path)
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	again, err := Content(path)
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if first != again {
		t.Fatalf("fingerprint not stable: %s vs %s", first, again)
	}

	writeFile(t, path, "second")
	changed, err := Content(path)
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if changed == first {
		t.Fatal("content change should change fingerprint")
	}
}

func TestContentSurvivesRename(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "a.mp3")
	writeFile(t, original, "same bytes")
	before, err := Content(original)
	if err != nil {
		t.Fatalf("Content: %v", err)
	}

	renamed := filepath.Join(dir, "b.mp3")
	if err := os.Rename(original, renamed); err != nil {
		t.Fatalf("rename: %v", err)
	}
	after, err := Content(renamed)
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if before != after {
		t.Fatal("rename without content change should keep fingerprint")
	}
}

func TestNameSizeTradeoff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.mp3")
	writeFile(t, path, "aaaa")
	before, err := NameSize(path)
	if err != nil {
		t.Fatalf("NameSize: %v", err)
	}

	// Same length edit goes unnoticed.
	writeFile(t, path, "bbbb")
	sameSize, err := NameSize(path)
	if err != nil {
		t.Fatalf("NameSize: %v", err)
	}
	if sameSize != before {
		t.Fatal("name_size should ignore same-size edits")
	}

	writeFile(t, path, "bbbbb")
	grown, err := NameSize(path)
	if err != nil {
		t.Fatalf("NameSize: %v", err)
	}
	if grown == before {
		t.Fatal("size change should change name_size fingerprint")
	}
}

func TestSchemesDoNotAlias(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.mp3")
	writeFile(t, path, "x")

	content, err := New(SchemeContent).Of(path)
	if err != nil {
		t.Fatalf("Of: %v", err)
	}
	nameSize, err := New(SchemeNameSize).Of(path)
	if err != nil {
		t.Fatalf("Of: %v", err)
	}
	if !strings.HasPrefix(content, "content-") || !strings.HasPrefix(nameSize, "name_size-") {
		t.Fatalf("unexpected prefixes: %s %s", content, nameSize)
	}
	if !Valid(content) || !Valid(nameSize) {
		t.Fatalf("expected valid keys: %s %s", content, nameSize)
	}
	if scheme, ok := SchemeOf(nameSize); !ok || scheme != SchemeNameSize {
		t.Fatalf("SchemeOf = %q %v", scheme, ok)
	}
}

func TestValidRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"content",
		"content-xyz",
		"other-" + strings.Repeat("a", 64),
		"content-" + strings.Repeat("A", 64),
		"content-../../etc/passwd",
	}
	for _, tc := range cases {
		if Valid(tc) {
			t.Errorf("Valid(%q) = true", tc)
		}
	}
}

func TestParseScheme(t *testing.T) {
	tests := []struct {
		in      string
		want    Scheme
		wantErr bool
	}{
		{"", SchemeContent, false},
		{"Content", SchemeContent, false},
		{"name_size", SchemeNameSize, false},
		{"md5", "", true},
	}
	for _, tt := range tests {
		got, err := ParseScheme(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseScheme(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseScheme(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMissingFile(t *testing.T) {
	if _, err := Content(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := NameSize(t.TempDir()); err == nil {
		t.Fatal("expected error for directory")
	}
}
