package ffprobe

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio", CodecName: "flac"},
			{CodecType: "audio"},
		},
		Format: Format{
			Duration: "123.45",
			BitRate:  "32000",
		},
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if stream, ok := result.PrimaryAudio(); !ok || stream.CodecName != "flac" {
		t.Fatalf("PrimaryAudio = %+v, %v", stream, ok)
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.BitRate() != 32000 {
		t.Fatalf("unexpected bitrate: %d", result.BitRate())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad", BitRate: "nope"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.BitRate() != 0 {
		t.Fatalf("expected bitrate 0, got %d", result.BitRate())
	}
}

func writeStub(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestProbe(t *testing.T) {
	audio := writeStub(t, `echo '{"streams":[{"index":0,"codec_type":"audio","codec_name":"mp3"}],"format":{"duration":"3.0"}}'`)
	if err := Probe(context.Background(), audio, "/music/a.mp3"); err != nil {
		t.Fatalf("Probe: %v", err)
	}

	silent := writeStub(t, `echo '{"streams":[{"index":0,"codec_type":"video"}],"format":{}}'`)
	if err := Probe(context.Background(), silent, "/music/a.mp3"); !errors.Is(err, ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}

	broken := writeStub(t, `echo 'Invalid data found when processing input' >&2; exit 1`)
	if err := Probe(context.Background(), broken, "/music/a.mp3"); err == nil {
		t.Fatal("expected error from failing ffprobe")
	}

	if _, err := Inspect(context.Background(), audio, " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
