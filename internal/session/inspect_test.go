package session_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"mediabox/internal/plugins"
	"mediabox/internal/registry"
	"mediabox/internal/session"
	"mediabox/internal/testsupport"
)

func TestInspectCountsPackets(t *testing.T) {
	reg, err := plugins.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	input := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "in.srt"), srtInput)

	report, err := session.Inspect(context.Background(), reg, input)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if report.Demuxer != "srt" || len(report.Tracks) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	stats := report.Tracks[0]
	if stats.Packets != 2 || stats.First != time.Second || stats.Last != 4500*time.Millisecond {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.Track.Info.Name != "srt" {
		t.Fatalf("unexpected codec %q", stats.Track.Info.Name)
	}
}

func TestInspectUnknownInput(t *testing.T) {
	reg, err := plugins.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	input := testsupport.WriteFile(t, filepath.Join(t.TempDir(), "in.bin"), "\x00\x01\x02 not a subtitle")
	if _, err := session.Inspect(context.Background(), reg, input); !errors.Is(err, registry.ErrNoDemuxer) {
		t.Fatalf("expected ErrNoDemuxer, got %v", err)
	}
}
