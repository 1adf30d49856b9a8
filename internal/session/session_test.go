package session_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"mediabox/internal/media"
	"mediabox/internal/plugins"
	"mediabox/internal/registry"
	"mediabox/internal/session"
	"mediabox/internal/testsupport"
)

const srtInput = "1\n00:00:01,000 --> 00:00:02,000\n<i>Hello</i> & welcome\n\n2\n00:00:03,000 --> 00:00:04,500\nBye\n"

func newRunner(t *testing.T) *session.Runner {
	t.Helper()
	reg, err := plugins.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return session.NewRunner(reg, session.WithWorkers(2))
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	return testsupport.WriteFile(t, filepath.Join(dir, name), content)
}

func TestRunConvertsSRTToWebVTT(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "in.srt", srtInput)
	output := filepath.Join(dir, "out.vtt")

	summary, err := newRunner(t).Run(context.Background(), session.Request{
		Input:   input,
		Output:  output,
		Encoder: "webvtt",
		Lock:    true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.ID == "" || summary.Demuxer != "srt" || summary.Muxer != "webvtt" {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Packets != 2 || len(summary.Tracks) != 1 {
		t.Fatalf("unexpected counts %+v", summary)
	}
	track := summary.Tracks[0]
	if track.From != "srt" || track.To != "webvtt" || track.Kind != media.KindSubtitle || track.Failed {
		t.Fatalf("unexpected track summary %+v", track)
	}
	if summary.Duration() < 0 || summary.Finished.IsZero() {
		t.Fatalf("unexpected timing %+v", summary)
	}

	got := testsupport.ReadFile(t, output)
	want := "WEBVTT\n\n" +
		"00:00:01.000 --> 00:00:02.000\n<i>Hello</i> &amp; welcome\n\n" +
		"00:00:03.000 --> 00:00:04.500\nBye\n\n"
	if got != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", got, want)
	}
}

func TestRunConvertsSCCCaptionsToSRT(t *testing.T) {
	dir := t.TempDir()
	// Roll-up: HELLO!, a carriage return, then BYE left on screen at the end.
	input := writeInput(t, dir, "in.scc", "Scenarist_SCC V1.0\n\n"+
		"00:00:01:00\t9425 9425 c845 4c4c 4fa1\n\n"+
		"00:00:03:00\t94ad 94ad\n\n"+
		"00:00:04:00\tc2d9 4580\n")
	output := filepath.Join(dir, "out.srt")

	summary, err := newRunner(t).Run(context.Background(), session.Request{
		Input:   input,
		Output:  output,
		Encoder: "srt",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Demuxer != "scc" || len(summary.Tracks) != 1 || summary.Tracks[0].From != "cea608" {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Packets != 2 || summary.Tracks[0].Failed {
		t.Fatalf("unexpected counts %+v", summary.Tracks[0])
	}

	got := testsupport.ReadFile(t, output)
	want := "1\n00:00:01,001 --> 00:00:03,003\nHELLO!\n\n" +
		"2\n00:00:04,004 --> 00:00:04,004\nBYE\n\n"
	if got != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", got, want)
	}
}

func TestRunCopiesWithoutEncoder(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "in.vtt", "WEBVTT\n\n00:01.000 --> 00:02.000\nHi\n")
	output := filepath.Join(dir, "copy.vtt")

	summary, err := newRunner(t).Run(context.Background(), session.Request{Input: input, Output: "file://" + filepath.ToSlash(output)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Tracks[0].To != "webvtt" || summary.Packets != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	got := testsupport.ReadFile(t, output)
	if got != "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nHi\n\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRunRefusesLockedOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "in.srt", srtInput)
	output := filepath.Join(dir, "out.vtt")

	held := flock.New(output + ".lock")
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	_, err = newRunner(t).Run(context.Background(), session.Request{Input: input, Output: output, Lock: true})
	if !errors.Is(err, session.ErrOutputLocked) {
		t.Fatalf("expected ErrOutputLocked, got %v", err)
	}
	if _, err := os.Stat(output); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("output should not be created, stat err=%v", err)
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	srtPath := writeInput(t, dir, "in.srt", srtInput)
	junk := writeInput(t, dir, "junk.bin", "\x00\x01\x02 not subtitles")

	tests := []struct {
		name string
		req  session.Request
		want error
	}{
		{name: "unknown extension", req: session.Request{Input: srtPath, Output: filepath.Join(dir, "out.mkv")}, want: registry.ErrNoMuxer},
		{name: "unknown muxer", req: session.Request{Input: srtPath, Output: filepath.Join(dir, "out.vtt"), Muxer: "mp4"}, want: registry.ErrNoMuxer},
		{name: "missing input", req: session.Request{Input: filepath.Join(dir, "nope.srt"), Output: filepath.Join(dir, "out.vtt")}, want: fs.ErrNotExist},
		{name: "unprobeable input", req: session.Request{Input: junk, Output: filepath.Join(dir, "out.vtt")}, want: registry.ErrNoDemuxer},
		{name: "unknown encoder", req: session.Request{Input: srtPath, Output: filepath.Join(dir, "out.vtt"), Encoder: "ttml"}, want: registry.ErrNoEncoder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := newRunner(t).Run(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if summary.ID == "" || summary.Finished.IsZero() {
				t.Fatalf("failed run should still report id and timing: %+v", summary)
			}
		})
	}
}

func TestRunCanceled(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "in.srt", srtInput)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newRunner(t).Run(ctx, session.Request{Input: input, Output: filepath.Join(dir, "out.vtt"), Encoder: "webvtt"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
