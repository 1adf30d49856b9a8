package srt_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"mediabox/internal/format"
	"mediabox/internal/format/cuefile"
	"mediabox/internal/format/srt"
	"mediabox/internal/media"
	"mediabox/internal/mediaio"
)

const sample = "1\r\n00:00:01,000 --> 00:00:02,500\r\nHello\r\n<i>there</i>\r\n\r\n2\r\n00:00:03,000 --> 00:00:04,000\r\nBye\r\n"

func TestProbe(t *testing.T) {
	tests := []struct {
		name string
		data string
		want format.ProbeResult
	}{
		{name: "index and timing", data: sample, want: format.Likely},
		{name: "leading blank lines", data: "\n\n" + sample, want: format.Likely},
		{name: "timing only", data: "00:00:01,000 --> 00:00:02,000\nHi\n", want: format.Maybe},
		{name: "webvtt", data: "WEBVTT\n\n00:01.000 --> 00:02.000\nHi\n", want: format.Unsure},
		{name: "index without timing", data: "1\nHello\n", want: format.Unsure},
		{name: "empty", data: "", want: format.Unsure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := srt.Probe([]byte(tt.data)); got != tt.want {
				t.Fatalf("Probe = %v, want %v", got, tt.want)
			}
		})
	}
}

func readAll(t *testing.T, input string) ([]media.Track, []media.Packet, error) {
	t.Helper()
	ctx := context.Background()
	in := mediaio.FromReader(strings.NewReader(input))
	d := &srt.Demuxer{}
	tracks, err := d.Start(ctx, in)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	var pkts []media.Packet
	for {
		pkt, err := d.Read(ctx, in)
		if errors.Is(err, io.EOF) {
			return tracks, pkts, nil
		}
		if err != nil {
			return tracks, pkts, err
		}
		pkts = append(pkts, pkt)
	}
}

func TestDemux(t *testing.T) {
	tracks, pkts, err := readAll(t, sample)
	if err != nil {
		t.Fatalf("demux: %v", err)
	}
	if len(tracks) != 1 || tracks[0].ID != srt.TrackID || tracks[0].Info.Name != "srt" || tracks[0].Info.Subtitle == nil {
		t.Fatalf("unexpected tracks %+v", tracks)
	}
	if len(pkts) != 2 {
		t.Fatalf("expected 2 packets, got %d", len(pkts))
	}
	first := pkts[0]
	if first.Data.String() != "Hello\n<i>there</i>" {
		t.Fatalf("unexpected payload %q", first.Data.String())
	}
	if first.Time.Start() != time.Second || first.Time.End() != 2500*time.Millisecond || first.Time.Timebase != media.Millisecond {
		t.Fatalf("unexpected time %+v", first.Time)
	}
	if pkts[1].Data.String() != "Bye" {
		t.Fatalf("unexpected second payload %q", pkts[1].Data.String())
	}
}

func TestDemuxMalformed(t *testing.T) {
	tests := []string{
		"1\nnot a timing line\nHello\n",
		"x\n00:00:01,000 --> 00:00:02,000\nHello\n",
		"1\n",
	}
	for _, input := range tests {
		_, _, err := readAll(t, input)
		if !errors.Is(err, cuefile.ErrMalformed) {
			t.Fatalf("input %q: expected ErrMalformed, got %v", input, err)
		}
	}
}

func TestMux(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	out := mediaio.FromStream(&buf)

	_, pkts, err := readAll(t, sample)
	if err != nil {
		t.Fatalf("demux: %v", err)
	}
	m := &srt.Muxer{}
	if err := m.Start(ctx, out, []media.Track{{ID: srt.TrackID}}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for _, pkt := range pkts {
		if err := m.Write(ctx, out, pkt); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := m.Stop(ctx, out); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	want := "1\n00:00:01,000 --> 00:00:02,500\nHello\n<i>there</i>\n\n2\n00:00:03,000 --> 00:00:04,000\nBye\n\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestMuxRejectsTrackMismatch(t *testing.T) {
	ctx := context.Background()
	out := mediaio.FromStream(new(bytes.Buffer))
	m := &srt.Muxer{}
	if err := m.Start(ctx, out, nil); !errors.Is(err, srt.ErrTrackCount) {
		t.Fatalf("expected ErrTrackCount, got %v", err)
	}
	if err := m.Start(ctx, out, []media.Track{{ID: 4}}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Write(ctx, out, media.Packet{TrackID: 5}); err == nil {
		t.Fatal("expected error for foreign track")
	}
}
