package scc_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"mediabox/internal/codec/cea608"
	"mediabox/internal/format"
	"mediabox/internal/format/cuefile"
	"mediabox/internal/format/scc"
	"mediabox/internal/mediaio"
)

const sample = "Scenarist_SCC V1.0\r\n\r\n" +
	"00:00:01:00\t9425 9425 c845\r\n\r\n" +
	"00:00:02:00\t942c 942c\r\n"

func TestHeaderDetection(t *testing.T) {
	tests := []struct {
		name string
		data string
		want format.ProbeResult
	}{
		{name: "header", data: sample, want: format.Certain},
		{name: "truncated header", data: "Scenarist_S", want: format.Maybe},
		{name: "webvtt", data: "WEBVTT\n", want: format.Unsure},
		{name: "empty", data: "", want: format.Unsure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scc.Probe([]byte(tt.data)); got != tt.want {
				t.Fatalf("Probe = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDemux(t *testing.T) {
	ctx := context.Background()
	in := mediaio.FromReader(strings.NewReader(sample))
	d := &scc.Demuxer{}

	tracks, err := d.Start(ctx, in)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(tracks) != 1 || tracks[0].Info.Name != cea608.Name {
		t.Fatalf("unexpected tracks %+v", tracks)
	}

	first, err := d.Read(ctx, in)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := first.Data.Bytes(); string(got) != "\x94\x25\x94\x25\xc8\x45" {
		t.Fatalf("unexpected payload % x", got)
	}
	// 30 frames of 1001/30000 s.
	if first.Time.Pts != 30 || first.Time.Start() != 1001*time.Millisecond {
		t.Fatalf("unexpected time %+v (%s)", first.Time, first.Time.Start())
	}

	second, err := d.Read(ctx, in)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if second.Time.Pts != 60 || second.Data.Len() != 4 {
		t.Fatalf("unexpected second packet %+v", second)
	}
	if _, err := d.Read(ctx, in); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestDemuxRequiresHeader(t *testing.T) {
	in := mediaio.FromReader(strings.NewReader("00:00:01:00\t9425\n"))
	if _, err := (&scc.Demuxer{}).Start(context.Background(), in); !errors.Is(err, scc.ErrMissingHeader) {
		t.Fatalf("expected ErrMissingHeader, got %v", err)
	}
}

func TestDemuxBadWord(t *testing.T) {
	ctx := context.Background()
	in := mediaio.FromReader(strings.NewReader("Scenarist_SCC V1.0\n\n00:00:01:00\t94zz\n"))
	d := &scc.Demuxer{}
	if _, err := d.Start(ctx, in); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := d.Read(ctx, in); !errors.Is(err, cuefile.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestParseTimecode(t *testing.T) {
	tests := []struct {
		value string
		want  int64
		ok    bool
	}{
		{value: "00:00:01:00", want: 30, ok: true},
		{value: "00:01:00:00", want: 1800, ok: true},
		{value: "00:01:00;02", want: 1798, ok: true},
		{value: "00:10:00;00", want: 17982, ok: true},
		{value: "00:00:01:30", ok: false},
		{value: "01:00", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := scc.ParseTimecode(tt.value)
			if tt.ok != (err == nil) {
				t.Fatalf("ParseTimecode(%q) error = %v", tt.value, err)
			}
			if tt.ok && got != tt.want {
				t.Fatalf("ParseTimecode(%q) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}
