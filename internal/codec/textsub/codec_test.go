package textsub_test

import (
	"errors"
	"testing"

	"mediabox/internal/codec/textsub"
	"mediabox/internal/media"
	"mediabox/internal/span"
)

var dialect = textsub.Dialect{
	Name:   "test",
	Format: media.SubtitleSRT,
	Render: textsub.RenderOptions{FontColor: true},
}

func TestDecoderRequiresSubtitleInfo(t *testing.T) {
	dec := textsub.NewDecoder(dialect)
	if err := dec.Start(media.MediaInfo{Name: "test"}); !errors.Is(err, textsub.ErrNotSubtitle) {
		t.Fatalf("expected ErrNotSubtitle, got %v", err)
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	dec := textsub.NewDecoder(dialect)
	if err := dec.Start(dialect.Info()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	enc := textsub.NewEncoder(dialect)
	info, err := enc.Start(media.SubtitleDescription{})
	if err != nil {
		t.Fatalf("encoder Start: %v", err)
	}
	if info.Name != "test" || info.Subtitle == nil || info.Subtitle.Codec.Format != media.SubtitleSRT {
		t.Fatalf("unexpected info %+v", info)
	}

	when := media.MediaTime{Pts: 1500, Duration: 2000, Timebase: media.Millisecond}
	in := media.Packet{TrackID: 3, Time: when, Data: span.FromString("<i>Hi</i>\nthere")}
	if err := dec.Feed(in); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if err := dec.Feed(media.Packet{Data: span.FromString("")}); err != nil {
		t.Fatalf("Feed empty: %v", err)
	}

	unit, ok := dec.Receive()
	if !ok {
		t.Fatal("expected a cue")
	}
	cue := unit.(*media.TextCue)
	if cue.Style != media.DefaultStyleName || cue.Time != when || cue.PlainText() != "Hi\nthere" {
		t.Fatalf("unexpected cue %+v", cue)
	}
	if _, ok := dec.Receive(); ok {
		t.Fatal("empty payload should not produce a cue")
	}

	if err := enc.Feed(cue); err != nil {
		t.Fatalf("encoder Feed: %v", err)
	}
	out, ok := enc.Receive()
	if !ok {
		t.Fatal("expected a packet")
	}
	if out.Data.String() != "<i>Hi</i>\nthere" || out.Time != when || !out.Keyframe {
		t.Fatalf("unexpected packet %+v (%q)", out, out.Data.String())
	}
	if _, ok := enc.Receive(); ok {
		t.Fatal("expected encoder drained")
	}
}

func TestEncoderRejectsForeignUnits(t *testing.T) {
	enc := textsub.NewEncoder(dialect)
	if _, err := enc.Start(nil); !errors.Is(err, textsub.ErrNotSubtitle) {
		t.Fatalf("expected ErrNotSubtitle, got %v", err)
	}
	if err := enc.Feed(media.SubtitleDescription{}); !errors.Is(err, textsub.ErrUnexpectedUnit) {
		t.Fatalf("expected ErrUnexpectedUnit, got %v", err)
	}
}
