package webvtt_test

import (
	"testing"

	"mediabox/internal/codec/srt"
	"mediabox/internal/codec/webvtt"
	"mediabox/internal/media"
	"mediabox/internal/registry"
	"mediabox/internal/span"
)

func TestSRTToWebVTT(t *testing.T) {
	reg := registry.New()
	if err := srt.Register(reg); err != nil {
		t.Fatalf("srt.Register: %v", err)
	}
	if err := webvtt.Register(reg); err != nil {
		t.Fatalf("webvtt.Register: %v", err)
	}
	reg.Freeze()

	dec, err := reg.DecoderForTrack(media.Track{ID: 1, Info: srt.Dialect.Info()})
	if err != nil {
		t.Fatalf("DecoderForTrack: %v", err)
	}
	enc, info, err := reg.EncoderWithParams(webvtt.Name, nil)
	if err != nil {
		t.Fatalf("EncoderWithParams: %v", err)
	}
	if info.Subtitle == nil || info.Subtitle.Codec.Header != webvtt.Header {
		t.Fatalf("unexpected output info %+v", info)
	}

	if err := dec.Feed(media.Packet{Data: span.FromString(`<font color="#ffffff">Fish & chips</font> <b>now</b>`)}); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	unit, ok := dec.Receive()
	if !ok {
		t.Fatal("expected cue")
	}
	if err := enc.Feed(unit); err != nil {
		t.Fatalf("encoder Feed: %v", err)
	}
	pkt, ok := enc.Receive()
	if !ok {
		t.Fatal("expected packet")
	}
	if got := pkt.Data.String(); got != "Fish &amp; chips now" {
		t.Fatalf("unexpected payload %q", got)
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	reg := registry.New()
	if err := webvtt.Register(reg); err != nil {
		t.Fatal(err)
	}
	if err := webvtt.Register(reg); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}
