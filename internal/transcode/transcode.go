package transcode

import (
	"errors"
	"fmt"

	"mediabox/internal/codec"
	"mediabox/internal/media"
	"mediabox/internal/registry"
)

// ErrNotSubtitle is returned when a subtitle chain is requested for a track
// that does not carry subtitles.
var ErrNotSubtitle = errors.New("track is not a subtitle track")

// Transcode is the owned state for one track. Apply feeds pkt through the
// state and hands every produced packet to emit in production order.
type Transcode interface {
	Apply(pkt media.Packet, emit func(media.Packet)) error
}

// Subtitles converts subtitle packets with a decoder and encoder pair.
type Subtitles struct {
	Decoder codec.Decoder
	Encoder codec.Encoder
}

// Flusher is implemented by states that buffer output across packets.
type Flusher interface {
	Flush(trackID uint32, emit func(media.Packet)) error
}

// Apply runs the decode/encode loop. Output packets carry pkt's track id.
func (s *Subtitles) Apply(pkt media.Packet, emit func(media.Packet)) error {
	if err := s.Decoder.Feed(pkt); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return s.drain(pkt.TrackID, emit)
}

// Flush releases output the decoder is still holding.
func (s *Subtitles) Flush(trackID uint32, emit func(media.Packet)) error {
	f, ok := s.Decoder.(codec.Flusher)
	if !ok {
		return nil
	}
	if err := f.Flush(); err != nil {
		return fmt.Errorf("flush decoder: %w", err)
	}
	return s.drain(trackID, emit)
}

func (s *Subtitles) drain(trackID uint32, emit func(media.Packet)) error {
	for {
		unit, ok := s.Decoder.Receive()
		if !ok {
			return nil
		}
		if err := s.Encoder.Feed(unit); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		for {
			out, ok := s.Encoder.Receive()
			if !ok {
				break
			}
			out.TrackID = trackID
			emit(out)
		}
	}
}

// NewSubtitles builds a Subtitles state for track using the track's decoder
// and the named encoder. A nil desc starts the encoder with an empty style
// sheet. The returned MediaInfo describes the converted track.
func NewSubtitles(reg *registry.Registry, track media.Track, encoder string, desc codec.Description) (*Subtitles, media.MediaInfo, error) {
	if track.Info.Kind() != media.KindSubtitle {
		return nil, media.MediaInfo{}, fmt.Errorf("%s: %w", track, ErrNotSubtitle)
	}
	dec, err := reg.DecoderForTrack(track)
	if err != nil {
		return nil, media.MediaInfo{}, err
	}
	enc, info, err := reg.EncoderWithParams(encoder, desc)
	if err != nil {
		return nil, media.MediaInfo{}, fmt.Errorf("track %d: %w", track.ID, err)
	}
	if info.Language.IsRoot() {
		info.Language = track.Info.Language
	}
	return &Subtitles{Decoder: dec, Encoder: enc}, info, nil
}
