package textsub

import (
	"errors"
	"fmt"

	"mediabox/internal/codec"
	"mediabox/internal/media"
	"mediabox/internal/registry"
	"mediabox/internal/span"
)

var (
	// ErrNotSubtitle is returned when a codec is started without subtitle info.
	ErrNotSubtitle = errors.New("codec info does not describe a subtitle track")
	// ErrUnexpectedUnit is returned when an encoder is fed something other
	// than a *media.TextCue.
	ErrUnexpectedUnit = errors.New("unexpected decoded unit")
)

// Dialect describes one text subtitle codec.
type Dialect struct {
	Name   string
	Format media.SubtitleFormat
	// Header is the codec header reported for encoded tracks.
	Header string
	Render RenderOptions
}

// Info returns the codec info of a track carrying this dialect.
func (d Dialect) Info() media.MediaInfo {
	return media.MediaInfo{
		Name:     d.Name,
		Subtitle: &media.SubtitleInfo{Codec: media.SubtitleCodec{Format: d.Format, Header: d.Header}},
	}
}

// Decoder turns cue payload packets into TextCues.
type Decoder struct {
	dialect Dialect
	style   string
	pending []*media.TextCue
}

// NewDecoder returns a decoder for d.
func NewDecoder(d Dialect) *Decoder {
	return &Decoder{dialect: d}
}

func (d *Decoder) Start(info media.MediaInfo) error {
	if info.Subtitle == nil {
		return fmt.Errorf("%s decoder: %w", d.dialect.Name, ErrNotSubtitle)
	}
	d.style = media.DefaultStyleName
	return nil
}

func (d *Decoder) Feed(pkt media.Packet) error {
	parts := Parse(pkt.Data.String())
	if len(parts) == 0 {
		return nil
	}
	d.pending = append(d.pending, &media.TextCue{
		Time:  pkt.Time,
		Style: d.style,
		Text:  parts,
	})
	return nil
}

func (d *Decoder) Receive() (codec.Decoded, bool) {
	if len(d.pending) == 0 {
		return nil, false
	}
	cue := d.pending[0]
	d.pending = d.pending[1:]
	return cue, true
}

// Encoder renders TextCues as cue payload packets.
type Encoder struct {
	dialect Dialect
	pending []media.Packet
}

// NewEncoder returns an encoder for d.
func NewEncoder(d Dialect) *Encoder {
	return &Encoder{dialect: d}
}

func (e *Encoder) Start(desc codec.Description) (media.MediaInfo, error) {
	if desc == nil || desc.MediaKind() != media.KindSubtitle {
		return media.MediaInfo{}, fmt.Errorf("%s encoder: %w", e.dialect.Name, ErrNotSubtitle)
	}
	return e.dialect.Info(), nil
}

func (e *Encoder) Feed(unit codec.Decoded) error {
	cue, ok := unit.(*media.TextCue)
	if !ok {
		return fmt.Errorf("%s encoder: %w %T", e.dialect.Name, ErrUnexpectedUnit, unit)
	}
	e.pending = append(e.pending, media.Packet{
		Time:     cue.Time,
		Keyframe: true,
		Data:     span.FromString(Render(cue.Text, e.dialect.Render)),
	})
	return nil
}

func (e *Encoder) Receive() (media.Packet, bool) {
	if len(e.pending) == 0 {
		return media.Packet{}, false
	}
	pkt := e.pending[0]
	e.pending = e.pending[1:]
	return pkt, true
}

// Descriptors returns the registry descriptors for d.
func Descriptors(d Dialect) (codec.DecoderDescriptor, codec.EncoderDescriptor) {
	dec := codec.DecoderDescriptor{
		Name:   d.Name,
		Create: func() codec.Decoder { return NewDecoder(d) },
	}
	enc := codec.EncoderDescriptor{
		Name:   d.Name,
		Create: func() codec.Encoder { return NewEncoder(d) },
	}
	return dec, enc
}

// Register adds d's decoder and encoder to reg.
func Register(reg *registry.Registry, d Dialect) error {
	dec, enc := Descriptors(d)
	if err := reg.RegisterDecoder(dec); err != nil {
		return err
	}
	return reg.RegisterEncoder(enc)
}
