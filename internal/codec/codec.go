package codec

import "mediabox/internal/media"

// Decoded is one unit of decoded media.
type Decoded interface {
	MediaKind() media.Kind
}

// Description is the codec-agnostic configuration an encoder starts from,
// for example a media.SubtitleDescription.
type Description interface {
	MediaKind() media.Kind
}

// Decoder converts a track's packets into decoded units.
type Decoder interface {
	// Start initializes the decoder from the source track's codec info.
	Start(info media.MediaInfo) error
	// Feed accepts one packet.
	Feed(pkt media.Packet) error
	// Receive returns the next buffered output, or false when none is ready.
	Receive() (Decoded, bool)
}

// Flusher is implemented by decoders that hold output back until they see
// what follows. Flush releases it to Receive at the end of the stream.
type Flusher interface {
	Flush() error
}

// Encoder converts decoded units into packets.
type Encoder interface {
	// Start initializes the encoder and returns the output track's codec info.
	Start(desc Description) (media.MediaInfo, error)
	// Feed accepts one decoded unit.
	Feed(unit Decoded) error
	// Receive returns the next encoded packet, or false when none is ready.
	Receive() (media.Packet, bool)
}

// DecoderDescriptor registers a decoder under a stable name.
type DecoderDescriptor struct {
	Name   string
	Create func() Decoder
}

// New returns a fresh, unstarted decoder.
func (d DecoderDescriptor) New() Decoder {
	return d.Create()
}

// EncoderDescriptor registers an encoder under a stable name.
type EncoderDescriptor struct {
	Name   string
	Create func() Encoder
}

// New returns a fresh, unstarted encoder.
func (d EncoderDescriptor) New() Encoder {
	return d.Create()
}
