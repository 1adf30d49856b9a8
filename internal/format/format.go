package format

import (
	"context"

	"mediabox/internal/media"
	"mediabox/internal/mediaio"
)

// ProbeResult is a demuxer's confidence that a byte prefix belongs to its
// format. Values are ordered: a higher value is a stronger claim.
type ProbeResult int

const (
	Unsure ProbeResult = iota
	Maybe
	Likely
	Certain
)

func (p ProbeResult) String() string {
	switch p {
	case Unsure:
		return "unsure"
	case Maybe:
		return "maybe"
	case Likely:
		return "likely"
	case Certain:
		return "certain"
	default:
		return "invalid"
	}
}

// Demuxer splits a container's byte stream into tracks and packets.
type Demuxer interface {
	// Start reads the container header and returns its tracks.
	Start(ctx context.Context, in *mediaio.IO) ([]media.Track, error)
	// Read returns the next packet, or io.EOF once the stream is exhausted.
	Read(ctx context.Context, in *mediaio.IO) (media.Packet, error)
}

// Muxer writes tracks and packets into a container.
type Muxer interface {
	// Start writes the container header for the given tracks.
	Start(ctx context.Context, out *mediaio.IO, tracks []media.Track) error
	// Write appends one packet.
	Write(ctx context.Context, out *mediaio.IO, pkt media.Packet) error
	// Stop finalizes the container.
	Stop(ctx context.Context, out *mediaio.IO) error
}

// DemuxerDescriptor registers a demuxer under a stable name together with
// the content test used for probing.
type DemuxerDescriptor struct {
	Name   string
	Probe  func(data []byte) ProbeResult
	Create func() Demuxer
}

// New returns a fresh demuxer.
func (d DemuxerDescriptor) New() Demuxer {
	return d.Create()
}

// MuxerDescriptor registers a muxer under a stable name. Extensions lists the
// file extensions (with leading dot) the muxer is the default for.
type MuxerDescriptor struct {
	Name       string
	Extensions []string
	Create     func() Muxer
}

// New returns a fresh muxer.
func (d MuxerDescriptor) New() Muxer {
	return d.Create()
}
