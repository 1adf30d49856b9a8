// Package srt implements the SubRip (.srt) subtitle container.
//
// An SRT file holds one subtitle track. Each cue block is an index line, a
// timing line and one or more payload lines, separated from the next block
// by a blank line. Demuxed packets use a millisecond timebase and carry the
// raw payload text for the srt codec.
package srt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	srtcodec "mediabox/internal/codec/srt"
	"mediabox/internal/format"
	"mediabox/internal/format/cuefile"
	"mediabox/internal/media"
	"mediabox/internal/mediaio"
	"mediabox/internal/registry"
	"mediabox/internal/span"
)

// Name is the container name.
const Name = "srt"

// TrackID is the id of the single track an SRT file carries.
const TrackID uint32 = 0

// ErrTrackCount is returned when muxing anything other than one track.
var ErrTrackCount = errors.New("srt carries exactly one subtitle track")

// Probe scores data as SRT. An index line followed by a timing line is
// Likely; a bare timing line is Maybe.
func Probe(data []byte) format.ProbeResult {
	lines := cuefile.Lines(data)
	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) {
		return format.Unsure
	}
	first := strings.TrimSpace(lines[i])
	if _, err := strconv.ParseUint(first, 10, 32); err == nil {
		if i+1 < len(lines) {
			if _, err := cuefile.ParseTiming(lines[i+1]); err == nil {
				return format.Likely
			}
		}
		return format.Unsure
	}
	if _, err := cuefile.ParseTiming(first); err == nil {
		return format.Maybe
	}
	return format.Unsure
}

// Demuxer reads SRT cue blocks.
type Demuxer struct {
	lines *cuefile.LineReader
}

func (d *Demuxer) Start(ctx context.Context, in *mediaio.IO) ([]media.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := in.Reader()
	if err != nil {
		return nil, err
	}
	d.lines = cuefile.NewLineReader(r)
	return []media.Track{{ID: TrackID, Info: srtcodec.Dialect.Info()}}, nil
}

func (d *Demuxer) Read(ctx context.Context, in *mediaio.IO) (media.Packet, error) {
	if err := ctx.Err(); err != nil {
		return media.Packet{}, err
	}
	if d.lines == nil {
		return media.Packet{}, fmt.Errorf("srt: read before start")
	}
	line, err := d.lines.SkipBlank()
	if err != nil {
		return media.Packet{}, err
	}
	if !strings.Contains(line, "-->") {
		if _, err := d.lines.Next(); err != nil {
			return media.Packet{}, err
		}
		if _, perr := strconv.ParseUint(strings.TrimSpace(line), 10, 32); perr != nil {
			return media.Packet{}, fmt.Errorf("srt line %d: %w: expected cue index, got %q", d.lines.Line(), cuefile.ErrMalformed, line)
		}
		if line, err = d.lines.Next(); err != nil {
			return media.Packet{}, eofAsMalformed(err, d.lines.Line())
		}
	} else if _, err := d.lines.Next(); err != nil {
		return media.Packet{}, err
	}
	timing, err := cuefile.ParseTiming(line)
	if err != nil {
		return media.Packet{}, fmt.Errorf("srt line %d: %w", d.lines.Line(), err)
	}
	payload, err := d.lines.ReadPayload()
	if err != nil {
		return media.Packet{}, fmt.Errorf("srt line %d: %w", d.lines.Line(), err)
	}
	return media.Packet{
		TrackID:  TrackID,
		Time:     media.TimeFromDuration(timing.Start, timing.End),
		Keyframe: true,
		Data:     span.FromString(payload),
	}, nil
}

func eofAsMalformed(err error, line int) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("srt line %d: %w: cue index without timing", line, cuefile.ErrMalformed)
	}
	return err
}

// Muxer writes SRT cue blocks, numbering them from 1.
type Muxer struct {
	track uint32
	index int
}

func (m *Muxer) Start(ctx context.Context, out *mediaio.IO, tracks []media.Track) error {
	if len(tracks) != 1 {
		return fmt.Errorf("%w: got %d", ErrTrackCount, len(tracks))
	}
	m.track = tracks[0].ID
	m.index = 0
	return ctx.Err()
}

func (m *Muxer) Write(ctx context.Context, out *mediaio.IO, pkt media.Packet) error {
	if pkt.TrackID != m.track {
		return fmt.Errorf("srt: packet for track %d, muxing track %d", pkt.TrackID, m.track)
	}
	m.index++
	header := fmt.Sprintf("%d\n%s --> %s\n",
		m.index,
		cuefile.FormatTimestamp(pkt.Time.Start(), ','),
		cuefile.FormatTimestamp(pkt.Time.End(), ','),
	)
	block := span.New([]byte(header), pkt.Data.Bytes(), []byte("\n\n"))
	return out.WriteSpan(ctx, block)
}

func (m *Muxer) Stop(ctx context.Context, out *mediaio.IO) error {
	return ctx.Err()
}

// Register adds the SRT demuxer and muxer to reg.
func Register(reg *registry.Registry) error {
	if err := reg.RegisterDemuxer(format.DemuxerDescriptor{
		Name:   Name,
		Probe:  Probe,
		Create: func() format.Demuxer { return &Demuxer{} },
	}); err != nil {
		return err
	}
	return reg.RegisterMuxer(format.MuxerDescriptor{
		Name:       Name,
		Extensions: []string{".srt"},
		Create:     func() format.Muxer { return &Muxer{} },
	})
}
