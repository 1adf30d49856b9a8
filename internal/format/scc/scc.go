// Package scc reads Scenarist Closed Caption (.scc) files.
//
// An SCC file is a "Scenarist_SCC V1.0" header followed by lines of a SMPTE
// timecode and hex words, each word one CEA-608 byte pair with parity bits.
// Every line becomes one packet on a single cea608 track, timed in frames
// of 1001/30000 seconds. Timecodes with a ';' before the frame field are
// drop-frame.
package scc

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mediabox/internal/codec/cea608"
	"mediabox/internal/format"
	"mediabox/internal/format/cuefile"
	"mediabox/internal/media"
	"mediabox/internal/mediaio"
	"mediabox/internal/registry"
	"mediabox/internal/span"
)

// Name is the container name.
const Name = "scc"

// Header is the required first line.
const Header = "Scenarist_SCC V1.0"

// TrackID is the id of the caption track.
const TrackID uint32 = 0

// FrameRate is the timebase of packet times: one NTSC frame.
var FrameRate = media.Fraction{Numerator: 1001, Denominator: 30000}

// ErrMissingHeader is returned when input does not start with the SCC header.
var ErrMissingHeader = errors.New("missing Scenarist_SCC header")

// Probe scores data as SCC. The header line is conclusive.
func Probe(data []byte) format.ProbeResult {
	lines := cuefile.Lines(data)
	if len(lines) == 0 || lines[0] == "" {
		return format.Unsure
	}
	first := strings.TrimSpace(lines[0])
	switch {
	case first == Header:
		return format.Certain
	case len(lines) == 1 && strings.HasPrefix(Header, first):
		return format.Maybe
	}
	return format.Unsure
}

// Demuxer reads SCC caption lines.
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
	first, err := d.lines.Next()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if strings.TrimSpace(first) != Header {
		return nil, fmt.Errorf("scc: %w", ErrMissingHeader)
	}
	return []media.Track{{ID: TrackID, Info: cea608.Info()}}, nil
}

func (d *Demuxer) Read(ctx context.Context, in *mediaio.IO) (media.Packet, error) {
	if err := ctx.Err(); err != nil {
		return media.Packet{}, err
	}
	if d.lines == nil {
		return media.Packet{}, fmt.Errorf("scc: read before start")
	}
	if _, err := d.lines.SkipBlank(); err != nil {
		return media.Packet{}, err
	}
	line, err := d.lines.Next()
	if err != nil {
		return media.Packet{}, err
	}
	fields := strings.Fields(line)
	frame, err := ParseTimecode(fields[0])
	if err != nil {
		return media.Packet{}, fmt.Errorf("scc line %d: %w", d.lines.Line(), err)
	}
	data := make([]byte, 0, 2*(len(fields)-1))
	for _, word := range fields[1:] {
		pair, err := hex.DecodeString(word)
		if err != nil || len(pair) != 2 {
			return media.Packet{}, fmt.Errorf("scc line %d: %w: bad word %q", d.lines.Line(), cuefile.ErrMalformed, word)
		}
		data = append(data, pair...)
	}
	return media.Packet{
		TrackID:  TrackID,
		Time:     media.MediaTime{Pts: frame, Dts: frame, Timebase: FrameRate},
		Keyframe: true,
		Data:     span.New(data),
	}, nil
}

// ParseTimecode converts hh:mm:ss:ff (or hh:mm:ss;ff for drop-frame) into a
// frame count at 30000/1001 frames per second.
func ParseTimecode(value string) (int64, error) {
	dropFrame := strings.ContainsAny(value, ";.")
	normalized := strings.NewReplacer(";", ":", ".", ":").Replace(value)
	parts := strings.Split(normalized, ":")
	if len(parts) != 4 {
		return 0, fmt.Errorf("%w: invalid timecode %q", cuefile.ErrMalformed, value)
	}
	var n [4]int64
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("%w: invalid timecode %q", cuefile.ErrMalformed, value)
		}
		n[i] = v
	}
	hours, minutes, seconds, frames := n[0], n[1], n[2], n[3]
	if minutes > 59 || seconds > 59 || frames > 29 {
		return 0, fmt.Errorf("%w: invalid timecode %q", cuefile.ErrMalformed, value)
	}
	total := ((hours*60+minutes)*60+seconds)*30 + frames
	if dropFrame {
		// Frame labels 0 and 1 are skipped every minute except each tenth.
		totalMinutes := hours*60 + minutes
		total -= 2 * (totalMinutes - totalMinutes/10)
	}
	return total, nil
}

// Register adds the SCC demuxer to reg. Captions are written out through
// the text subtitle muxers after conversion.
func Register(reg *registry.Registry) error {
	return reg.RegisterDemuxer(format.DemuxerDescriptor{
		Name:   Name,
		Probe:  Probe,
		Create: func() format.Demuxer { return &Demuxer{} },
	})
}
