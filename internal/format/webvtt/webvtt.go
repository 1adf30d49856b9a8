// Package webvtt implements the WebVTT (.vtt) subtitle container.
//
// The file header ("WEBVTT" plus optional "Key: value" metadata lines) is
// kept as the track's codec header, and a Language entry sets the track
// language. NOTE, STYLE and REGION blocks are skipped. Cue settings after
// the timing line are not carried into packets.
package webvtt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	vttcodec "mediabox/internal/codec/webvtt"
	"mediabox/internal/format"
	"mediabox/internal/format/cuefile"
	"mediabox/internal/language"
	"mediabox/internal/media"
	"mediabox/internal/mediaio"
	"mediabox/internal/registry"
	"mediabox/internal/span"
)

// Name is the container name.
const Name = "webvtt"

// TrackID is the id of the single track a WebVTT file carries.
const TrackID uint32 = 0

var (
	// ErrMissingSignature is returned when input does not start with WEBVTT.
	ErrMissingSignature = errors.New("missing WEBVTT signature")
	// ErrTrackCount is returned when muxing anything other than one track.
	ErrTrackCount = errors.New("webvtt carries exactly one subtitle track")
)

func isSignature(line string) bool {
	rest, ok := strings.CutPrefix(line, vttcodec.Header)
	return ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t')
}

// Probe scores data as WebVTT. The signature line is conclusive.
func Probe(data []byte) format.ProbeResult {
	lines := cuefile.Lines(data)
	if len(lines) > 0 && isSignature(lines[0]) {
		return format.Certain
	}
	if len(lines) == 1 && strings.HasPrefix(vttcodec.Header, lines[0]) && lines[0] != "" {
		return format.Maybe
	}
	return format.Unsure
}

// Demuxer reads WebVTT cues.
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
	if !isSignature(first) {
		return nil, fmt.Errorf("webvtt: %w", ErrMissingSignature)
	}
	header := []string{first}
	meta := make(map[string]string)
	for {
		line, err := d.lines.Peek()
		if errors.Is(err, io.EOF) || (err == nil && strings.TrimSpace(line) == "") {
			break
		}
		if err != nil {
			return nil, err
		}
		_, _ = d.lines.Next()
		header = append(header, line)
		if key, value, ok := strings.Cut(line, ":"); ok && !strings.Contains(line, "-->") {
			meta[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}

	info := vttcodec.Dialect.Info()
	info.Subtitle.Codec.Header = strings.Join(header, "\n")
	info.Language = language.ExtractFromTags(meta)
	return []media.Track{{ID: TrackID, Info: info}}, nil
}

func (d *Demuxer) Read(ctx context.Context, in *mediaio.IO) (media.Packet, error) {
	if err := ctx.Err(); err != nil {
		return media.Packet{}, err
	}
	if d.lines == nil {
		return media.Packet{}, fmt.Errorf("webvtt: read before start")
	}
	for {
		line, err := d.lines.SkipBlank()
		if err != nil {
			return media.Packet{}, err
		}
		if isMetadataBlock(line) {
			if _, err := d.lines.ReadPayload(); err != nil {
				return media.Packet{}, err
			}
			continue
		}
		_, _ = d.lines.Next()
		if !strings.Contains(line, "-->") {
			// cue identifier
			if line, err = d.lines.Next(); err != nil {
				if errors.Is(err, io.EOF) {
					return media.Packet{}, fmt.Errorf("webvtt line %d: %w: cue identifier without timing", d.lines.Line(), cuefile.ErrMalformed)
				}
				return media.Packet{}, err
			}
		}
		timing, err := cuefile.ParseTiming(line)
		if err != nil {
			return media.Packet{}, fmt.Errorf("webvtt line %d: %w", d.lines.Line(), err)
		}
		payload, err := d.lines.ReadPayload()
		if err != nil {
			return media.Packet{}, err
		}
		return media.Packet{
			TrackID:  TrackID,
			Time:     media.TimeFromDuration(timing.Start, timing.End),
			Keyframe: true,
			Data:     span.FromString(payload),
		}, nil
	}
}

func isMetadataBlock(line string) bool {
	for _, kw := range []string{"NOTE", "STYLE", "REGION"} {
		if rest, ok := strings.CutPrefix(line, kw); ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t') {
			return true
		}
	}
	return false
}

// Muxer writes WebVTT files.
type Muxer struct {
	track uint32
}

func (m *Muxer) Start(ctx context.Context, out *mediaio.IO, tracks []media.Track) error {
	if len(tracks) != 1 {
		return fmt.Errorf("%w: got %d", ErrTrackCount, len(tracks))
	}
	track := tracks[0]
	m.track = track.ID

	header := vttcodec.Header
	if sub := track.Info.Subtitle; sub != nil && isSignature(firstLine(sub.Codec.Header)) {
		header = sub.Codec.Header
	}
	if !track.Info.Language.IsRoot() && !strings.Contains(header, "\nLanguage:") {
		header += "\nLanguage: " + track.Info.Language.String()
	}
	return out.Write(ctx, []byte(header+"\n\n"))
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func (m *Muxer) Write(ctx context.Context, out *mediaio.IO, pkt media.Packet) error {
	if pkt.TrackID != m.track {
		return fmt.Errorf("webvtt: packet for track %d, muxing track %d", pkt.TrackID, m.track)
	}
	timing := fmt.Sprintf("%s --> %s\n",
		cuefile.FormatTimestamp(pkt.Time.Start(), '.'),
		cuefile.FormatTimestamp(pkt.Time.End(), '.'),
	)
	return out.WriteSpan(ctx, span.New([]byte(timing), pkt.Data.Bytes(), []byte("\n\n")))
}

func (m *Muxer) Stop(ctx context.Context, out *mediaio.IO) error {
	return ctx.Err()
}

// Register adds the WebVTT demuxer and muxer to reg.
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
		Extensions: []string{".vtt", ".webvtt"},
		Create:     func() format.Muxer { return &Muxer{} },
	})
}
