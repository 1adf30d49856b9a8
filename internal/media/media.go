package media

import (
	"fmt"

	"golang.org/x/text/language"

	"mediabox/internal/span"
)

// Kind classifies the payload of a track.
type Kind int

const (
	KindUnknown Kind = iota
	KindSubtitle
	KindAudio
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindSubtitle:
		return "subtitle"
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// MediaInfo names the codec of a track and carries its codec-specific
// description.
type MediaInfo struct {
	// Name is the codec name decoders are registered under.
	Name     string
	Language language.Tag
	Subtitle *SubtitleInfo
}

// Kind reports which codec-specific description is present.
func (i MediaInfo) Kind() Kind {
	if i.Subtitle != nil {
		return KindSubtitle
	}
	return KindUnknown
}

// Track is one stream within a session. ID is assigned by the demuxer and
// stays stable for the track's lifetime.
type Track struct {
	ID   uint32
	Info MediaInfo
}

func (t Track) String() string {
	return fmt.Sprintf("track %d (%s %s)", t.ID, t.Info.Kind(), t.Info.Name)
}

// Packet is a timestamped unit of encoded data belonging to a track.
// Retagging TrackID on transcoded output is the only mutation callers make.
type Packet struct {
	TrackID  uint32
	Time     MediaTime
	Keyframe bool
	Data     span.Span
}
