package media

import (
	"maps"
	"slices"
	"strings"
)

// SubtitleFormat identifies a text subtitle codec family.
type SubtitleFormat string

const (
	SubtitleWebVTT SubtitleFormat = "webvtt"
	SubtitleSRT    SubtitleFormat = "srt"
	SubtitleCEA608 SubtitleFormat = "cea608"
)

// SubtitleCodec is the codec-level header of a subtitle track, for example
// the WEBVTT preamble.
type SubtitleCodec struct {
	Format SubtitleFormat
	Header string
}

// SubtitleInfo describes a subtitle track's codec.
type SubtitleInfo struct {
	Codec SubtitleCodec
}

func (i SubtitleInfo) String() string {
	return i.Codec.Header
}

// SubtitleDescription is a format-agnostic style sheet keyed by style name.
// Encoders render cues against it.
type SubtitleDescription struct {
	Styles map[string]TextStyle
}

// MediaKind marks SubtitleDescription as a codec description.
func (SubtitleDescription) MediaKind() Kind { return KindSubtitle }

// Style returns the named style, falling back to DefaultStyleName.
func (d SubtitleDescription) Style(name string) (TextStyle, bool) {
	if style, ok := d.Styles[name]; ok {
		return style, true
	}
	style, ok := d.Styles[DefaultStyleName]
	return style, ok
}

// StyleNames returns the style names in sorted order.
func (d SubtitleDescription) StyleNames() []string {
	return slices.Sorted(maps.Keys(d.Styles))
}

// DefaultStyleName is the style assigned to cues from formats without named
// styles.
const DefaultStyleName = "Default"

// TextStyle is one named style. Every field is optional; nil means the
// renderer's default.
type TextStyle struct {
	Font           *string
	PrimaryColor   *uint32
	SecondaryColor *uint32
	OutlineColor   *uint32
	BackColor      *uint32
	Bold           bool
	Italic         bool
	Underline      bool
	Strikeout      bool
	ScaleX         float32
	ScaleY         float32
	Spacing        int32
	Angle          int32
	BorderStyle    *int32
	Outline        *int32
	Shadow         *int32
	Alignment      *TextAlign
	MarginLeft     *int32
	MarginRight    *int32
	MarginVertical *int32
}

// TextAlign is a numpad-style anchor position.
type TextAlign int

const (
	AlignBottomLeft TextAlign = iota + 1
	AlignBottom
	AlignBottomRight
	AlignMidLeft
	AlignMid
	AlignMidRight
	AlignTopLeft
	AlignTop
	AlignTopRight
)

func (a TextAlign) String() string {
	switch a {
	case AlignTopLeft:
		return "top-left"
	case AlignTop:
		return "top"
	case AlignTopRight:
		return "top-right"
	case AlignMidLeft:
		return "mid-left"
	case AlignMid:
		return "mid"
	case AlignMidRight:
		return "mid-right"
	case AlignBottomLeft:
		return "bottom-left"
	case AlignBottom:
		return "bottom"
	case AlignBottomRight:
		return "bottom-right"
	default:
		return "unknown"
	}
}

// ColorType selects which colour of a style a Fill or Alpha part changes.
type ColorType int

const (
	ColorPrimary ColorType = iota
	ColorKaraoke
	ColorOutline
	ColorShadow
)

func (c ColorType) String() string {
	switch c {
	case ColorPrimary:
		return "primary"
	case ColorKaraoke:
		return "karaoke"
	case ColorOutline:
		return "outline"
	case ColorShadow:
		return "shadow"
	default:
		return "unknown"
	}
}

// TextCue is one decoded subtitle event.
type TextCue struct {
	Time  MediaTime
	Style string
	Text  []TextPart
}

// MediaKind marks TextCue as a decoded subtitle unit.
func (*TextCue) MediaKind() Kind { return KindSubtitle }

// PlainText flattens the cue to text, rendering line breaks as newlines and
// dropping formatting.
func (c *TextCue) PlainText() string {
	var b strings.Builder
	for _, part := range c.Text {
		switch p := part.(type) {
		case Text:
			b.WriteString(string(p))
		case LineBreak:
			b.WriteByte('\n')
		case SmartBreak:
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// TextPart is one element of a cue's rich text. The concrete types below are
// the complete set.
type TextPart interface {
	textPart()
}

type (
	// Text is a run of plain text.
	Text string
	// Italic toggles italics for following text.
	Italic bool
	// Underline toggles underlining for following text.
	Underline bool
	// Strikeout toggles strikethrough for following text.
	Strikeout bool
	// Border sets the border width for following text.
	Border float32
	// FontSize sets the font size for following text.
	FontSize uint32
	// LineBreak is a hard line break.
	LineBreak struct{}
	// SmartBreak is a break the renderer may wrap at or replace with a space.
	SmartBreak struct{}
)

// Position anchors the cue at an absolute position.
type Position struct {
	X, Y float32
}

// Fill sets an RGB colour for a colour role.
type Fill struct {
	Color ColorType
	RGB   uint32
}

// Alpha sets the transparency for a colour role.
type Alpha struct {
	Color ColorType
	Value uint8
}

func (Text) textPart()       {}
func (Italic) textPart()     {}
func (Underline) textPart()  {}
func (Strikeout) textPart()  {}
func (Border) textPart()     {}
func (FontSize) textPart()   {}
func (Position) textPart()   {}
func (Fill) textPart()       {}
func (Alpha) textPart()      {}
func (LineBreak) textPart()  {}
func (SmartBreak) textPart() {}
