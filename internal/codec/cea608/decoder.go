package cea608

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zsiec/ccx"

	"mediabox/internal/codec"
	"mediabox/internal/media"
	"mediabox/internal/registry"
)

// Name is the codec name CEA-608 tracks are registered under.
const Name = "cea608"

// ErrOddPayload is returned for payloads that do not split into byte pairs.
var ErrOddPayload = errors.New("cea608 payload is not a whole number of byte pairs")

// Miscellaneous control codes that end the caption on screen.
const (
	codeEDM = 0x2C
	codeCR  = 0x2D
	codeEOC = 0x2F
)

// Decoder is a CEA-608 decoder for one caption channel.
//
// The caption state machine reports the whole display after every change,
// so a roll-up line arrives once per character pair. The decoder folds those
// updates into one cue that is closed by the next CR, EOC or EDM, or by
// Flush at the end of the stream.
type Decoder struct {
	decode  func(cc1, cc2 byte) string
	pending []*media.TextCue

	lastControl [2]byte
	wasControl  bool

	// display mirrors the decoder's visible rows; keep is the number of
	// leading rows already emitted by an earlier cue.
	display string
	keep    int

	open  string
	since media.MediaTime
}

// NewDecoder returns an unstarted decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

func (d *Decoder) Start(info media.MediaInfo) error {
	if info.Subtitle == nil {
		return fmt.Errorf("cea608 decoder: codec info does not describe a subtitle track")
	}
	*d = Decoder{decode: ccx.NewCEA608Decoder().Decode}
	return nil
}

func (d *Decoder) Feed(pkt media.Packet) error {
	if d.decode == nil {
		return fmt.Errorf("cea608 decoder: feed before start")
	}
	data := pkt.Data.Bytes()
	if len(data)%2 != 0 {
		return fmt.Errorf("%w: %d bytes", ErrOddPayload, len(data))
	}
	for i := 0; i < len(data); i += 2 {
		// Bit 7 is odd parity.
		cc1, cc2 := data[i]&0x7F, data[i+1]&0x7F
		if cc1 == 0 && cc2 == 0 {
			continue
		}
		d.pair(cc1, cc2, pkt.Time)
	}
	return nil
}

func (d *Decoder) pair(cc1, cc2 byte, at media.MediaTime) {
	control := cc1 >= 0x10 && cc1 <= 0x1F
	repeat := control && d.wasControl && [2]byte{cc1, cc2} == d.lastControl
	switch {
	case repeat:
		d.wasControl = false
	case control:
		d.lastControl = [2]byte{cc1, cc2}
		d.wasControl = true
	case cc1 >= 0x20:
		d.wasControl = false
	}

	text := d.decode(cc1, cc2)
	if text != "" {
		d.display = text
	}

	code, misc := miscControl(cc1, cc2)
	if repeat || !misc || (code != codeEDM && code != codeCR && code != codeEOC) {
		if text != "" {
			d.update(at)
		}
		return
	}

	d.close(at)
	switch code {
	case codeEDM:
		d.display = ""
		d.keep = 0
	case codeEOC:
		d.keep = 0
	case codeCR:
		d.keep = len(rows(d.display))
	}
	d.update(at)
}

// miscControl reports the miscellaneous control code of a pair on either
// data channel.
func miscControl(cc1, cc2 byte) (byte, bool) {
	switch cc1 {
	case 0x14, 0x15, 0x1C, 0x1D:
		return cc2, cc2 >= 0x20 && cc2 <= 0x2F
	}
	return 0, false
}

// update makes the rows not yet emitted the open cue, starting it at at.
func (d *Decoder) update(at media.MediaTime) {
	lines := rows(d.display)
	if d.keep > len(lines) {
		d.keep = len(lines)
	}
	text := strings.Join(lines[d.keep:], "\n")
	if text != "" && d.open == "" {
		d.since = at
	}
	d.open = text
}

// close emits the open cue, ending it at end.
func (d *Decoder) close(end media.MediaTime) {
	if d.open == "" {
		return
	}
	t := d.since
	t.Duration = 0
	if end.Timebase != t.Timebase {
		end = end.Rescale(t.Timebase)
	}
	if end.Pts > t.Pts {
		t.Duration = end.Pts - t.Pts
	}
	d.pending = append(d.pending, &media.TextCue{
		Time:  t,
		Style: media.DefaultStyleName,
		Text:  textParts(d.open),
	})
	d.open = ""
}

// Flush emits the caption still on screen. It has no end, so the cue ends
// where it starts.
func (d *Decoder) Flush() error {
	if d.decode == nil {
		return nil
	}
	d.close(d.since)
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

func rows(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func textParts(text string) []media.TextPart {
	lines := strings.Split(text, "\n")
	parts := make([]media.TextPart, 0, 2*len(lines))
	for i, line := range lines {
		if i > 0 {
			parts = append(parts, media.LineBreak{})
		}
		parts = append(parts, media.Text(line))
	}
	return parts
}

// Info returns the codec info of a CEA-608 caption track.
func Info() media.MediaInfo {
	return media.MediaInfo{
		Name:     Name,
		Subtitle: &media.SubtitleInfo{Codec: media.SubtitleCodec{Format: media.SubtitleCEA608}},
	}
}

// Register adds the CEA-608 decoder to reg. There is no encoder.
func Register(reg *registry.Registry) error {
	return reg.RegisterDecoder(codec.DecoderDescriptor{
		Name:   Name,
		Create: func() codec.Decoder { return NewDecoder() },
	})
}
