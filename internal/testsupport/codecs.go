package testsupport

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"mediabox/internal/codec"
	"mediabox/internal/media"
	"mediabox/internal/span"
)

// ErrScripted is returned by fakes configured to fail.
var ErrScripted = errors.New("scripted failure")

// Decoder is a scripted codec.Decoder. OnFeed maps each packet to the units
// the decoder should buffer; the default emits one cue holding the packet
// payload as text. With Hold set, units stay buffered until Flush.
type Decoder struct {
	OnFeed   func(pkt media.Packet) ([]codec.Decoded, error)
	StartErr error
	FlushErr error
	Delay    time.Duration
	Hold     bool

	mu      sync.Mutex
	pending []codec.Decoded
	held    []codec.Decoded
	started bool
	feeds   int

	active    atomic.Int32
	maxActive atomic.Int32
}

func (d *Decoder) Start(media.MediaInfo) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.StartErr != nil {
		return d.StartErr
	}
	d.started = true
	return nil
}

func (d *Decoder) Feed(pkt media.Packet) error {
	n := d.active.Add(1)
	defer d.active.Add(-1)
	for {
		peak := d.maxActive.Load()
		if n <= peak || d.maxActive.CompareAndSwap(peak, n) {
			break
		}
	}
	if d.Delay > 0 {
		time.Sleep(d.Delay)
	}

	var units []codec.Decoded
	var err error
	if d.OnFeed != nil {
		units, err = d.OnFeed(pkt)
	} else {
		units = []codec.Decoded{CueFromPacket(pkt)}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.feeds++
	if err != nil {
		return err
	}
	if d.Hold {
		d.held = append(d.held, units...)
		return nil
	}
	d.pending = append(d.pending, units...)
	return nil
}

func (d *Decoder) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FlushErr != nil {
		return d.FlushErr
	}
	d.pending = append(d.pending, d.held...)
	d.held = nil
	return nil
}

func (d *Decoder) Receive() (codec.Decoded, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.pending) == 0 {
		return nil, false
	}
	unit := d.pending[0]
	d.pending = d.pending[1:]
	return unit, true
}

// Feeds reports how many packets were fed.
func (d *Decoder) Feeds() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.feeds
}

// Started reports whether Start succeeded.
func (d *Decoder) Started() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.started
}

// MaxConcurrentFeeds reports the highest number of overlapping Feed calls.
func (d *Decoder) MaxConcurrentFeeds() int {
	return int(d.maxActive.Load())
}

// Encoder is a scripted codec.Encoder. OnFeed maps each unit to the packets
// it produces; the default emits one packet per cue with the cue's plain
// text as payload and a placeholder track id of 0xFFFF.
type Encoder struct {
	OnFeed   func(unit codec.Decoded) ([]media.Packet, error)
	StartErr error
	Info     media.MediaInfo

	mu      sync.Mutex
	pending []media.Packet
	fed     []codec.Decoded
}

func (e *Encoder) Start(codec.Description) (media.MediaInfo, error) {
	if e.StartErr != nil {
		return media.MediaInfo{}, e.StartErr
	}
	return e.Info, nil
}

func (e *Encoder) Feed(unit codec.Decoded) error {
	var pkts []media.Packet
	var err error
	if e.OnFeed != nil {
		pkts, err = e.OnFeed(unit)
	} else {
		pkts = []media.Packet{PacketFromUnit(unit)}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.fed = append(e.fed, unit)
	if err != nil {
		return err
	}
	e.pending = append(e.pending, pkts...)
	return nil
}

func (e *Encoder) Receive() (media.Packet, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pending) == 0 {
		return media.Packet{}, false
	}
	pkt := e.pending[0]
	e.pending = e.pending[1:]
	return pkt, true
}

// Fed returns the units the encoder has accepted.
func (e *Encoder) Fed() []codec.Decoded {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]codec.Decoded, len(e.fed))
	copy(out, e.fed)
	return out
}

// CueFromPacket builds a default-style cue carrying the packet payload.
func CueFromPacket(pkt media.Packet) *media.TextCue {
	return &media.TextCue{
		Time:  pkt.Time,
		Style: media.DefaultStyleName,
		Text:  []media.TextPart{media.Text(pkt.Data.String())},
	}
}

// PacketFromUnit renders a cue's plain text into a packet tagged 0xFFFF.
func PacketFromUnit(unit codec.Decoded) media.Packet {
	pkt := media.Packet{TrackID: 0xFFFF}
	if cue, ok := unit.(*media.TextCue); ok {
		pkt.Time = cue.Time
		pkt.Data = span.FromString(cue.PlainText())
	}
	return pkt
}

// TextPacket builds a packet for track id with text payload.
func TextPacket(id uint32, text string) media.Packet {
	return media.Packet{TrackID: id, Data: span.FromString(text)}
}
