package registry

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"mediabox/internal/codec"
	"mediabox/internal/format"
	"mediabox/internal/media"
)

var (
	ErrNoDecoder         = errors.New("no such decoder")
	ErrNoEncoder         = errors.New("no such encoder")
	ErrNoDemuxer         = errors.New("no demuxer found")
	ErrNoMuxer           = errors.New("no such muxer")
	ErrFrozen            = errors.New("registry is frozen")
	ErrDuplicate         = errors.New("descriptor already registered")
	ErrInvalidDescriptor = errors.New("invalid descriptor")
)

// Registry is an append-only set of plugin descriptors with a
// populate-then-freeze lifecycle. Registration must happen from a single
// goroutine before the registry is shared.
type Registry struct {
	frozen   atomic.Bool
	decoders []codec.DecoderDescriptor
	encoders []codec.EncoderDescriptor
	demuxers []format.DemuxerDescriptor
	muxers   []format.MuxerDescriptor
}

// New returns an empty, unfrozen registry.
func New() *Registry {
	return &Registry{}
}

// Freeze ends the registration phase. It is idempotent.
func (r *Registry) Freeze() {
	r.frozen.Store(true)
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// RegisterDecoder appends a decoder descriptor.
func (r *Registry) RegisterDecoder(d codec.DecoderDescriptor) error {
	if err := r.checkRegistration("decoder", d.Name, d.Create != nil); err != nil {
		return err
	}
	if containsName(r.decoders, d.Name, decoderName) {
		return fmt.Errorf("decoder %q: %w", d.Name, ErrDuplicate)
	}
	r.decoders = append(r.decoders, d)
	return nil
}

// RegisterEncoder appends an encoder descriptor.
func (r *Registry) RegisterEncoder(d codec.EncoderDescriptor) error {
	if err := r.checkRegistration("encoder", d.Name, d.Create != nil); err != nil {
		return err
	}
	if containsName(r.encoders, d.Name, encoderName) {
		return fmt.Errorf("encoder %q: %w", d.Name, ErrDuplicate)
	}
	r.encoders = append(r.encoders, d)
	return nil
}

// RegisterDemuxer appends a demuxer descriptor. Its position in the
// registration order breaks probe ties.
func (r *Registry) RegisterDemuxer(d format.DemuxerDescriptor) error {
	if err := r.checkRegistration("demuxer", d.Name, d.Create != nil && d.Probe != nil); err != nil {
		return err
	}
	if containsName(r.demuxers, d.Name, demuxerName) {
		return fmt.Errorf("demuxer %q: %w", d.Name, ErrDuplicate)
	}
	r.demuxers = append(r.demuxers, d)
	return nil
}

// RegisterMuxer appends a muxer descriptor.
func (r *Registry) RegisterMuxer(d format.MuxerDescriptor) error {
	if err := r.checkRegistration("muxer", d.Name, d.Create != nil); err != nil {
		return err
	}
	if containsName(r.muxers, d.Name, muxerName) {
		return fmt.Errorf("muxer %q: %w", d.Name, ErrDuplicate)
	}
	r.muxers = append(r.muxers, d)
	return nil
}

func (r *Registry) checkRegistration(kind, name string, complete bool) error {
	if r.Frozen() {
		return fmt.Errorf("register %s %q: %w", kind, name, ErrFrozen)
	}
	if strings.TrimSpace(name) == "" || !complete {
		return fmt.Errorf("register %s %q: %w", kind, name, ErrInvalidDescriptor)
	}
	return nil
}

// Decoder returns the first decoder registered under name.
func (r *Registry) Decoder(name string) (codec.DecoderDescriptor, error) {
	d, ok := findName(r.decoders, name, decoderName)
	if !ok {
		return d, fmt.Errorf("%w: %q", ErrNoDecoder, name)
	}
	return d, nil
}

// Encoder returns the first encoder registered under name.
func (r *Registry) Encoder(name string) (codec.EncoderDescriptor, error) {
	e, ok := findName(r.encoders, name, encoderName)
	if !ok {
		return e, fmt.Errorf("%w: %q", ErrNoEncoder, name)
	}
	return e, nil
}

// Demuxer returns the first demuxer registered under name, for callers that
// know the format out of band.
func (r *Registry) Demuxer(name string) (format.DemuxerDescriptor, error) {
	d, ok := findName(r.demuxers, name, demuxerName)
	if !ok {
		return d, fmt.Errorf("%w: %q", ErrNoDemuxer, name)
	}
	return d, nil
}

// Muxer returns the first muxer registered under name.
func (r *Registry) Muxer(name string) (format.MuxerDescriptor, error) {
	m, ok := findName(r.muxers, name, muxerName)
	if !ok {
		return m, fmt.Errorf("%w: %q", ErrNoMuxer, name)
	}
	return m, nil
}

// MuxerForExtension returns the first muxer claiming ext (".vtt").
func (r *Registry) MuxerForExtension(ext string) (format.MuxerDescriptor, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	for _, m := range r.muxers {
		if slices.Contains(m.Extensions, ext) {
			return m, nil
		}
	}
	return format.MuxerDescriptor{}, fmt.Errorf("%w for extension %q", ErrNoMuxer, ext)
}

// Decoders lists decoder descriptors in registration order.
func (r *Registry) Decoders() []codec.DecoderDescriptor { return slices.Clone(r.decoders) }

// Encoders lists encoder descriptors in registration order.
func (r *Registry) Encoders() []codec.EncoderDescriptor { return slices.Clone(r.encoders) }

// Demuxers lists demuxer descriptors in registration order.
func (r *Registry) Demuxers() []format.DemuxerDescriptor { return slices.Clone(r.demuxers) }

// Muxers lists muxer descriptors in registration order.
func (r *Registry) Muxers() []format.MuxerDescriptor { return slices.Clone(r.muxers) }

// DecoderForTrack creates the decoder named by the track's codec and starts
// it with the track's codec info.
func (r *Registry) DecoderForTrack(track media.Track) (codec.Decoder, error) {
	desc, err := r.Decoder(track.Info.Name)
	if err != nil {
		return nil, fmt.Errorf("track %d: %w", track.ID, err)
	}
	dec := desc.New()
	if err := dec.Start(track.Info); err != nil {
		return nil, fmt.Errorf("start decoder %q for track %d: %w", desc.Name, track.ID, err)
	}
	return dec, nil
}

// EncoderWithParams creates the named encoder and starts it with desc. A nil
// desc starts the encoder with an empty subtitle style sheet. The returned
// MediaInfo describes the encoder's output track.
func (r *Registry) EncoderWithParams(name string, desc codec.Description) (codec.Encoder, media.MediaInfo, error) {
	entry, err := r.Encoder(name)
	if err != nil {
		return nil, media.MediaInfo{}, err
	}
	if desc == nil {
		desc = media.SubtitleDescription{}
	}
	enc := entry.New()
	info, err := enc.Start(desc)
	if err != nil {
		return nil, media.MediaInfo{}, fmt.Errorf("start encoder %q: %w", name, err)
	}
	return enc, info, nil
}

func decoderName(d codec.DecoderDescriptor) string  { return d.Name }
func encoderName(e codec.EncoderDescriptor) string  { return e.Name }
func demuxerName(d format.DemuxerDescriptor) string { return d.Name }
func muxerName(m format.MuxerDescriptor) string     { return m.Name }

func findName[T any](items []T, name string, nameOf func(T) string) (T, bool) {
	for _, item := range items {
		if nameOf(item) == name {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func containsName[T any](items []T, name string, nameOf func(T) string) bool {
	_, ok := findName(items, name, nameOf)
	return ok
}
