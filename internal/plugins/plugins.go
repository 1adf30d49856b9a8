// Package plugins registers every compiled-in codec and container.
package plugins

import (
	"fmt"

	"mediabox/internal/codec/cea608"
	srtcodec "mediabox/internal/codec/srt"
	vttcodec "mediabox/internal/codec/webvtt"
	"mediabox/internal/format/scc"
	"mediabox/internal/format/srt"
	"mediabox/internal/format/webvtt"
	"mediabox/internal/registry"
)

type registration struct {
	name     string
	register func(*registry.Registry) error
}

// Order matters: probe ties resolve to the earlier demuxer.
var all = []registration{
	{name: "format/webvtt", register: webvtt.Register},
	{name: "format/srt", register: srt.Register},
	{name: "format/scc", register: scc.Register},
	{name: "codec/srt", register: srtcodec.Register},
	{name: "codec/webvtt", register: vttcodec.Register},
	{name: "codec/cea608", register: cea608.Register},
}

// RegisterAll registers every plugin with r in a fixed order.
func RegisterAll(r *registry.Registry) error {
	for _, p := range all {
		if err := p.register(r); err != nil {
			return fmt.Errorf("register %s: %w", p.name, err)
		}
	}
	return nil
}

// NewRegistry returns a frozen registry holding every plugin.
func NewRegistry() (*registry.Registry, error) {
	r := registry.New()
	if err := RegisterAll(r); err != nil {
		return nil, err
	}
	r.Freeze()
	return r, nil
}
