// Package srt registers the SubRip text subtitle codec.
package srt

import (
	"mediabox/internal/codec/textsub"
	"mediabox/internal/media"
	"mediabox/internal/registry"
)

// Name is the codec name SRT tracks are registered under.
const Name = "srt"

// Dialect is the SubRip payload markup: unescaped text with <i>, <u>, <s>
// and <font color> tags.
var Dialect = textsub.Dialect{
	Name:   Name,
	Format: media.SubtitleSRT,
	Render: textsub.RenderOptions{FontColor: true},
}

// Register adds the SRT decoder and encoder to reg.
func Register(reg *registry.Registry) error {
	return textsub.Register(reg, Dialect)
}
