// Package webvtt registers the WebVTT text subtitle codec.
package webvtt

import (
	"mediabox/internal/codec/textsub"
	"mediabox/internal/media"
	"mediabox/internal/registry"
)

// Name is the codec name WebVTT tracks are registered under.
const Name = "webvtt"

// Header is the signature every WebVTT file starts with.
const Header = "WEBVTT"

// Dialect is the WebVTT payload markup: entity-escaped text with <i>, <u>
// and <s> tags. Class, voice and timestamp tags are dropped on decode.
var Dialect = textsub.Dialect{
	Name:   Name,
	Format: media.SubtitleWebVTT,
	Header: Header,
	Render: textsub.RenderOptions{Escape: true},
}

// Register adds the WebVTT decoder and encoder to reg.
func Register(reg *registry.Registry) error {
	return textsub.Register(reg, Dialect)
}
