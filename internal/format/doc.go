// Package format defines the demuxer and muxer contracts container plugins
// implement, plus the probe scores demuxers use to claim a byte stream.
package format
