// Package media defines the in-memory interchange types shared by demuxers,
// codecs, the transcoding pipeline and muxers.
//
// Key types:
//   - Track: a numerically identified stream plus its MediaInfo
//   - Packet: a timestamped span of encoded data tagged with a track id
//   - MediaTime / Fraction: exact timestamps and rates
//   - TextCue / TextPart / SubtitleDescription: the decoded subtitle model
//     every subtitle encoder consumes, whichever decoder produced it
//
// Timing arithmetic always uses Fraction pairs; Decimal exists for display
// and estimates only.
package media
