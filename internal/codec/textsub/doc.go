// Package textsub implements the decoder and encoder shared by the
// line-oriented text subtitle codecs (SRT and WebVTT).
//
// Both formats carry cue payloads as lightly tagged text. A Dialect names
// the codec and selects which tags and escapes apply; the markup parser and
// renderer convert between payload text and media.TextPart sequences.
package textsub
