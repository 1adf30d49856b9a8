// Package codec defines the contracts decoder and encoder plugins implement
// and the descriptors they register under.
//
// A decoder turns a track's packets into Decoded units (for subtitles,
// *media.TextCue); an encoder turns Decoded units back into packets for an
// output track. Both are synchronous and may buffer: Feed accepts one input
// and Receive is called until it reports nothing left. Implementations are
// handed between goroutines by the transcoding pipeline but are never used
// by two goroutines at once.
package codec
