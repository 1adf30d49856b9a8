// Package transcode drives packets through per-track decode and encode
// state.
//
// A Transcoder holds one Transcode value per track id. Processing a packet
// takes the track's state out of the map, runs the codec work on a bounded
// worker goroutine, and puts the state back once the work succeeds. While a
// state is checked out, further packets for that track pass through
// untouched, exactly as packets for tracks that were never mapped. A state
// whose codec work fails is dropped and the track passes through from then
// on.
//
// Emitted packets keep decoder output order and, within one decoded unit,
// encoder output order. They are not re-sorted by decode timestamp.
package transcode
