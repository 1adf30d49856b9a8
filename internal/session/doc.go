// Package session runs one end-to-end conversion: probe and demux the input,
// transcode the selected tracks, and mux the result into the output.
//
// Demuxing and transcoding share one goroutine; muxing runs on another, fed
// through a bounded channel. The two are tied together with an errgroup so a
// failure on either side cancels the other. Each run gets a session id that
// is attached to every log line and returned in the Summary.
package session
