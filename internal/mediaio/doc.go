// Package mediaio hides whether a media resource is seekable or forward-only.
//
// An IO owns at most one reader and at most one writer. Each side is fixed
// at construction as either seekable (local files, in-memory seekers) or
// stream (sockets, pipes, arbitrary io.Writer/io.Reader values). Readers are
// always wrapped in a buffering layer so demuxers can sniff content with
// ReadProbe without consuming it.
//
// Errors are reported with the sentinel values in errors.go; underlying
// operating system failures are wrapped so callers can still match them with
// errors.Is (for example fs.ErrNotExist).
package mediaio
