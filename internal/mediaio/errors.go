package mediaio

import "errors"

var (
	// ErrNotReadable reports a read-path operation on an IO without a reader.
	ErrNotReadable = errors.New("stream is not readable")
	// ErrNotWriteable reports a write-path operation on an IO without a writer.
	ErrNotWriteable = errors.New("stream is not writeable")
	// ErrNotSeekable reports a seek against a forward-only resource.
	ErrNotSeekable = errors.New("stream is not seekable")
	// ErrUnsupportedScheme reports a URI whose scheme has no local handler.
	ErrUnsupportedScheme = errors.New("unsupported URI scheme")
	// ErrURIParse reports a malformed URI or path.
	ErrURIParse = errors.New("failed to parse URI")
)
