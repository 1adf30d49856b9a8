package mediaio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"

	"mediabox/internal/span"
)

const defaultBufferSize = 8 << 10

// Mode describes how a reader or writer may be positioned.
type Mode int

const (
	// ModeSeekable supports random access.
	ModeSeekable Mode = iota + 1
	// ModeStream is forward-only.
	ModeStream
)

func (m Mode) String() string {
	switch m {
	case ModeSeekable:
		return "seekable"
	case ModeStream:
		return "stream"
	default:
		return "none"
	}
}

type reader struct {
	mode   Mode
	src    io.Reader
	buf    *bufio.Reader
	seeker io.Seeker
	closer io.Closer
}

type writer struct {
	mode   Mode
	dst    io.Writer
	seeker io.Seeker
	closer io.Closer
}

// IO is a single media resource. It is owned by one caller at a time and is
// not safe for concurrent use.
type IO struct {
	uri    string
	reader *reader
	writer *writer
}

// Null returns an IO with neither a reader nor a writer attached.
func Null() *IO {
	return &IO{}
}

// FromStream wraps a sequential sink. The resulting writer never seeks, even
// when w happens to implement io.Seeker.
func FromStream(w io.Writer) *IO {
	return &IO{writer: &writer{mode: ModeStream, dst: w}}
}

// FromReader wraps a sequential source behind a buffering layer.
func FromReader(r io.Reader) *IO {
	return &IO{reader: newReader(ModeStream, r, nil, nil)}
}

// FromWriteSeeker wraps an in-memory or otherwise seekable sink.
func FromWriteSeeker(ws io.WriteSeeker) *IO {
	return &IO{writer: &writer{mode: ModeSeekable, dst: ws, seeker: ws}}
}

// FromReadSeeker wraps a seekable source behind a buffering layer.
func FromReadSeeker(rs io.ReadSeeker) *IO {
	return &IO{reader: newReader(ModeSeekable, rs, rs, nil)}
}

func newReader(mode Mode, src io.Reader, seeker io.Seeker, closer io.Closer) *reader {
	return &reader{
		mode:   mode,
		src:    src,
		buf:    bufio.NewReaderSize(src, defaultBufferSize),
		seeker: seeker,
		closer: closer,
	}
}

// URI returns the resource location, or an empty string for wrapped streams.
func (m *IO) URI() string {
	return m.uri
}

// ReaderMode reports the reader's mode, or zero when no reader is attached.
func (m *IO) ReaderMode() Mode {
	if m.reader == nil {
		return 0
	}
	return m.reader.mode
}

// WriterMode reports the writer's mode, or zero when no writer is attached.
func (m *IO) WriterMode() Mode {
	if m.writer == nil {
		return 0
	}
	return m.writer.mode
}

// Write writes all of p or returns an error.
func (m *IO) Write(ctx context.Context, p []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.writer == nil {
		return ErrNotWriteable
	}
	for len(p) > 0 {
		n, err := m.writer.dst.Write(p)
		if err != nil {
			return fmt.Errorf("write: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("write: %w", io.ErrShortWrite)
		}
		p = p[n:]
	}
	return nil
}

// WriteSpan writes every fragment of s in order.
func (m *IO) WriteSpan(ctx context.Context, s span.Span) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.writer == nil {
		return ErrNotWriteable
	}
	n, err := s.WriteTo(m.writer.dst)
	if err != nil {
		return fmt.Errorf("write span: %w", err)
	}
	if n != int64(s.Len()) {
		return fmt.Errorf("write span: %w", io.ErrShortWrite)
	}
	return nil
}

// Reader exposes the buffered reader so demuxers can scan lines or records.
// Reads through it advance the same cursor as ReadExact and Skip.
func (m *IO) Reader() (*bufio.Reader, error) {
	if m.reader == nil {
		return nil, ErrNotReadable
	}
	return m.reader.buf, nil
}

// ReadExact fills buf completely. A source that runs dry first yields an
// error wrapping io.ErrUnexpectedEOF (or io.EOF when nothing was read).
func (m *IO) ReadExact(ctx context.Context, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.reader == nil {
		return ErrNotReadable
	}
	if _, err := io.ReadFull(m.reader.buf, buf); err != nil {
		return fmt.Errorf("read exact: %w", err)
	}
	return nil
}

// ReadProbe returns the buffered but unconsumed bytes without advancing the
// read cursor. When nothing is buffered it performs one fill of the
// underlying source. The returned slice is only valid until the next read.
func (m *IO) ReadProbe(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.reader == nil {
		return nil, ErrNotReadable
	}
	buf := m.reader.buf
	if buf.Buffered() == 0 {
		if _, err := buf.Peek(1); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read probe: %w", err)
		}
	}
	data, err := buf.Peek(buf.Buffered())
	if err != nil {
		return nil, fmt.Errorf("read probe: %w", err)
	}
	return data, nil
}

// Skip advances the read cursor by n bytes. Seekable readers seek past
// whatever is not already buffered; stream readers discard exactly n bytes.
func (m *IO) Skip(ctx context.Context, n int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.reader == nil {
		return ErrNotReadable
	}
	if n < 0 {
		return fmt.Errorf("skip: negative count %d", n)
	}
	r := m.reader
	buffered := int64(r.buf.Buffered())
	if r.seeker == nil || n <= buffered {
		discarded, err := io.CopyN(io.Discard, r.buf, n)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("skip %d bytes (discarded %d): %w", n, discarded, err)
		}
		return nil
	}
	if _, err := r.seeker.Seek(n-buffered, io.SeekCurrent); err != nil {
		return fmt.Errorf("skip: %w", err)
	}
	r.buf.Reset(r.src)
	return nil
}

// Seek moves the writer's cursor when a writer is attached, and the reader's
// cursor otherwise. It fails with ErrNotSeekable for stream resources.
func (m *IO) Seek(ctx context.Context, offset int64, whence int) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	switch {
	case m.writer != nil:
		if m.writer.seeker == nil {
			return 0, ErrNotSeekable
		}
		pos, err := m.writer.seeker.Seek(offset, whence)
		if err != nil {
			return 0, fmt.Errorf("seek: %w", err)
		}
		return pos, nil
	case m.reader != nil:
		r := m.reader
		if r.seeker == nil {
			return 0, ErrNotSeekable
		}
		if whence == io.SeekCurrent {
			// The underlying cursor is ahead of the logical one by the
			// buffered amount.
			offset -= int64(r.buf.Buffered())
		}
		pos, err := r.seeker.Seek(offset, whence)
		if err != nil {
			return 0, fmt.Errorf("seek: %w", err)
		}
		r.buf.Reset(r.src)
		return pos, nil
	default:
		return 0, ErrNotSeekable
	}
}

// Seekable reports whether Seek would succeed on the side it targets.
func (m *IO) Seekable() bool {
	if m.writer != nil {
		return m.writer.mode == ModeSeekable
	}
	if m.reader != nil {
		return m.reader.mode == ModeSeekable
	}
	return false
}

// TakeWriter detaches and returns the underlying sink. The IO no longer
// writes or closes it afterwards; a second call fails with ErrNotWriteable.
func (m *IO) TakeWriter() (io.Writer, error) {
	if m.writer == nil {
		return nil, ErrNotWriteable
	}
	w := m.writer.dst
	m.writer = nil
	return w, nil
}

// IntoWriter takes the underlying sink as the concrete type T. Asking for a
// type other than the one the IO was built with is a programming error and
// panics.
func IntoWriter[T any](m *IO) (T, error) {
	var zero T
	w, err := m.TakeWriter()
	if err != nil {
		return zero, err
	}
	typed, ok := w.(T)
	if !ok {
		panic(fmt.Sprintf("mediaio: writer is %T, not %v", w, reflect.TypeFor[T]()))
	}
	return typed, nil
}

// Close releases files owned by the IO. Wrapped streams are left open.
func (m *IO) Close() error {
	var errs []error
	if m.writer != nil && m.writer.closer != nil {
		errs = append(errs, m.writer.closer.Close())
		m.writer.closer = nil
	}
	if m.reader != nil && m.reader.closer != nil {
		errs = append(errs, m.reader.closer.Close())
		m.reader.closer = nil
	}
	return errors.Join(errs...)
}
