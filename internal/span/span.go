package span

import (
	"io"
	"iter"
	"net"
)

// Span is an ordered sequence of byte buffers treated as one logical byte
// range. The zero value is an empty span. A Span is never mutated after
// construction; callers must not modify the buffers they passed to New.
type Span struct {
	parts [][]byte
	size  int
}

// New builds a span over the provided buffers in order. Empty buffers are
// dropped.
func New(parts ...[]byte) Span {
	kept := make([][]byte, 0, len(parts))
	size := 0
	for _, part := range parts {
		if len(part) == 0 {
			continue
		}
		kept = append(kept, part)
		size += len(part)
	}
	return Span{parts: kept, size: size}
}

// FromString builds a single-fragment span holding s.
func FromString(s string) Span {
	return New([]byte(s))
}

// Spans yields each contiguous fragment in original order. The sequence can
// be ranged over any number of times.
func (s Span) Spans() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for _, part := range s.parts {
			if !yield(part) {
				return
			}
		}
	}
}

// Len returns the total number of bytes across all fragments.
func (s Span) Len() int {
	return s.size
}

// Fragments reports how many contiguous buffers back the span.
func (s Span) Fragments() int {
	return len(s.parts)
}

// Bytes returns the span contents as one contiguous slice. A single-fragment
// span returns its buffer without copying.
func (s Span) Bytes() []byte {
	switch len(s.parts) {
	case 0:
		return nil
	case 1:
		return s.parts[0]
	}
	out := make([]byte, 0, s.size)
	for _, part := range s.parts {
		out = append(out, part...)
	}
	return out
}

// String returns the span contents as a string.
func (s Span) String() string {
	return string(s.Bytes())
}

// WriteTo writes every fragment to w. Writers backed by a network
// connection receive a single vectored write.
func (s Span) WriteTo(w io.Writer) (int64, error) {
	if len(s.parts) == 0 {
		return 0, nil
	}
	// net.Buffers consumes its receiver; hand it a copy of the slice header.
	bufs := make(net.Buffers, len(s.parts))
	copy(bufs, s.parts)
	return bufs.WriteTo(w)
}
