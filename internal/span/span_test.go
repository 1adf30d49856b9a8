package span_test

import (
	"bytes"
	"testing"

	"mediabox/internal/span"
)

func TestSpansPreservesOrderAndRestarts(t *testing.T) {
	s := span.New([]byte("a"), []byte("bc"), nil, []byte("d"))

	for pass := 0; pass < 2; pass++ {
		var got []string
		for part := range s.Spans() {
			got = append(got, string(part))
		}
		if len(got) != 3 || got[0] != "a" || got[1] != "bc" || got[2] != "d" {
			t.Fatalf("pass %d: unexpected fragments %q", pass, got)
		}
	}
	if s.Len() != 4 {
		t.Fatalf("expected len 4, got %d", s.Len())
	}
	if s.Fragments() != 3 {
		t.Fatalf("expected empty fragment to be dropped, got %d fragments", s.Fragments())
	}
}

func TestSpansStopsEarly(t *testing.T) {
	s := span.New([]byte("a"), []byte("b"), []byte("c"))
	count := 0
	for range s.Spans() {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Fatalf("expected early break after 2 fragments, got %d", count)
	}
}

func TestBytesAndWriteTo(t *testing.T) {
	tests := []struct {
		name  string
		parts [][]byte
		want  string
	}{
		{name: "single", parts: [][]byte{[]byte("abc")}, want: "abc"},
		{name: "split", parts: [][]byte{[]byte("a"), []byte("b"), []byte("c")}, want: "abc"},
		{name: "empty", parts: nil, want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := span.New(tc.parts...)
			if got := s.String(); got != tc.want {
				t.Fatalf("String() = %q, want %q", got, tc.want)
			}
			var buf bytes.Buffer
			n, err := s.WriteTo(&buf)
			if err != nil {
				t.Fatalf("WriteTo returned error: %v", err)
			}
			if int(n) != len(tc.want) || buf.String() != tc.want {
				t.Fatalf("WriteTo wrote %d bytes %q, want %q", n, buf.String(), tc.want)
			}
			// WriteTo must not consume the span.
			if s.String() != tc.want {
				t.Fatalf("span changed after WriteTo: %q", s.String())
			}
		})
	}
}
