// Package cuefile holds the line and timestamp handling shared by the
// SRT and WebVTT containers.
package cuefile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ErrMalformed marks input that does not follow the cue file grammar.
var ErrMalformed = errors.New("malformed cue file")

const bom = "\ufeff"

// LineReader reads newline-terminated lines, dropping a leading byte order
// mark and trailing carriage returns.
type LineReader struct {
	r       *bufio.Reader
	line    int
	peeked  *string
	started bool
}

// NewLineReader wraps r.
func NewLineReader(r *bufio.Reader) *LineReader {
	return &LineReader{r: r}
}

// Line reports the 1-based number of the last line returned.
func (l *LineReader) Line() int {
	return l.line
}

// Next returns the next line. It returns io.EOF once the input is exhausted;
// a final line without a newline is returned before that.
func (l *LineReader) Next() (string, error) {
	if l.peeked != nil {
		s := *l.peeked
		l.peeked = nil
		l.line++
		return s, nil
	}
	s, err := l.read()
	if err != nil {
		return "", err
	}
	l.line++
	return s, nil
}

// Peek returns the next line without consuming it.
func (l *LineReader) Peek() (string, error) {
	if l.peeked != nil {
		return *l.peeked, nil
	}
	s, err := l.read()
	if err != nil {
		return "", err
	}
	l.peeked = &s
	return s, nil
}

func (l *LineReader) read() (string, error) {
	s, err := l.r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || s == "") {
		return "", err
	}
	if !l.started {
		l.started = true
		s = strings.TrimPrefix(s, bom)
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// SkipBlank consumes blank lines and reports the next non-blank one without
// consuming it.
func (l *LineReader) SkipBlank() (string, error) {
	for {
		s, err := l.Peek()
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(s) != "" {
			return s, nil
		}
		if _, err := l.Next(); err != nil {
			return "", err
		}
	}
}

// ReadPayload collects lines up to the next blank line or end of input.
func (l *LineReader) ReadPayload() (string, error) {
	var lines []string
	for {
		s, err := l.Peek()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(s) == "" {
			break
		}
		_, _ = l.Next()
		lines = append(lines, s)
	}
	return strings.Join(lines, "\n"), nil
}

// Lines splits data into lines for probing, dropping a byte order mark and
// any final partial line when data does not end in a newline and more than
// one line is present.
func Lines(data []byte) []string {
	text := strings.TrimPrefix(string(data), bom)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > 1 && !strings.HasSuffix(text, "\n") {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Timing is a parsed "start --> end [settings]" line.
type Timing struct {
	Start    time.Duration
	End      time.Duration
	Settings string
}

// ParseTiming parses a cue timing line.
func ParseTiming(line string) (Timing, error) {
	left, right, ok := strings.Cut(line, "-->")
	if !ok {
		return Timing{}, fmt.Errorf("%w: missing --> in %q", ErrMalformed, line)
	}
	start, err := ParseTimestamp(left)
	if err != nil {
		return Timing{}, err
	}
	fields := strings.Fields(right)
	if len(fields) == 0 {
		return Timing{}, fmt.Errorf("%w: missing end time in %q", ErrMalformed, line)
	}
	end, err := ParseTimestamp(fields[0])
	if err != nil {
		return Timing{}, err
	}
	if end < start {
		return Timing{}, fmt.Errorf("%w: end %s before start %s", ErrMalformed, end, start)
	}
	return Timing{Start: start, End: end, Settings: strings.Join(fields[1:], " ")}, nil
}

// ParseTimestamp accepts hh:mm:ss,mmm, hh:mm:ss.mmm and mm:ss.mmm.
func ParseTimestamp(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	clock, frac, ok := strings.Cut(strings.ReplaceAll(value, ",", "."), ".")
	if !ok || len(frac) != 3 {
		return 0, fmt.Errorf("%w: invalid timestamp %q", ErrMalformed, value)
	}
	fields := strings.Split(clock, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return 0, fmt.Errorf("%w: invalid timestamp %q", ErrMalformed, value)
	}
	if len(fields) == 2 {
		fields = append([]string{"0"}, fields...)
	}
	hours, errH := strconv.Atoi(fields[0])
	minutes, errM := strconv.Atoi(fields[1])
	seconds, errS := strconv.Atoi(fields[2])
	millis, errMS := strconv.Atoi(frac)
	if errH != nil || errM != nil || errS != nil || errMS != nil ||
		hours < 0 || minutes < 0 || minutes > 59 || seconds < 0 || seconds > 59 || millis < 0 {
		return 0, fmt.Errorf("%w: invalid timestamp %q", ErrMalformed, value)
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond, nil
}

// FormatTimestamp renders d as hh:mm:ss followed by sep and milliseconds.
// Negative durations clamp to zero.
func FormatTimestamp(d time.Duration, sep byte) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms%1000)
}
