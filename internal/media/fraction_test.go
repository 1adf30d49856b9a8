package media_test

import (
	"testing"
	"time"

	"mediabox/internal/media"
)

func TestFractionSimplify(t *testing.T) {
	tests := []struct {
		in   media.Fraction
		want media.Fraction
	}{
		{media.NewFraction(4, 8), media.NewFraction(1, 2)},
		{media.NewFraction(30000, 1001), media.NewFraction(30000, 1001)},
		{media.NewFraction(48000, 1), media.NewFraction(48000, 1)},
		{media.NewFraction(0, 5), media.NewFraction(0, 1)},
		{media.NewFraction(0, 0), media.NewFraction(0, 0)},
	}
	for _, tc := range tests {
		if got := tc.in.Simplify(); got != tc.want {
			t.Errorf("%v.Simplify() = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFractionDecimal(t *testing.T) {
	if got := media.NewFraction(1, 2).Decimal(); got != 0.5 {
		t.Fatalf("Decimal() = %v, want 0.5", got)
	}
	if got := media.NewFraction(1, 0).Decimal(); got != 0 {
		t.Fatalf("expected zero for zero denominator, got %v", got)
	}
	if s := media.NewFraction(25, 1).String(); s != "25/1" {
		t.Fatalf("String() = %q", s)
	}
}

func TestMediaTimeRescaleIsExact(t *testing.T) {
	// 3003 ticks of 1/90000 at 29.97fps; rescaling through floats drifts.
	tm := media.MediaTime{Pts: 900900, Dts: 900900, Duration: 3003, Timebase: media.NewFraction(1, 90000)}
	ms := tm.Rescale(media.Millisecond)
	if ms.Pts != 10010 {
		t.Fatalf("expected pts 10010ms, got %d", ms.Pts)
	}
	if ms.Duration != 33 {
		t.Fatalf("expected duration 33ms (rounded), got %d", ms.Duration)
	}
	if ms.Timebase != media.Millisecond {
		t.Fatalf("unexpected timebase %v", ms.Timebase)
	}
	if got := tm.Start(); got != 10010*time.Millisecond {
		t.Fatalf("Start() = %v", got)
	}
}

func TestMediaTimeRescaleRoundsNegative(t *testing.T) {
	tm := media.MediaTime{Pts: -15, Timebase: media.NewFraction(1, 10)}
	got := tm.Rescale(media.NewFraction(1, 1))
	if got.Pts != -2 {
		t.Fatalf("expected -1.5s to round to -2, got %d", got.Pts)
	}
}

func TestTimeFromDuration(t *testing.T) {
	tm := media.TimeFromDuration(1500*time.Millisecond, 4*time.Second)
	if tm.Pts != 1500 || tm.Duration != 2500 {
		t.Fatalf("unexpected time %+v", tm)
	}
	if tm.End() != 4*time.Second {
		t.Fatalf("End() = %v", tm.End())
	}
}
