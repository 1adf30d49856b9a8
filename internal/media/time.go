package media

import (
	"math/big"
	"time"
)

// Millisecond is the timebase used by text subtitle formats.
var Millisecond = Fraction{Numerator: 1, Denominator: 1000}

// MediaTime locates a unit of media on a track's timeline. Values are in
// Timebase units: a Pts of 1500 with a 1/1000 timebase is 1.5 seconds.
type MediaTime struct {
	Pts      int64
	Dts      int64
	Duration int64
	Timebase Fraction
}

// TimeFromDuration builds a millisecond-based MediaTime spanning start to end.
func TimeFromDuration(start, end time.Duration) MediaTime {
	pts := start.Milliseconds()
	return MediaTime{
		Pts:      pts,
		Dts:      pts,
		Duration: end.Milliseconds() - pts,
		Timebase: Millisecond,
	}
}

// Start returns the presentation time as a duration.
func (t MediaTime) Start() time.Duration {
	return toDuration(t.Pts, t.Timebase)
}

// End returns the presentation end time as a duration.
func (t MediaTime) End() time.Duration {
	return toDuration(t.Pts+t.Duration, t.Timebase)
}

// Rescale converts every field to the target timebase, rounding to the
// nearest unit. Rescaling to an unset timebase returns t unchanged.
func (t MediaTime) Rescale(target Fraction) MediaTime {
	if target.Denominator == 0 || target.Numerator == 0 || t.Timebase == target {
		return t
	}
	return MediaTime{
		Pts:      rescale(t.Pts, t.Timebase, target),
		Dts:      rescale(t.Dts, t.Timebase, target),
		Duration: rescale(t.Duration, t.Timebase, target),
		Timebase: target,
	}
}

// rescale computes value * from / to exactly before rounding.
func rescale(value int64, from, to Fraction) int64 {
	if from.Denominator == 0 {
		return value
	}
	num := new(big.Int).Mul(big.NewInt(value), big.NewInt(int64(from.Numerator)))
	num.Mul(num, big.NewInt(int64(to.Denominator)))
	den := new(big.Int).Mul(big.NewInt(int64(from.Denominator)), big.NewInt(int64(to.Numerator)))

	r := new(big.Rat).SetFrac(num, den)
	// Round half away from zero.
	q, m := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	m.Abs(m).Lsh(m, 1)
	if m.Cmp(r.Denom()) >= 0 {
		if r.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	return q.Int64()
}

func toDuration(value int64, tb Fraction) time.Duration {
	if tb.Denominator == 0 {
		return 0
	}
	return time.Duration(rescale(value, tb, Fraction{Numerator: 1, Denominator: uint32(time.Second / time.Nanosecond)}))
}
