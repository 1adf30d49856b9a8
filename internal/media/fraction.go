package media

import (
	"fmt"
	"math/big"
)

// Fraction is an exact rational used for frame rates, sample rates and
// timestamp scales.
type Fraction struct {
	Numerator   uint32
	Denominator uint32
}

// NewFraction builds a fraction without reducing it.
func NewFraction(numerator, denominator uint32) Fraction {
	return Fraction{Numerator: numerator, Denominator: denominator}
}

// Simplify divides both terms by their greatest common divisor. The zero
// fraction 0/0 is returned unchanged.
func (f Fraction) Simplify() Fraction {
	divisor := gcd(f.Numerator, f.Denominator)
	if divisor == 0 {
		return f
	}
	return Fraction{Numerator: f.Numerator / divisor, Denominator: f.Denominator / divisor}
}

// Decimal approximates the fraction as a float. Use it for display only.
func (f Fraction) Decimal() float64 {
	if f.Denominator == 0 {
		return 0
	}
	return float64(f.Numerator) / float64(f.Denominator)
}

// IsZero reports whether the fraction is unset.
func (f Fraction) IsZero() bool {
	return f.Numerator == 0 && f.Denominator == 0
}

// Rat returns the fraction as an exact big.Rat.
func (f Fraction) Rat() *big.Rat {
	if f.Denominator == 0 {
		return new(big.Rat)
	}
	return new(big.Rat).SetFrac64(int64(f.Numerator), int64(f.Denominator))
}

func (f Fraction) String() string {
	return fmt.Sprintf("%d/%d", f.Numerator, f.Denominator)
}

func gcd(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
