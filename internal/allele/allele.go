// Package allele defines the element types genomes are built from and the
// numeric interval helpers used by range-based genotypes.
package allele

import (
	"math/rand"
)

// List is the constraint for alleles drawn from a finite set of
// interchangeable values. List alleles only need equality and hashability;
// there is no notion of distance between them.
type List interface {
	comparable
}

// UniqueList is the constraint for alleles that must appear exactly once per
// genome (or per segment). Capability-wise it is identical to List; the
// uniqueness discipline lives in the genotype, not the element type.
type UniqueList interface {
	comparable
}

// Range is the constraint for totally ordered numeric alleles that support
// addition and distance-bounded mutation.
type Range interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// isIntegral reports whether A is an integer type. Converting a non-constant
// 0.5 to an integer type truncates to zero, which distinguishes the two
// families without reflection.
func isIntegral[A Range]() bool {
	half := 0.5
	return A(half) == A(0)
}

// SmallestIncrement returns the smallest representable step for A: 1 for
// integer types, the machine epsilon of the float type otherwise.
func SmallestIncrement[A Range]() A {
	one := 1.0
	if isIntegral[A]() {
		return A(one)
	}
	two := 2.0
	eps := A(one)
	for A(one)+eps/A(two) != A(one) {
		eps = eps / A(two)
	}
	return eps
}

// Interval is an inclusive numeric range [Lo, Hi].
type Interval[A Range] struct {
	Lo A
	Hi A
}

// NewInterval constructs an inclusive interval. Lo and Hi may be equal; a
// reversed interval is normalized.
func NewInterval[A Range](lo, hi A) Interval[A] {
	if hi < lo {
		lo, hi = hi, lo
	}
	return Interval[A]{Lo: lo, Hi: hi}
}

// Width returns Hi - Lo.
func (iv Interval[A]) Width() A {
	return iv.Hi - iv.Lo
}

// Contains reports whether v lies within the interval, inclusive on both ends.
func (iv Interval[A]) Contains(v A) bool {
	return v >= iv.Lo && v <= iv.Hi
}

// Clamp returns v limited to the interval.
func (iv Interval[A]) Clamp(v A) A {
	if v < iv.Lo {
		return iv.Lo
	}
	if v > iv.Hi {
		return iv.Hi
	}
	return v
}

// Sample draws a uniform value from the interval, inclusive on both ends for
// integer types.
func (iv Interval[A]) Sample(rng *rand.Rand) A {
	if isIntegral[A]() {
		span := int64(iv.Hi - iv.Lo)
		return iv.Lo + A(rng.Int63n(span+1))
	}
	return iv.Lo + A(rng.Float64()*float64(iv.Width()))
}

// SampleBelow draws a uniform value from [iv.Lo, bound) where bound is assumed
// to lie within the interval. The second return is false when the interval
// below bound is empty.
func (iv Interval[A]) SampleBelow(bound A, rng *rand.Rand) (A, bool) {
	if bound <= iv.Lo {
		return iv.Lo, false
	}
	if isIntegral[A]() {
		one := 1.0
		return NewInterval(iv.Lo, bound-A(one)).Sample(rng), true
	}
	v := iv.Lo + A(rng.Float64()*float64(bound-iv.Lo))
	if v >= bound {
		return iv.Lo, false
	}
	return v, true
}

// SampleAbove draws a uniform value from (bound, iv.Hi] where bound is assumed
// to lie within the interval. The second return is false when the interval
// above bound is empty.
func (iv Interval[A]) SampleAbove(bound A, rng *rand.Rand) (A, bool) {
	if bound >= iv.Hi {
		return iv.Hi, false
	}
	if isIntegral[A]() {
		one := 1.0
		return NewInterval(bound+A(one), iv.Hi).Sample(rng), true
	}
	v := bound + A(rng.Float64()*float64(iv.Hi-bound))
	if v <= bound {
		return iv.Hi, true
	}
	return v, true
}
