// Package money implements the integer-cents currency type and the scaled
// percent type used throughout the check model, following spec §3: all
// totals, tax components, and tenders are Money, and the only boundary
// where a float is allowed is the Percent<->float conversion pair.
package money

import "math"

// Money is a signed count of 1/100ths of the base currency unit. Never use
// float64 for a running total; only PercentToFlt/FltToPercent cross into
// floating point, and only for configuration parsing.
type Money int64

// Zero is the additive identity, spelled out for readability at call sites
// that compare against it.
const Zero Money = 0

func (m Money) Add(o Money) Money { return m + o }
func (m Money) Sub(o Money) Money { return m - o }
func (m Money) Neg() Money        { return -m }

// RoundingMode selects how a fractional cent is resolved.
type RoundingMode int

const (
	RoundNone RoundingMode = iota
	RoundNearest
	RoundUp
	RoundDown
	RoundBankers
)

// Percent is a signed integer scaled by 10000, so 8.25% is stored as 82500.
type Percent int64

// PercentScale is the fixed-point scale factor for Percent.
const PercentScale = 10000

// PercentToFlt is one of the two float boundaries permitted by the spec.
func PercentToFlt(p Percent) float64 {
	return float64(p) / PercentScale / 100.0
}

// FltToPercent is the inverse of PercentToFlt, rounding to the nearest
// representable Percent.
func FltToPercent(f float64) Percent {
	return Percent(math.Round(f * 100.0 * PercentScale))
}

// Apply multiplies amount by a Percent (e.g. a tax rate) and rounds the
// result per mode. Tax and discount computation in checkmodel always goes
// through this function so the rounding rule is applied uniformly.
func Apply(amount Money, p Percent, mode RoundingMode) Money {
	// amount * p / (PercentScale * 100), i.e. amount * (p/100/PercentScale)
	num := int64(amount) * int64(p)
	den := int64(PercentScale) * 100
	return Money(roundDiv(num, den, mode))
}

// roundDiv divides num/den applying the requested rounding mode. den is
// always positive; num may be negative (refunds, negative discounts).
func roundDiv(num, den int64, mode RoundingMode) int64 {
	if den == 0 {
		return 0
	}
	neg := (num < 0)
	if neg {
		num = -num
	}

	q := num / den
	r := num % den

	switch mode {
	case RoundNone, RoundDown:
		// truncate toward zero
	case RoundUp:
		if r != 0 {
			q++
		}
	case RoundNearest:
		if 2*r >= den {
			q++
		}
	case RoundBankers:
		twice := 2 * r
		switch {
		case twice > den:
			q++
		case twice == den && q%2 == 1:
			q++
		}
	}

	if neg {
		return -q
	}
	return q
}

// RoundHalfAwayFromZero implements spec §4.1 step (4): each tax bucket is
// computed against its taxable subtotal using round_half_away_from_zero.
func RoundHalfAwayFromZero(amount Money, rate Percent) Money {
	return Apply(amount, rate, RoundNearest)
}
