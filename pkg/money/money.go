package money

import "github.com/shopspring/decimal"

// Scale is the monetary precision used across the platform.
const Scale = 2

// BpsDenominator converts basis points into a rate (1 bps = 1/10000).
const BpsDenominator = 10000

// RoundHalfUp normalizes an amount to monetary scale with half-up rounding:
// ties round away from zero, symmetrically for negative amounts
// (-2.505 -> -2.51, -2.504 -> -2.50). decimal.Round implements this tie-break.
func RoundHalfUp(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(Scale)
}

// ApplyBps returns amount scaled by the given basis points, unrounded.
// Rounding happens once at normalization, never per line item.
func ApplyBps(amount decimal.Decimal, rateBps int) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(int64(rateBps))).
		Div(decimal.NewFromInt(BpsDenominator))
}

// MinorUnits converts a monetary amount into integer minor units (cents),
// normalizing first so 19.999 becomes 2000, not 1999.
func MinorUnits(amount decimal.Decimal) int64 {
	return RoundHalfUp(amount).Mul(decimal.NewFromInt(100)).IntPart()
}

// FromMinorUnits converts integer minor units back into a decimal amount.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -Scale)
}
