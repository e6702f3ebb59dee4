package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// DefaultVATRate is the standard VAT rate applied to VAT-inclusive prices.
	DefaultVATRate = decimal.RequireFromString("0.12")
	// DefaultOtherDiscountCap is the ceiling on the base of a manual percent discount.
	DefaultOtherDiscountCap = decimal.NewFromInt(500)

	hundred = decimal.NewFromInt(100)
)

// Zero is the zero amount.
var Zero = decimal.Zero

// New parses a decimal string, e.g. "565.00".
func New(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}
	return d, nil
}

// MustNew parses a decimal string and panics on error. Intended for constants and tests.
func MustNew(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Round rounds to two places with banker's rounding.
// Only call at persistence and presentation boundaries.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// SplitVAT decomposes a VAT-inclusive gross amount into net-of-VAT and VAT.
func SplitVAT(gross, rate decimal.Decimal) (net, vat decimal.Decimal) {
	if gross.IsZero() {
		return decimal.Zero, decimal.Zero
	}
	net = gross.Div(decimal.NewFromInt(1).Add(rate))
	vat = gross.Sub(net)
	return net, vat
}

// Percent returns amount × pct / 100.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// NonNegative floors d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	return Max(d, decimal.Zero)
}

// Format renders d with two decimals for receipts and reports.
func Format(d decimal.Decimal) string {
	return Round(d).StringFixed(2)
}
