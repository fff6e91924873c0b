package shared

import "github.com/shopspring/decimal"

// BalanceTolerance is the maximum debit/credit difference a balanced ledger
// may show after 2-decimal rounding.
const BalanceTolerance = 0.01

// Round2 rounds a monetary amount to 2 decimal places using half-up decimal
// arithmetic, avoiding binary float drift on the cent boundary.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// MulRound2 multiplies two amounts and rounds the product to 2 decimals.
func MulRound2(a, b float64) float64 {
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// DivRound2 divides a by b and rounds the quotient to 2 decimals.
// b must be nonzero.
func DivRound2(a, b float64) float64 {
	return decimal.NewFromFloat(a).DivRound(decimal.NewFromFloat(b), 2).InexactFloat64()
}

// WithinTolerance reports whether two totals agree within BalanceTolerance.
func WithinTolerance(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < BalanceTolerance
}
