// Package accounts classifies general ledger account codes.
//
// Account codes are numeric strings whose leading digit fixes the account
// type: 1 asset, 2 liability, 3 equity, 4 revenue, 5 expense. Codes are
// conventionally 4-6 digits long.
package accounts

import "strings"

// Type enumerates the five account classifications.
type Type string

const (
	TypeAsset     Type = "asset"
	TypeLiability Type = "liability"
	TypeEquity    Type = "equity"
	TypeRevenue   Type = "revenue"
	TypeExpense   Type = "expense"
)

// Reserved account codes used by the posting engines.
const (
	CodeDepreciationExpense = "53400"
	CodeAccumDeprBuilding   = "12201"
	CodeAccumDeprEquipment  = "12401"
	CodeAccumDeprVehicle    = "12501"
	CodeAccumDeprSoftware   = "12601"
	CodeCITExpense          = "58000"
	CodeCITPayable          = "21600"
	CodeRetainedEarnings    = "32000"
	// CodeIncomeSummary is reserved for future use; the closing engine
	// transfers directly to retained earnings.
	CodeIncomeSummary = "39000"
)

// Classify maps an account code to its type by leading digit. Codes with any
// other leading digit classify as expense; this mirrors the established chart
// convention and is deliberate, not a fallback to be "fixed".
func Classify(code string) Type {
	if code == "" {
		return TypeExpense
	}
	switch code[0] {
	case '1':
		return TypeAsset
	case '2':
		return TypeLiability
	case '3':
		return TypeEquity
	case '4':
		return TypeRevenue
	case '5':
		return TypeExpense
	default:
		return TypeExpense
	}
}

// IsCurrent reports whether the code is a current asset (11xxx) or current
// liability (21xxx). Every other code is non-current.
func IsCurrent(code string) bool {
	return strings.HasPrefix(code, "11") || strings.HasPrefix(code, "21")
}

// NormalDebit reports whether the type's normal balance is on the debit side.
func NormalDebit(t Type) bool {
	return t == TypeAsset || t == TypeExpense
}

// Balance applies the normal-balance convention: debit minus credit for
// asset/expense accounts, credit minus debit otherwise.
func Balance(code string, debit, credit float64) float64 {
	if NormalDebit(Classify(code)) {
		return debit - credit
	}
	return credit - debit
}
