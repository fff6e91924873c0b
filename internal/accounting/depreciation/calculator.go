// Package depreciation generates straight-line monthly depreciation postings
// for fixed assets.
package depreciation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meridian-books/meridian/internal/accounting/accounts"
	"github.com/meridian-books/meridian/internal/accounting/journals"
	"github.com/meridian-books/meridian/internal/accounting/shared"
)

// Category enumerates fixed asset categories.
type Category string

const (
	CategoryEquipment Category = "Equipment"
	CategoryVehicle   Category = "Vehicle"
	CategoryBuilding  Category = "Building"
	CategoryLand      Category = "Land"
	CategorySoftware  Category = "Software"
)

// accumulated depreciation account per category; unmapped categories post to
// the equipment account.
var accumAccounts = map[Category]string{
	CategoryBuilding:  accounts.CodeAccumDeprBuilding,
	CategoryEquipment: accounts.CodeAccumDeprEquipment,
	CategoryVehicle:   accounts.CodeAccumDeprVehicle,
	CategorySoftware:  accounts.CodeAccumDeprSoftware,
}

// AccumAccount returns the accumulated depreciation account for a category.
func AccumAccount(c Category) string {
	if code, ok := accumAccounts[c]; ok {
		return code
	}
	return accounts.CodeAccumDeprEquipment
}

// FixedAsset is an asset register record. AccumulatedBF is the brought-forward
// accumulated depreciation at import; the register record itself is not
// mutated by the calculator.
type FixedAsset struct {
	AssetCode       string
	Name            string
	Category        Category
	Cost            float64
	ResidualValue   float64
	UsefulLifeYears int
	AccumulatedBF   float64
	CurrentMonthly  float64
}

// Detail records one asset's posting for the period.
type Detail struct {
	AssetCode     string
	Name          string
	Category      Category
	Monthly       float64
	CreditAccount string
}

// Skip records an asset excluded from the run. Skips are findings, not
// failures; the rest of the batch always continues.
type Skip struct {
	AssetCode string
	Reason    string
}

// Result is the outcome of one depreciation run.
type Result struct {
	Entries           []journals.Entry
	TotalDepreciation float64
	Details           []Detail
	Skipped           []Skip
}

// Run emits one balanced depreciation pair per eligible asset, dated on the
// period's last calendar day: Dr depreciation expense / Cr accumulated
// depreciation for the asset's category.
func Run(assets []FixedAsset, clientID string, period shared.Period) Result {
	res := Result{}
	postDate := period.End()
	seq := 0
	for _, a := range assets {
		if a.UsefulLifeYears <= 0 {
			res.Skipped = append(res.Skipped, Skip{AssetCode: a.AssetCode, Reason: "useful life is zero"})
			continue
		}
		depreciable := decimal.NewFromFloat(a.Cost).Sub(decimal.NewFromFloat(a.ResidualValue))
		if !depreciable.IsPositive() {
			res.Skipped = append(res.Skipped, Skip{AssetCode: a.AssetCode, Reason: "no depreciable amount"})
			continue
		}
		// Exhaustion is judged from the register figures rather than a
		// running ledger balance; see the register design note in DESIGN.md
		// before changing this check.
		projected := a.AccumulatedBF + a.CurrentMonthly*12
		if decimal.NewFromFloat(projected).GreaterThanOrEqual(depreciable) {
			res.Skipped = append(res.Skipped, Skip{AssetCode: a.AssetCode, Reason: "fully depreciated"})
			continue
		}

		monthly := depreciable.
			DivRound(decimal.NewFromInt(int64(a.UsefulLifeYears)*12), 2).
			InexactFloat64()
		if monthly <= 0 {
			res.Skipped = append(res.Skipped, Skip{AssetCode: a.AssetCode, Reason: "monthly amount rounds to zero"})
			continue
		}

		seq++
		docNo := fmt.Sprintf("DEP-%s-%03d", period, seq)
		desc := fmt.Sprintf("Depreciation %s - %s (%s)", period, a.Name, a.AssetCode)
		credit := AccumAccount(a.Category)
		res.Entries = append(res.Entries, journals.BalancedPair(
			clientID, postDate, docNo, desc,
			accounts.CodeDepreciationExpense, credit, monthly,
		)...)
		res.Details = append(res.Details, Detail{
			AssetCode:     a.AssetCode,
			Name:          a.Name,
			Category:      a.Category,
			Monthly:       monthly,
			CreditAccount: credit,
		})
		res.TotalDepreciation = shared.Round2(res.TotalDepreciation + monthly)
	}
	return res
}
