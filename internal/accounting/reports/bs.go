package reports

import (
	"context"
	"sort"
	"time"

	"github.com/meridian-books/meridian/internal/accounting/accounts"
	"github.com/meridian-books/meridian/internal/accounting/balance"
	"github.com/meridian-books/meridian/internal/accounting/journals"
	"github.com/meridian-books/meridian/internal/accounting/shared"
)

// AssetsSection partitions asset accounts by liquidity.
type AssetsSection struct {
	CurrentAssets    []StatementItem `json:"currentAssets"`
	NonCurrentAssets []StatementItem `json:"nonCurrentAssets"`
	TotalAssets      float64         `json:"totalAssets"`
}

// LiabilitiesSection partitions liability accounts by maturity.
type LiabilitiesSection struct {
	CurrentLiabilities    []StatementItem `json:"currentLiabilities"`
	NonCurrentLiabilities []StatementItem `json:"nonCurrentLiabilities"`
	TotalLiabilities      float64         `json:"totalLiabilities"`
}

// EquitySection lists equity accounts including computed retained earnings.
type EquitySection struct {
	Items       []StatementItem `json:"items"`
	TotalEquity float64         `json:"totalEquity"`
}

// BalanceSheet is the point-in-time statement contract shape.
type BalanceSheet struct {
	ClientID                  string             `json:"clientId"`
	ClientName                string             `json:"clientName"`
	AsOfDate                  string             `json:"asOfDate"`
	Assets                    AssetsSection      `json:"assets"`
	Liabilities               LiabilitiesSection `json:"liabilities"`
	Equity                    EquitySection      `json:"equity"`
	TotalLiabilitiesAndEquity float64            `json:"totalLiabilitiesAndEquity"`
	IsBalanced                bool               `json:"isBalanced"`
}

// BuildBalanceSheet aggregates every entry up to asOfDate with no lower bound
// (the true cumulative ledger position). Retained earnings is the running sum
// of revenue minus expense across the whole history, folded into the 32000
// equity line; after a period close that running sum is zero and the posted
// transfer carries the figure instead.
func BuildBalanceSheet(ctx context.Context, entries []journals.Entry, clientID, clientName string, asOfDate time.Time) (BalanceSheet, error) {
	agg, err := balance.Aggregate(ctx, entries, balance.Filter{
		ClientID: clientID,
		DateTo:   &asOfDate,
	})
	if err != nil {
		return BalanceSheet{}, err
	}

	bs := BalanceSheet{
		ClientID:   clientID,
		ClientName: clientName,
		AsOfDate:   asOfDate.Format(dateLayout),
	}

	equity := map[string]StatementItem{}
	var retained float64
	for _, acc := range agg.Accounts {
		item := StatementItem{AccountCode: acc.Code, AccountName: acc.Name, Amount: acc.Balance}
		switch acc.Type {
		case accounts.TypeAsset:
			if accounts.IsCurrent(acc.Code) {
				bs.Assets.CurrentAssets = append(bs.Assets.CurrentAssets, item)
			} else {
				bs.Assets.NonCurrentAssets = append(bs.Assets.NonCurrentAssets, item)
			}
			bs.Assets.TotalAssets = shared.Round2(bs.Assets.TotalAssets + acc.Balance)
		case accounts.TypeLiability:
			if accounts.IsCurrent(acc.Code) {
				bs.Liabilities.CurrentLiabilities = append(bs.Liabilities.CurrentLiabilities, item)
			} else {
				bs.Liabilities.NonCurrentLiabilities = append(bs.Liabilities.NonCurrentLiabilities, item)
			}
			bs.Liabilities.TotalLiabilities = shared.Round2(bs.Liabilities.TotalLiabilities + acc.Balance)
		case accounts.TypeEquity:
			equity[acc.Code] = item
		case accounts.TypeRevenue:
			retained += acc.Balance
		case accounts.TypeExpense:
			retained -= acc.Balance
		}
	}

	retained = shared.Round2(retained)
	if retained != 0 {
		code := accounts.CodeRetainedEarnings
		item, ok := equity[code]
		if !ok {
			item = StatementItem{AccountCode: code, AccountName: accounts.Name(code, "Retained Earnings")}
		}
		item.Amount = shared.Round2(item.Amount + retained)
		equity[code] = item
	}

	codes := make([]string, 0, len(equity))
	for code := range equity {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		item := equity[code]
		bs.Equity.Items = append(bs.Equity.Items, item)
		bs.Equity.TotalEquity = shared.Round2(bs.Equity.TotalEquity + item.Amount)
	}

	bs.TotalLiabilitiesAndEquity = shared.Round2(bs.Liabilities.TotalLiabilities + bs.Equity.TotalEquity)
	bs.IsBalanced = shared.WithinTolerance(bs.Assets.TotalAssets, bs.TotalLiabilitiesAndEquity)
	return bs, nil
}
