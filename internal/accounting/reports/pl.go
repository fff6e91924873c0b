package reports

import (
	"context"
	"strings"
	"time"

	"github.com/meridian-books/meridian/internal/accounting/accounts"
	"github.com/meridian-books/meridian/internal/accounting/balance"
	"github.com/meridian-books/meridian/internal/accounting/closing"
	"github.com/meridian-books/meridian/internal/accounting/journals"
	"github.com/meridian-books/meridian/internal/accounting/shared"
)

// StatementItem is one account line on a statement.
type StatementItem struct {
	AccountCode string  `json:"accountCode"`
	AccountName string  `json:"accountName"`
	Amount      float64 `json:"amount"`
}

// RevenueSection groups revenue accounts excluding other income (49xxx).
type RevenueSection struct {
	Items        []StatementItem `json:"items"`
	TotalRevenue float64         `json:"totalRevenue"`
}

// CostOfSalesSection groups the 51xxx cost accounts.
type CostOfSalesSection struct {
	Items            []StatementItem `json:"items"`
	TotalCostOfSales float64         `json:"totalCostOfSales"`
}

// OperatingExpensesSection groups the remaining expense accounts.
type OperatingExpensesSection struct {
	Items                  []StatementItem `json:"items"`
	TotalOperatingExpenses float64         `json:"totalOperatingExpenses"`
}

// IncomeStatement is the P&L contract shape.
type IncomeStatement struct {
	ClientID          string                   `json:"clientId"`
	ClientName        string                   `json:"clientName"`
	PeriodStart       string                   `json:"periodStart"`
	PeriodEnd         string                   `json:"periodEnd"`
	Revenue           RevenueSection           `json:"revenue"`
	CostOfSales       CostOfSalesSection       `json:"costOfSales"`
	GrossProfit       float64                  `json:"grossProfit"`
	OperatingExpenses OperatingExpensesSection `json:"operatingExpenses"`
	OperatingProfit   float64                  `json:"operatingProfit"`
	OtherIncome       float64                  `json:"otherIncome"`
	OtherExpenses     float64                  `json:"otherExpenses"`
	IncomeTaxExpense  float64                  `json:"incomeTaxExpense"`
	ProfitBeforeTax   float64                  `json:"profitBeforeTax"`
	NetProfit         float64                  `json:"netProfit"`
}

// BuildIncomeStatement aggregates the period's entries and buckets the P&L
// accounts: revenue (4xxxx except 49xxx), other income (49xxx), cost of
// sales (51xxx), other expenses (59xxx), operating expenses (the rest).
// Tax uses the same rate and rounding as the closing engine, so netProfit
// here always matches a close over the same entries.
func BuildIncomeStatement(ctx context.Context, entries []journals.Entry, clientID, clientName string, periodStart, periodEnd time.Time) (IncomeStatement, error) {
	agg, err := balance.Aggregate(ctx, entries, balance.Filter{
		ClientID: clientID,
		DateFrom: &periodStart,
		DateTo:   &periodEnd,
	})
	if err != nil {
		return IncomeStatement{}, err
	}

	st := IncomeStatement{
		ClientID:    clientID,
		ClientName:  clientName,
		PeriodStart: periodStart.Format(dateLayout),
		PeriodEnd:   periodEnd.Format(dateLayout),
	}

	for _, acc := range agg.Accounts {
		item := StatementItem{AccountCode: acc.Code, AccountName: acc.Name, Amount: acc.Balance}
		switch acc.Type {
		case accounts.TypeRevenue:
			if strings.HasPrefix(acc.Code, "49") {
				st.OtherIncome = shared.Round2(st.OtherIncome + acc.Balance)
				continue
			}
			st.Revenue.Items = append(st.Revenue.Items, item)
			st.Revenue.TotalRevenue = shared.Round2(st.Revenue.TotalRevenue + acc.Balance)
		case accounts.TypeExpense:
			switch {
			case strings.HasPrefix(acc.Code, "51"):
				st.CostOfSales.Items = append(st.CostOfSales.Items, item)
				st.CostOfSales.TotalCostOfSales = shared.Round2(st.CostOfSales.TotalCostOfSales + acc.Balance)
			case strings.HasPrefix(acc.Code, "59"):
				st.OtherExpenses = shared.Round2(st.OtherExpenses + acc.Balance)
			default:
				st.OperatingExpenses.Items = append(st.OperatingExpenses.Items, item)
				st.OperatingExpenses.TotalOperatingExpenses = shared.Round2(st.OperatingExpenses.TotalOperatingExpenses + acc.Balance)
			}
		}
	}

	st.GrossProfit = shared.Round2(st.Revenue.TotalRevenue - st.CostOfSales.TotalCostOfSales)
	st.OperatingProfit = shared.Round2(st.GrossProfit - st.OperatingExpenses.TotalOperatingExpenses)
	st.ProfitBeforeTax = shared.Round2(st.OperatingProfit + st.OtherIncome - st.OtherExpenses)
	if st.ProfitBeforeTax > 0 {
		st.IncomeTaxExpense = shared.MulRound2(st.ProfitBeforeTax, closing.DefaultCITRate)
	}
	st.NetProfit = shared.Round2(st.ProfitBeforeTax - st.IncomeTaxExpense)
	return st, nil
}
