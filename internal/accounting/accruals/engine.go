// Package accruals recognizes prepaid, accrued, and deferred items one
// monthly portion at a time.
package accruals

import (
	"fmt"
	"time"

	"github.com/meridian-books/meridian/internal/accounting/journals"
	"github.com/meridian-books/meridian/internal/accounting/shared"
)

// ItemType enumerates supported accrual schedules.
type ItemType string

const (
	TypePrepaid        ItemType = "prepaid"
	TypeAccruedExpense ItemType = "accrued_expense"
	TypeAccruedIncome  ItemType = "accrued_income"
	TypeDeferred       ItemType = "deferred"
)

// Item is an accrual schedule record. AccountCode is the balance-sheet side,
// ExpenseAccountCode the P&L side; both are used regardless of direction.
type Item struct {
	ID                 string
	Type               ItemType
	Description        string
	OriginalAmount     float64
	PeriodMonths       int
	StartDate          time.Time
	MonthlyAmount      float64
	AccountCode        string
	ExpenseAccountCode string
}

// Recognition summarizes one item's posting for the period.
type Recognition struct {
	ItemID        string
	Type          ItemType
	Amount        float64
	MonthsElapsed int
}

// Skip records an item excluded from the run.
type Skip struct {
	ItemID string
	Reason string
}

// Result is the outcome of one accrual run.
type Result struct {
	Entries []journals.Entry
	Summary []Recognition
	Skipped []Skip
}

// Run recognizes exactly one monthly portion per active item, via a
// type-specific balanced pair dated on the period's last day:
//
//	prepaid:         Dr expense            / Cr prepaid asset
//	accrued_expense: Dr expense            / Cr accrued liability
//	accrued_income:  Dr accrued receivable / Cr revenue
//	deferred:        Dr deferred liability / Cr revenue
func Run(items []Item, clientID string, period shared.Period) Result {
	res := Result{}
	postDate := period.End()
	seq := 0
	for _, item := range items {
		months := period.MonthsSince(item.StartDate)
		if months <= 0 {
			res.Skipped = append(res.Skipped, Skip{ItemID: item.ID, Reason: "starts after period"})
			continue
		}
		if months > item.PeriodMonths {
			res.Skipped = append(res.Skipped, Skip{ItemID: item.ID, Reason: "fully recognized"})
			continue
		}
		amount := shared.Round2(item.MonthlyAmount)
		if amount <= 0 {
			res.Skipped = append(res.Skipped, Skip{ItemID: item.ID, Reason: "monthly amount is zero"})
			continue
		}
		if item.AccountCode == "" || item.ExpenseAccountCode == "" {
			res.Skipped = append(res.Skipped, Skip{ItemID: item.ID, Reason: "missing account codes"})
			continue
		}

		var drAccount, crAccount string
		switch item.Type {
		case TypePrepaid:
			drAccount, crAccount = item.ExpenseAccountCode, item.AccountCode
		case TypeAccruedExpense:
			drAccount, crAccount = item.ExpenseAccountCode, item.AccountCode
		case TypeAccruedIncome:
			drAccount, crAccount = item.AccountCode, item.ExpenseAccountCode
		case TypeDeferred:
			drAccount, crAccount = item.AccountCode, item.ExpenseAccountCode
		default:
			res.Skipped = append(res.Skipped, Skip{ItemID: item.ID, Reason: fmt.Sprintf("unknown type %q", item.Type)})
			continue
		}

		seq++
		docNo := fmt.Sprintf("ACR-%s-%03d", period, seq)
		desc := fmt.Sprintf("%s recognition %s (month %d of %d) - %s",
			item.Type, period, months, item.PeriodMonths, item.Description)
		res.Entries = append(res.Entries, journals.BalancedPair(
			clientID, postDate, docNo, desc, drAccount, crAccount, amount,
		)...)
		res.Summary = append(res.Summary, Recognition{
			ItemID:        item.ID,
			Type:          item.Type,
			Amount:        amount,
			MonthsElapsed: months,
		})
	}
	return res
}
