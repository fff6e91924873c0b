// Package closing computes period-closing entries: zeroing the P&L accounts,
// accruing corporate income tax, and transferring the net result to retained
// earnings.
//
// Close is a pure computation over the supplied entries. It does not guard
// against double posting; the close service in internal/close wraps it with
// the period lifecycle (OPEN -> CLOSING -> CLOSED) so a second run fails
// before any entries are generated.
package closing

import (
	"fmt"
	"sort"

	"github.com/meridian-books/meridian/internal/accounting/accounts"
	"github.com/meridian-books/meridian/internal/accounting/journals"
	"github.com/meridian-books/meridian/internal/accounting/shared"
)

// DefaultCITRate is the statutory corporate income tax rate applied when the
// caller does not override it.
const DefaultCITRate = 0.20

// DocNo is the document number the closing batch posts under; one per period.
func DocNo(period shared.Period) string {
	return fmt.Sprintf("CLS-%s", period)
}

// Result carries the closing batch and the figures it was derived from.
type Result struct {
	Entries         []journals.Entry
	ProfitBeforeTax float64
	CITAmount       float64
	NetProfit       float64
}

// Close derives the closing batch for one client period. Callers must include
// every entry posted for the period, including the depreciation, accrual, and
// provision batches generated for the same period.
func Close(entries []journals.Entry, clientID string, period shared.Period, citRate float64) Result {
	if citRate <= 0 {
		citRate = DefaultCITRate
	}

	// Accumulate P&L balances with normal-balance sign.
	type plBalance struct {
		code    string
		typ     accounts.Type
		balance float64
	}
	byCode := map[string]*plBalance{}
	for _, e := range entries {
		t := accounts.Classify(e.AccountCode)
		if t != accounts.TypeRevenue && t != accounts.TypeExpense {
			continue
		}
		b, ok := byCode[e.AccountCode]
		if !ok {
			b = &plBalance{code: e.AccountCode, typ: t}
			byCode[e.AccountCode] = b
		}
		if t == accounts.TypeRevenue {
			b.balance += e.Credit - e.Debit
		} else {
			b.balance += e.Debit - e.Credit
		}
	}

	var revenue, expense float64
	codes := make([]string, 0, len(byCode))
	for code, b := range byCode {
		codes = append(codes, code)
		if b.typ == accounts.TypeRevenue {
			revenue += b.balance
		} else {
			expense += b.balance
		}
	}
	sort.Strings(codes)

	res := Result{}
	res.ProfitBeforeTax = shared.Round2(revenue - expense)
	if res.ProfitBeforeTax > 0 {
		res.CITAmount = shared.MulRound2(res.ProfitBeforeTax, citRate)
	}
	res.NetProfit = shared.Round2(res.ProfitBeforeTax - res.CITAmount)

	postDate := period.End()
	docNo := DocNo(period)

	if res.CITAmount > 0 {
		res.Entries = append(res.Entries, journals.BalancedPair(
			clientID, postDate, docNo,
			fmt.Sprintf("CIT accrual %s", period),
			accounts.CodeCITExpense, accounts.CodeCITPayable, res.CITAmount,
		)...)
	}

	// Zero every P&L account with a nonzero balance: revenue is debited by
	// its balance, expense credited by its balance.
	for _, code := range codes {
		b := byCode[code]
		amount := shared.Round2(b.balance)
		if amount == 0 {
			continue
		}
		desc := fmt.Sprintf("Close %s to income summary %s", code, period)
		// Revenue balances are zeroed by a debit, expense balances by a
		// credit. A contra account with a negative balance flips sides so
		// lines never carry negative amounts.
		debitSide := b.typ == accounts.TypeRevenue
		if amount < 0 {
			debitSide = !debitSide
			amount = -amount
		}
		if debitSide {
			res.Entries = append(res.Entries, journals.NewLine(clientID, postDate, docNo, desc, code, amount, 0))
		} else {
			res.Entries = append(res.Entries, journals.NewLine(clientID, postDate, docNo, desc, code, 0, amount))
		}
	}

	if res.CITAmount > 0 {
		res.Entries = append(res.Entries, journals.NewLine(
			clientID, postDate, docNo,
			fmt.Sprintf("Close %s to income summary %s", accounts.CodeCITExpense, period),
			accounts.CodeCITExpense, 0, res.CITAmount,
		))
	}

	switch {
	case res.NetProfit > 0:
		res.Entries = append(res.Entries, journals.NewLine(
			clientID, postDate, docNo,
			fmt.Sprintf("Transfer net profit %s to retained earnings", period),
			accounts.CodeRetainedEarnings, 0, res.NetProfit,
		))
	case res.NetProfit < 0:
		res.Entries = append(res.Entries, journals.NewLine(
			clientID, postDate, docNo,
			fmt.Sprintf("Transfer net loss %s to retained earnings", period),
			accounts.CodeRetainedEarnings, -res.NetProfit, 0,
		))
	}

	return res
}
