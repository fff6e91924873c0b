// Package balance aggregates ledger entries into per-account, per-day, and
// per-month debit/credit totals.
package balance

import (
	"context"
	"sort"
	"time"

	"github.com/meridian-books/meridian/internal/accounting/accounts"
	"github.com/meridian-books/meridian/internal/accounting/journals"
)

// chunkSize bounds the work done between context checks so a large pass over
// many thousands of entries stays cooperative.
const chunkSize = 1000

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// Filter narrows an aggregation pass. Date bounds are inclusive; nil means
// unbounded on that side.
type Filter struct {
	ClientID string
	DateFrom *time.Time
	DateTo   *time.Time
}

func (f Filter) match(e journals.Entry) bool {
	if f.ClientID != "" && e.ClientID != f.ClientID {
		return false
	}
	if f.DateFrom != nil && e.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && e.Date.After(*f.DateTo) {
		return false
	}
	return true
}

// AccountTotal accumulates one account's movement. Balance follows the
// normal-balance convention for the account's type.
type AccountTotal struct {
	Code    string
	Name    string
	Type    accounts.Type
	Debit   float64
	Credit  float64
	Balance float64
}

// BucketTotal accumulates movement for one calendar day or month.
type BucketTotal struct {
	Debit  float64
	Credit float64
}

// Aggregation is the result of one pass over an entry collection.
type Aggregation struct {
	Accounts    []AccountTotal
	Daily       map[string]BucketTotal
	Monthly     map[string]BucketTotal
	TotalDebit  float64
	TotalCredit float64
}

// Account looks up a per-account total by code.
func (a Aggregation) Account(code string) (AccountTotal, bool) {
	for _, acc := range a.Accounts {
		if acc.Code == code {
			return acc, true
		}
	}
	return AccountTotal{}, false
}

// Aggregate runs a single O(n) pass over the supplied entries, which may
// arrive in any order. The pass is chunked; ctx is checked at each chunk
// boundary, which is also the only cancellation point.
func Aggregate(ctx context.Context, entries []journals.Entry, f Filter) (Aggregation, error) {
	byAccount := map[string]*AccountTotal{}
	agg := Aggregation{
		Daily:   map[string]BucketTotal{},
		Monthly: map[string]BucketTotal{},
	}

	for start := 0; start < len(entries); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return Aggregation{}, err
		}
		end := start + chunkSize
		if end > len(entries) {
			end = len(entries)
		}
		for _, e := range entries[start:end] {
			if !f.match(e) {
				continue
			}
			acc, ok := byAccount[e.AccountCode]
			if !ok {
				acc = &AccountTotal{
					Code: e.AccountCode,
					Name: accounts.Name(e.AccountCode, e.AccountName),
					Type: accounts.Classify(e.AccountCode),
				}
				byAccount[e.AccountCode] = acc
			}
			acc.Debit += e.Debit
			acc.Credit += e.Credit

			day := e.Date.Format(dayLayout)
			d := agg.Daily[day]
			d.Debit += e.Debit
			d.Credit += e.Credit
			agg.Daily[day] = d

			month := e.Date.Format(monthLayout)
			m := agg.Monthly[month]
			m.Debit += e.Debit
			m.Credit += e.Credit
			agg.Monthly[month] = m

			agg.TotalDebit += e.Debit
			agg.TotalCredit += e.Credit
		}
	}

	agg.Accounts = make([]AccountTotal, 0, len(byAccount))
	for _, acc := range byAccount {
		acc.Balance = accounts.Balance(acc.Code, acc.Debit, acc.Credit)
		agg.Accounts = append(agg.Accounts, *acc)
	}
	sort.Slice(agg.Accounts, func(i, j int) bool {
		return agg.Accounts[i].Code < agg.Accounts[j].Code
	})
	return agg, nil
}
