// Package provisions posts probability-weighted provision estimates.
package provisions

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meridian-books/meridian/internal/accounting/journals"
	"github.com/meridian-books/meridian/internal/accounting/shared"
)

// ItemType enumerates provision categories.
type ItemType string

const (
	TypeWarranty ItemType = "warranty"
	TypeLegal    ItemType = "legal"
	TypeBadDebt  ItemType = "bad_debt"
	TypeBonus    ItemType = "bonus"
	TypeLeave    ItemType = "leave"
	TypeOther    ItemType = "other"
)

// liability account per provision type. bad_debt credits the contra-AR
// allowance account rather than a liability.
var liabilityAccounts = map[ItemType]string{
	TypeWarranty: "22100",
	TypeLegal:    "22200",
	TypeBadDebt:  "11301",
	TypeBonus:    "21800",
	TypeLeave:    "21900",
}

var descriptions = map[ItemType]string{
	TypeWarranty: "Warranty provision",
	TypeLegal:    "Legal claim provision",
	TypeBadDebt:  "Bad debt allowance",
	TypeBonus:    "Bonus provision",
	TypeLeave:    "Leave provision",
	TypeOther:    "Provision",
}

// LiabilityAccount returns the credit account for a provision type.
func LiabilityAccount(t ItemType) string {
	if code, ok := liabilityAccounts[t]; ok {
		return code
	}
	return "22100"
}

// expenseAccount picks the debit side: the item's configured expense account,
// or the general other-expenses account when none is set.
func expenseAccount(item Item) string {
	if item.ExpenseAccountCode != "" {
		return item.ExpenseAccountCode
	}
	return "59000"
}

// Item is a provision estimate. Probability is a percentage in [0, 100].
type Item struct {
	ID                 string
	Type               ItemType
	Description        string
	EstimatedAmount    float64
	Probability        float64
	AccountCode        string
	ExpenseAccountCode string
}

// Amount is the probability-weighted provision: estimated x probability/100.
func (i Item) Amount() float64 {
	return decimal.NewFromFloat(i.EstimatedAmount).
		Mul(decimal.NewFromFloat(i.Probability)).
		DivRound(decimal.NewFromInt(100), 2).
		InexactFloat64()
}

// Posting summarizes one item's provision for the period.
type Posting struct {
	ItemID string
	Type   ItemType
	Amount float64
}

// Result is the outcome of one provision run. Each run re-expresses the full
// current estimate; it does not adjust a prior balance. Reversal of the prior
// period's provision, if intended, is the caller's responsibility.
type Result struct {
	Entries        []journals.Entry
	TotalProvision float64
	Postings       []Posting
}

// Run emits Dr expense / Cr provision liability per item with a positive
// weighted amount, dated on the period's last day.
func Run(items []Item, clientID string, period shared.Period) Result {
	res := Result{}
	postDate := period.End()
	seq := 0
	for _, item := range items {
		amount := item.Amount()
		if amount <= 0 {
			continue
		}
		seq++
		docNo := fmt.Sprintf("PRV-%s-%03d", period, seq)
		label := descriptions[item.Type]
		if label == "" {
			label = descriptions[TypeOther]
		}
		desc := fmt.Sprintf("%s %s (%.0f%% of %.2f)", label, period, item.Probability, item.EstimatedAmount)
		if item.Description != "" {
			desc = fmt.Sprintf("%s - %s", desc, item.Description)
		}
		res.Entries = append(res.Entries, journals.BalancedPair(
			clientID, postDate, docNo, desc,
			expenseAccount(item), LiabilityAccount(item.Type), amount,
		)...)
		res.Postings = append(res.Postings, Posting{ItemID: item.ID, Type: item.Type, Amount: amount})
		res.TotalProvision = shared.Round2(res.TotalProvision + amount)
	}
	return res
}
