// Package reports builds the standardized financial statements: trial
// balance, income statement, and balance sheet. The exported shapes are the
// compatibility contract with external renderers and must be preserved
// field-for-field.
package reports

import (
	"sort"
	"time"

	"github.com/meridian-books/meridian/internal/accounting/accounts"
	"github.com/meridian-books/meridian/internal/accounting/journals"
	"github.com/meridian-books/meridian/internal/accounting/shared"
)

const dateLayout = "2006-01-02"

// TrialBalanceEntry is one account row. Debit/Credit carry the closing
// balance on the account's positive side; Balance keeps the signed figure.
type TrialBalanceEntry struct {
	AccountCode   string        `json:"accountCode"`
	AccountName   string        `json:"accountName"`
	AccountNameTh string        `json:"accountNameTh"`
	Debit         float64       `json:"debit"`
	Credit        float64       `json:"credit"`
	Balance       float64       `json:"balance"`
	AccountType   accounts.Type `json:"accountType"`
}

// TrialBalanceReport lists every account's balance for a period window.
type TrialBalanceReport struct {
	ClientID    string              `json:"clientId"`
	ClientName  string              `json:"clientName"`
	AsOfDate    string              `json:"asOfDate"`
	PeriodStart string              `json:"periodStart"`
	PeriodEnd   string              `json:"periodEnd"`
	Entries     []TrialBalanceEntry `json:"entries"`
	TotalDebit  float64             `json:"totalDebit"`
	TotalCredit float64             `json:"totalCredit"`
	IsBalanced  bool                `json:"isBalanced"`
}

type tbBucket struct {
	name                        string
	openingDebit, openingCredit float64
	periodDebit, periodCredit   float64
}

// GenerateTrialBalance splits each account's movement into an opening bucket
// (before periodStart) and a period bucket (inclusive window), then reports
// closing = opening + period as a raw signed debit-minus-credit figure.
// Entries after periodEnd are ignored. Output is sorted by account code and
// deterministic for identical input.
func GenerateTrialBalance(entries []journals.Entry, clientID, clientName string, periodStart, periodEnd time.Time) TrialBalanceReport {
	buckets := map[string]*tbBucket{}
	for _, e := range entries {
		if clientID != "" && e.ClientID != clientID {
			continue
		}
		if e.Date.After(periodEnd) {
			continue
		}
		b, ok := buckets[e.AccountCode]
		if !ok {
			b = &tbBucket{name: accounts.Name(e.AccountCode, e.AccountName)}
			buckets[e.AccountCode] = b
		}
		if e.Date.Before(periodStart) {
			b.openingDebit += e.Debit
			b.openingCredit += e.Credit
		} else {
			b.periodDebit += e.Debit
			b.periodCredit += e.Credit
		}
	}

	report := TrialBalanceReport{
		ClientID:    clientID,
		ClientName:  clientName,
		AsOfDate:    periodEnd.Format(dateLayout),
		PeriodStart: periodStart.Format(dateLayout),
		PeriodEnd:   periodEnd.Format(dateLayout),
	}

	codes := make([]string, 0, len(buckets))
	for code := range buckets {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		b := buckets[code]
		opening := b.openingDebit - b.openingCredit
		closing := shared.Round2(opening + b.periodDebit - b.periodCredit)
		row := TrialBalanceEntry{
			AccountCode:   code,
			AccountName:   b.name,
			AccountNameTh: accounts.NameTh(code),
			Balance:       closing,
			AccountType:   accounts.Classify(code),
		}
		if closing >= 0 {
			row.Debit = closing
		} else {
			row.Credit = -closing
		}
		report.Entries = append(report.Entries, row)
		report.TotalDebit = shared.Round2(report.TotalDebit + row.Debit)
		report.TotalCredit = shared.Round2(report.TotalCredit + row.Credit)
	}

	report.IsBalanced = shared.WithinTolerance(report.TotalDebit, report.TotalCredit)
	return report
}
