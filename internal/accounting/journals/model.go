// Package journals holds the general ledger entry model, batch validation,
// and the posting service.
package journals

import (
	"time"

	"github.com/google/uuid"

	"github.com/meridian-books/meridian/internal/accounting/accounts"
)

// Entry is a single general ledger line. Entries are append-only facts: a
// posted entry is never mutated, corrections are expressed as reversing
// entries (see Service.ReverseBatch).
type Entry struct {
	ID              uuid.UUID
	ClientID        string
	Date            time.Time
	DocNo           string
	Description     string
	AccountCode     string
	AccountName     string
	Debit           float64
	Credit          float64
	DepartmentCode  string
	SourceDocID     string
	SystemGenerated bool
	CreatedBy       string
	CreatedAt       time.Time
}

// Type returns the entry's account classification.
func (e Entry) Type() accounts.Type {
	return accounts.Classify(e.AccountCode)
}

// NewLine builds a system-generated entry for the posting engines.
func NewLine(clientID string, date time.Time, docNo, description, accountCode string, debit, credit float64) Entry {
	return Entry{
		ID:              uuid.New(),
		ClientID:        clientID,
		Date:            date,
		DocNo:           docNo,
		Description:     description,
		AccountCode:     accountCode,
		AccountName:     accounts.Name(accountCode, ""),
		Debit:           debit,
		Credit:          credit,
		SystemGenerated: true,
		CreatedBy:       "system",
	}
}

// BalancedPair emits the debit and credit sides of one balanced transaction.
func BalancedPair(clientID string, date time.Time, docNo, description, debitAccount, creditAccount string, amount float64) []Entry {
	return []Entry{
		NewLine(clientID, date, docNo, description, debitAccount, amount, 0),
		NewLine(clientID, date, docNo, description, creditAccount, 0, amount),
	}
}
