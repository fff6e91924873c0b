package journals

import (
	"fmt"

	"github.com/meridian-books/meridian/internal/accounting/shared"
)

// Problem is a single validation finding. Findings are collected, not thrown,
// so a caller can render every problem in a batch at once.
type Problem struct {
	DocNo   string `json:"docNo,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// BatchResult reports whether a batch may be posted.
type BatchResult struct {
	OK       bool      `json:"ok"`
	Problems []Problem `json:"problems,omitempty"`
}

func (r *BatchResult) add(docNo, field, message string) {
	r.Problems = append(r.Problems, Problem{DocNo: docNo, Field: field, Message: message})
}

// ValidateBatch checks a posting batch: required fields, non-negative
// amounts, single-sided lines, one client per batch, and the double-entry
// invariant per doc_no group. Domain findings never surface as errors.
func ValidateBatch(entries []Entry) BatchResult {
	res := BatchResult{}
	if len(entries) == 0 {
		res.add("", "", "batch is empty")
		res.OK = false
		return res
	}

	clientID := entries[0].ClientID
	type docTotal struct{ debit, credit float64 }
	docs := map[string]*docTotal{}
	docOrder := []string{}

	for i, e := range entries {
		ref := e.DocNo
		if e.ClientID == "" {
			res.add(ref, "clientId", fmt.Sprintf("line %d: client id required", i))
		} else if e.ClientID != clientID {
			res.add(ref, "clientId", fmt.Sprintf("line %d: batch spans multiple clients", i))
		}
		if e.Date.IsZero() {
			res.add(ref, "date", fmt.Sprintf("line %d: date required", i))
		}
		if e.DocNo == "" {
			res.add(ref, "docNo", fmt.Sprintf("line %d: doc no required", i))
		}
		if e.AccountCode == "" {
			res.add(ref, "accountCode", fmt.Sprintf("line %d: account code required", i))
		}
		if e.Debit < 0 || e.Credit < 0 {
			res.add(ref, "amount", fmt.Sprintf("line %d: negative amount", i))
		}
		if e.Debit > 0 && e.Credit > 0 {
			res.add(ref, "amount", fmt.Sprintf("line %d: cannot carry both debit and credit", i))
		}
		if e.Debit == 0 && e.Credit == 0 {
			res.add(ref, "amount", fmt.Sprintf("line %d: zero amount", i))
		}
		tot, ok := docs[e.DocNo]
		if !ok {
			tot = &docTotal{}
			docs[e.DocNo] = tot
			docOrder = append(docOrder, e.DocNo)
		}
		tot.debit += e.Debit
		tot.credit += e.Credit
	}

	for _, docNo := range docOrder {
		tot := docs[docNo]
		if !shared.WithinTolerance(tot.debit, tot.credit) {
			res.add(docNo, "", fmt.Sprintf("unbalanced document: debit %.2f credit %.2f difference %.2f",
				tot.debit, tot.credit, tot.debit-tot.credit))
		}
	}

	res.OK = len(res.Problems) == 0
	return res
}
