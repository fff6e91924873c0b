// Package close owns the accounting period lifecycle and the month-end close
// run: depreciation, accruals, provisions, and the closing transfer, posted
// as balanced batches under a period guard.
package close

import (
	"fmt"
	"time"

	"github.com/meridian-books/meridian/internal/accounting/shared"
)

// PeriodStatus enumerates period lifecycle states. A period moves strictly
// OPEN -> CLOSING -> CLOSED; once CLOSED neither postings nor another close
// run are accepted.
type PeriodStatus string

const (
	PeriodStatusOpen    PeriodStatus = "OPEN"
	PeriodStatusClosing PeriodStatus = "CLOSING"
	PeriodStatusClosed  PeriodStatus = "CLOSED"
)

// Period is the stored lifecycle record for one client month.
type Period struct {
	ID              int64
	ClientID        string
	Code            string
	Status          PeriodStatus
	ProfitBeforeTax float64
	CITAmount       float64
	NetProfit       float64
	ClosedBy        string
	ClosedAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RunCloseInput bundles the parameters for a close run.
type RunCloseInput struct {
	ClientID string
	Period   string
	ActorID  string
	CITRate  float64
}

// Validate ensures the close request is coherent.
func (in RunCloseInput) Validate() error {
	if in.ClientID == "" {
		return fmt.Errorf("%w: client id required", shared.ErrInvalidInput)
	}
	if in.ActorID == "" {
		return fmt.Errorf("%w: actor required", shared.ErrInvalidInput)
	}
	if _, err := shared.ParsePeriod(in.Period); err != nil {
		return err
	}
	if in.CITRate < 0 || in.CITRate >= 1 {
		return fmt.Errorf("%w: cit rate out of range", shared.ErrInvalidInput)
	}
	return nil
}

// Summary is the outcome of a completed close run.
type Summary struct {
	ClientID          string  `json:"clientId"`
	Period            string  `json:"period"`
	ProfitBeforeTax   float64 `json:"profitBeforeTax"`
	CITAmount         float64 `json:"citAmount"`
	NetProfit         float64 `json:"netProfit"`
	TotalDepreciation float64 `json:"totalDepreciation"`
	TotalProvision    float64 `json:"totalProvision"`
	AccrualsPosted    int     `json:"accrualsPosted"`
	GeneratedLines    int     `json:"generatedLines"`
	ClosingLines      int     `json:"closingLines"`
}

// AuditEvent records who closed what, for the firm's audit trail.
type AuditEvent struct {
	ActorID  string
	Action   string
	ClientID string
	Period   string
	Meta     map[string]any
	At       time.Time
}
