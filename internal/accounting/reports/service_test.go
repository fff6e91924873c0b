package reports

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-books/meridian/internal/accounting/journals"
	"github.com/meridian-books/meridian/internal/accounting/reportcache"
	"github.com/meridian-books/meridian/internal/accounting/shared"
)

type fakeLedger struct {
	entries   []journals.Entry
	listCalls int
}

func (f *fakeLedger) ListEntries(_ context.Context, clientID string, from, to *time.Time) ([]journals.Entry, error) {
	f.listCalls++
	var out []journals.Entry
	for _, e := range f.entries {
		if e.ClientID != clientID {
			continue
		}
		if from != nil && e.Date.Before(*from) {
			continue
		}
		if to != nil && e.Date.After(*to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeLedger) GetClientName(_ context.Context, clientID string) (string, error) {
	return "Test Client", nil
}

func newReportService(ledger *fakeLedger) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(ledger, reportcache.NewMemory(0), time.Minute, logger)
}

func TestTrialBalanceCachesRenderedReport(t *testing.T) {
	ledger := &fakeLedger{entries: []journals.Entry{
		journals.NewLine("C001", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "INV-1", "Sale", "41100", 0, 1000),
		journals.NewLine("C001", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "INV-1", "Sale", "11100", 1000, 0),
	}}
	svc := newReportService(ledger)
	ctx := context.Background()

	first, err := svc.TrialBalance(ctx, "C001", "2024-03")
	require.NoError(t, err)
	require.True(t, first.IsBalanced)
	require.Equal(t, 1, ledger.listCalls)

	second, err := svc.TrialBalance(ctx, "C001", "2024-03")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, ledger.listCalls)
}

func TestTrialBalanceRejectsBadPeriod(t *testing.T) {
	svc := newReportService(&fakeLedger{})
	_, err := svc.TrialBalance(context.Background(), "C001", "March 2024")
	require.ErrorIs(t, err, shared.ErrInvalidPeriod)
}

func TestBalanceSheetCachedPerDate(t *testing.T) {
	ledger := &fakeLedger{entries: []journals.Entry{
		journals.NewLine("C001", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), "CAP-1", "Capital", "11100", 50000, 0),
		journals.NewLine("C001", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), "CAP-1", "Capital", "31000", 0, 50000),
	}}
	svc := newReportService(ledger)
	ctx := context.Background()

	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	first, err := svc.BalanceSheet(ctx, "C001", asOf)
	require.NoError(t, err)
	require.True(t, first.IsBalanced)
	require.Equal(t, 1, ledger.listCalls)

	_, err = svc.BalanceSheet(ctx, "C001", asOf)
	require.NoError(t, err)
	require.Equal(t, 1, ledger.listCalls)

	// A different as-of date is a different cache entry.
	_, err = svc.BalanceSheet(ctx, "C001", asOf.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Equal(t, 2, ledger.listCalls)
}

func TestIncomeStatementMatchesClosingFigures(t *testing.T) {
	ledger := &fakeLedger{entries: []journals.Entry{
		journals.NewLine("C001", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "INV-1", "Revenue", "41100", 0, 40000),
		journals.NewLine("C001", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "EXP-1", "Salaries", "52100", 8000, 0),
	}}
	svc := newReportService(ledger)

	report, err := svc.IncomeStatement(context.Background(), "C001", "2024-03")
	require.NoError(t, err)
	require.InDelta(t, 32000.0, report.ProfitBeforeTax, 0.001)
	require.InDelta(t, 6400.0, report.IncomeTaxExpense, 0.001)
	require.InDelta(t, 25600.0, report.NetProfit, 0.001)
}
