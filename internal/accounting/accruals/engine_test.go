package accruals

import (
	"testing"
	"time"

	"github.com/meridian-books/meridian/internal/accounting/shared"
)

func period(t *testing.T, code string) shared.Period {
	t.Helper()
	p, err := shared.ParsePeriod(code)
	if err != nil {
		t.Fatalf("parse period: %v", err)
	}
	return p
}

func start(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestRunPairDirections(t *testing.T) {
	items := []Item{
		{ID: "a1", Type: TypePrepaid, PeriodMonths: 12, StartDate: start(2024, 1), MonthlyAmount: 1000, AccountCode: "11500", ExpenseAccountCode: "53100"},
		{ID: "a2", Type: TypeAccruedExpense, PeriodMonths: 12, StartDate: start(2024, 1), MonthlyAmount: 500, AccountCode: "21500", ExpenseAccountCode: "52100"},
		{ID: "a3", Type: TypeAccruedIncome, PeriodMonths: 12, StartDate: start(2024, 1), MonthlyAmount: 250, AccountCode: "11600", ExpenseAccountCode: "42100"},
		{ID: "a4", Type: TypeDeferred, PeriodMonths: 12, StartDate: start(2024, 1), MonthlyAmount: 125, AccountCode: "21700", ExpenseAccountCode: "42100"},
	}
	res := Run(items, "c1", period(t, "2024-03"))
	if len(res.Entries) != 8 {
		t.Fatalf("expected 4 pairs, got %d entries", len(res.Entries))
	}

	type side struct{ dr, cr string }
	want := []side{
		{"53100", "11500"},
		{"52100", "21500"},
		{"11600", "42100"},
		{"21700", "42100"},
	}
	for i, w := range want {
		dr, cr := res.Entries[i*2], res.Entries[i*2+1]
		if dr.AccountCode != w.dr || dr.Debit == 0 {
			t.Fatalf("pair %d debit side = %+v, want account %s", i, dr, w.dr)
		}
		if cr.AccountCode != w.cr || cr.Credit == 0 {
			t.Fatalf("pair %d credit side = %+v, want account %s", i, cr, w.cr)
		}
		if !dr.Date.Equal(period(t, "2024-03").End()) {
			t.Fatalf("pair %d not dated at period end: %v", i, dr.Date)
		}
	}
	if res.Summary[0].MonthsElapsed != 3 {
		t.Fatalf("months elapsed = %d, want 3", res.Summary[0].MonthsElapsed)
	}
}

func TestRunSkipsOutOfWindowItems(t *testing.T) {
	items := []Item{
		{ID: "future", Type: TypePrepaid, PeriodMonths: 6, StartDate: start(2024, 9), MonthlyAmount: 100, AccountCode: "11500", ExpenseAccountCode: "53100"},
		{ID: "done", Type: TypePrepaid, PeriodMonths: 3, StartDate: start(2024, 1), MonthlyAmount: 100, AccountCode: "11500", ExpenseAccountCode: "53100"},
		{ID: "live", Type: TypePrepaid, PeriodMonths: 6, StartDate: start(2024, 3), MonthlyAmount: 100, AccountCode: "11500", ExpenseAccountCode: "53100"},
	}
	res := Run(items, "c1", period(t, "2024-06"))
	if len(res.Summary) != 1 || res.Summary[0].ItemID != "live" {
		t.Fatalf("expected only 'live' recognized, got %+v", res.Summary)
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("expected 2 skips, got %+v", res.Skipped)
	}
	// month 4 of 6
	if res.Summary[0].MonthsElapsed != 4 {
		t.Fatalf("months elapsed = %d, want 4", res.Summary[0].MonthsElapsed)
	}
}

func TestRunLastRecognitionMonth(t *testing.T) {
	item := Item{ID: "edge", Type: TypeAccruedExpense, PeriodMonths: 6, StartDate: start(2024, 1), MonthlyAmount: 100, AccountCode: "21500", ExpenseAccountCode: "52100"}
	if res := Run([]Item{item}, "c1", period(t, "2024-06")); len(res.Summary) != 1 {
		t.Fatal("month 6 of 6 should still recognize")
	}
	if res := Run([]Item{item}, "c1", period(t, "2024-07")); len(res.Summary) != 0 {
		t.Fatal("month 7 of 6 should be fully recognized")
	}
}
