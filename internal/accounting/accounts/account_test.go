package accounts

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		code string
		want Type
	}{
		{"11100", TypeAsset},
		{"21600", TypeLiability},
		{"32000", TypeEquity},
		{"41100", TypeRevenue},
		{"53400", TypeExpense},
		{"99999", TypeExpense},
		{"7", TypeExpense},
		{"", TypeExpense},
	}
	for _, tc := range cases {
		if got := Classify(tc.code); got != tc.want {
			t.Fatalf("Classify(%q) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestIsCurrent(t *testing.T) {
	for _, code := range []string{"11100", "11301", "21100", "21900"} {
		if !IsCurrent(code) {
			t.Fatalf("expected %s to be current", code)
		}
	}
	for _, code := range []string{"12401", "22100", "32000", "41100", "53400"} {
		if IsCurrent(code) {
			t.Fatalf("expected %s to be non-current", code)
		}
	}
}

func TestBalanceNormalSides(t *testing.T) {
	if got := Balance("11100", 150, 50); got != 100 {
		t.Fatalf("asset balance = %v, want 100", got)
	}
	if got := Balance("21100", 20, 120); got != 100 {
		t.Fatalf("liability balance = %v, want 100", got)
	}
	if got := Balance("41100", 0, 300); got != 300 {
		t.Fatalf("revenue balance = %v, want 300", got)
	}
	if got := Balance("52100", 300, 0); got != 300 {
		t.Fatalf("expense balance = %v, want 300", got)
	}
}

func TestChartLookup(t *testing.T) {
	entry, ok := Lookup(CodeDepreciationExpense)
	if !ok || entry.Name != "Depreciation Expense" {
		t.Fatalf("unexpected chart entry for 53400: %+v ok=%v", entry, ok)
	}
	if NameTh(CodeRetainedEarnings) == "" {
		t.Fatal("expected Thai name for retained earnings")
	}
	if got := Name("77777", "Custom"); got != "Custom" {
		t.Fatalf("expected fallback name, got %q", got)
	}
}
