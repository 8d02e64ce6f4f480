package workflow

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestBuildSchedule_EvenSplit(t *testing.T) {
	entries, err := BuildSchedule(decimal.NewFromInt(1200), 3, "2026-01")
	if err != nil {
		t.Fatalf("BuildSchedule error: %v", err)
	}
	wantMonths := []string{"2026-01", "2026-02", "2026-03"}
	want := decimal.NewFromInt(400)
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, e := range entries {
		if e.Month != wantMonths[i] {
			t.Fatalf("entry %d month = %q, want %q", i, e.Month, wantMonths[i])
		}
		if !e.Amount.Equal(want) {
			t.Fatalf("entry %d amount = %s, want %s", i, e.Amount, want)
		}
	}
}

// The default policy keeps the historical rounding behavior: every month is
// the rounded quotient, so the sum may drift from the total.
func TestSpreadEven_RoundingDriftIsPreserved(t *testing.T) {
	entries, err := BuildSchedule(decimal.NewFromInt(100), 3, "2026-01")
	if err != nil {
		t.Fatalf("BuildSchedule error: %v", err)
	}
	want := decimal.NewFromFloat(33.33)
	sum := decimal.Zero
	for _, e := range entries {
		if !e.Amount.Equal(want) {
			t.Fatalf("amount = %s, want %s", e.Amount, want)
		}
		sum = sum.Add(e.Amount)
	}
	if !sum.Equal(decimal.NewFromFloat(99.99)) {
		t.Fatalf("sum = %s, want 99.99 (drift preserved)", sum)
	}
}

func TestSpreadAbsorbRemainder_SumsToTotal(t *testing.T) {
	total := decimal.NewFromInt(100)
	entries, err := BuildSchedule(total, 3, "2026-01", SpreadAbsorbRemainder)
	if err != nil {
		t.Fatalf("BuildSchedule error: %v", err)
	}
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	if !sum.Equal(total) {
		t.Fatalf("sum = %s, want %s", sum, total)
	}
	if !entries[2].Amount.Equal(decimal.NewFromFloat(33.34)) {
		t.Fatalf("last month = %s, want 33.34", entries[2].Amount)
	}
}

func TestBuildSchedule_YearRollover(t *testing.T) {
	entries, err := BuildSchedule(decimal.NewFromInt(4000), 4, "2025-11")
	if err != nil {
		t.Fatalf("BuildSchedule error: %v", err)
	}
	want := []string{"2025-11", "2025-12", "2026-01", "2026-02"}
	for i, e := range entries {
		if e.Month != want[i] {
			t.Fatalf("entry %d month = %q, want %q", i, e.Month, want[i])
		}
	}
}

func TestBuildSchedule_SingleMonth(t *testing.T) {
	entries, err := BuildSchedule(decimal.NewFromFloat(999.99), 1, "2026-05")
	if err != nil {
		t.Fatalf("BuildSchedule error: %v", err)
	}
	if len(entries) != 1 || !entries[0].Amount.Equal(decimal.NewFromFloat(999.99)) {
		t.Fatalf("got %+v, want single full-amount entry", entries)
	}
}

func TestBuildSchedule_RejectsBadInput(t *testing.T) {
	if _, err := BuildSchedule(decimal.NewFromInt(100), 0, "2026-01"); err == nil {
		t.Fatal("expected error for zero months")
	}
	if _, err := BuildSchedule(decimal.NewFromInt(100), 3, "2026-13"); err == nil {
		t.Fatal("expected error for invalid start month")
	}
}
