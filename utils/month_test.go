package utils

import (
	"testing"
)

func TestIsValidMonth(t *testing.T) {
	cases := []struct {
		month string
		want  bool
	}{
		{"2026-01", true},
		{"2025-12", true},
		{"2026-13", false},
		{"2026-00", false},
		{"2026-1", false},
		{"202601", false},
		{"", false},
		{"jan-2026", false},
	}
	for _, tc := range cases {
		if got := IsValidMonth(tc.month); got != tc.want {
			t.Fatalf("IsValidMonth(%q) = %v, want %v", tc.month, got, tc.want)
		}
	}
}

func TestAddMonths_CalendarRollover(t *testing.T) {
	cases := []struct {
		month string
		n     int
		want  string
	}{
		{"2025-11", 1, "2025-12"},
		{"2025-11", 2, "2026-01"},
		{"2025-11", 4, "2026-03"},
		{"2026-01", 12, "2027-01"},
		{"2026-03", -3, "2025-12"},
	}
	for _, tc := range cases {
		got, err := AddMonths(tc.month, tc.n)
		if err != nil {
			t.Fatalf("AddMonths(%q, %d) returned error: %v", tc.month, tc.n, err)
		}
		if got != tc.want {
			t.Fatalf("AddMonths(%q, %d) = %q, want %q", tc.month, tc.n, got, tc.want)
		}
	}
}

func TestAddMonths_RejectsInvalid(t *testing.T) {
	if _, err := AddMonths("2026-13", 1); err == nil {
		t.Fatal("expected error for invalid month")
	}
}
