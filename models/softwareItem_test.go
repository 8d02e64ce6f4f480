package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewSoftwareItem_ResolvedAllocation(t *testing.T) {
	zero := decimal.Zero
	forty := decimal.NewFromInt(40)

	cases := []struct {
		name  string
		input NewSoftwareItem
		want  string
	}{
		{"absent defaults to 100", NewSoftwareItem{}, "100"},
		{"explicit zero is a real zero allocation", NewSoftwareItem{AllocationPercent: &zero}, "0"},
		{"explicit value is kept", NewSoftwareItem{AllocationPercent: &forty}, "40"},
	}
	for _, tc := range cases {
		if got := tc.input.resolvedAllocation(); got.String() != tc.want {
			t.Fatalf("%s: resolvedAllocation() = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestNewSoftwareItem_ValidateAllocation(t *testing.T) {
	zero := decimal.Zero
	hundred := decimal.NewFromInt(100)
	negative := decimal.NewFromInt(-1)
	over := decimal.NewFromInt(101)

	valid := []NewSoftwareItem{
		{Name: "Zoom"},
		{Name: "Zoom", AllocationPercent: &zero},
		{Name: "Zoom", AllocationPercent: &hundred},
	}
	for i, input := range valid {
		if err := input.validate(); err != nil {
			t.Fatalf("case %d: expected valid, got %v", i, err)
		}
	}

	invalid := []NewSoftwareItem{
		{Name: "Zoom", AllocationPercent: &negative},
		{Name: "Zoom", AllocationPercent: &over},
	}
	for i, input := range invalid {
		if err := input.validate(); err == nil {
			t.Fatalf("case %d: expected allocation validation error", i)
		}
	}
}
