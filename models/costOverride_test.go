package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCostOverride_ZeroIsNotDefault(t *testing.T) {
	zero := Override(decimal.Zero)
	if !zero.Valid {
		t.Fatal("Override(0) must be a valid override, not default")
	}
	def := decimal.NewFromInt(6000)
	if got := zero.OrDefault(def); !got.IsZero() {
		t.Fatalf("override of zero resolved to %s, want 0", got)
	}
	if got := UseDefault().OrDefault(def); !got.Equal(def) {
		t.Fatalf("default resolved to %s, want %s", got, def)
	}
}

func TestCostOverride_SQLRoundTrip(t *testing.T) {
	v, err := UseDefault().Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	if v != nil {
		t.Fatalf("default must store NULL, got %v", v)
	}

	var scanned CostOverride
	if err := scanned.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error: %v", err)
	}
	if scanned.Valid {
		t.Fatal("NULL must scan to default")
	}

	if err := scanned.Scan([]byte("159.00")); err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if !scanned.Valid || !scanned.Amount.Equal(decimal.NewFromInt(159)) {
		t.Fatalf("scanned %+v, want valid 159", scanned)
	}
}

func TestCostOverride_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(UseDefault())
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(data) != "null" {
		t.Fatalf("default marshals to %s, want null", data)
	}

	var o CostOverride
	if err := json.Unmarshal([]byte(`"42.50"`), &o); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if !o.Valid || !o.Amount.Equal(decimal.NewFromFloat(42.5)) {
		t.Fatalf("unmarshaled %+v, want valid 42.50", o)
	}

	if err := json.Unmarshal([]byte("null"), &o); err != nil {
		t.Fatalf("unmarshal null error: %v", err)
	}
	if o.Valid {
		t.Fatal("null must unmarshal to default")
	}
}

func TestHRCost_IsZeroDiff(t *testing.T) {
	cases := []struct {
		name string
		cost HRCost
		want bool
	}{
		{"all defaults", HRCost{}, true},
		{"zero override is a diff", HRCost{ActualCost: Override(decimal.Zero)}, false},
		{"bonus is a diff", HRCost{Bonus: decimal.NewFromInt(500)}, false},
		{"notes are a diff", HRCost{Notes: "late invoice"}, false},
	}
	for _, tc := range cases {
		if got := tc.cost.IsZeroDiff(); got != tc.want {
			t.Fatalf("%s: IsZeroDiff() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSoftwareCost_IsZeroDiff(t *testing.T) {
	if !(SoftwareCost{}).IsZeroDiff() {
		t.Fatal("empty software cost must be zero-diff")
	}
	withAllocation := SoftwareCost{AllocationPercent: Override(decimal.NewFromInt(50))}
	if withAllocation.IsZeroDiff() {
		t.Fatal("allocation override must count as a diff")
	}
}
