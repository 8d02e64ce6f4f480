package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// CostOverride is the tagged "Default | Override(value)" variant used by
// HRCost.ActualCost and SoftwareCost.ActualCost/AllocationPercent.
// Default serializes to SQL NULL and JSON null, which is what makes
// "no override" distinguishable from "override of zero".
type CostOverride struct {
	Amount decimal.Decimal
	Valid  bool
}

func Override(amount decimal.Decimal) CostOverride {
	return CostOverride{Amount: amount, Valid: true}
}

func UseDefault() CostOverride {
	return CostOverride{}
}

// OrDefault resolves the effective amount against the entity default.
func (o CostOverride) OrDefault(def decimal.Decimal) decimal.Decimal {
	if o.Valid {
		return o.Amount
	}
	return def
}

func (o CostOverride) Value() (driver.Value, error) {
	if !o.Valid {
		return nil, nil
	}
	return o.Amount.Value()
}

func (o *CostOverride) Scan(value interface{}) error {
	if value == nil {
		*o = CostOverride{}
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	*o = CostOverride{Amount: d, Valid: true}
	return nil
}

func (o CostOverride) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Amount)
}

func (o *CostOverride) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = CostOverride{}
		return nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return errors.New("cost override must be a decimal number or null")
	}
	*o = CostOverride{Amount: d, Valid: true}
	return nil
}
