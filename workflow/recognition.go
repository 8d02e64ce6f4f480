package workflow

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/techpros/finops_backend/config"
	"github.com/techpros/finops_backend/models"
	"github.com/techpros/finops_backend/utils"
	"gorm.io/gorm"
)

// Revenue recognition scheduling: split an invoice's total into N monthly
// slices starting at a given month. The policy is swappable because the
// historical even split does not rebalance rounding drift (see SpreadEven).

type ScheduleEntry struct {
	Month  string
	Amount decimal.Decimal
}

// SpreadPolicy turns (total, months) into per-month amounts, len == months.
type SpreadPolicy func(total decimal.Decimal, months int) []decimal.Decimal

// SpreadEven gives every month the same half-up-rounded slice. The sum can
// drift from the total by up to a penny per month (100/3 -> 33.33 x 3 =
// 99.99). Kept as the default on purpose: P&L history was built on it.
func SpreadEven(total decimal.Decimal, months int) []decimal.Decimal {
	monthly := total.Div(decimal.NewFromInt(int64(months))).Round(2)
	amounts := make([]decimal.Decimal, months)
	for i := range amounts {
		amounts[i] = monthly
	}
	return amounts
}

// SpreadAbsorbRemainder is the corrected policy: the last month absorbs the
// rounding remainder so the slices always sum to the total exactly.
func SpreadAbsorbRemainder(total decimal.Decimal, months int) []decimal.Decimal {
	amounts := SpreadEven(total, months)
	var sum decimal.Decimal
	for _, a := range amounts[:months-1] {
		sum = sum.Add(a)
	}
	amounts[months-1] = total.Sub(sum)
	return amounts
}

// BuildSchedule produces months_to_spread entries walking forward from
// startMonth with calendar rollover.
func BuildSchedule(total decimal.Decimal, months int, startMonth string, policies ...SpreadPolicy) ([]ScheduleEntry, error) {
	if months < 1 {
		return nil, errors.New("months to spread must be at least 1")
	}
	if _, err := utils.ParseMonth(startMonth); err != nil {
		return nil, err
	}

	policy := SpreadPolicy(SpreadEven)
	if len(policies) > 0 && policies[0] != nil {
		policy = policies[0]
	}
	amounts := policy(total, months)

	entries := make([]ScheduleEntry, months)
	month := startMonth
	for i := 0; i < months; i++ {
		entries[i] = ScheduleEntry{Month: month, Amount: amounts[i]}
		next, err := utils.AddMonths(month, 1)
		if err != nil {
			return nil, err
		}
		month = next
	}
	return entries, nil
}

// BuildRecognitionRows adapts a schedule into model rows for persistence.
func BuildRecognitionRows(total decimal.Decimal, months int, startMonth string) ([]*models.RevenueRecognition, error) {
	entries, err := BuildSchedule(total, months, startMonth)
	if err != nil {
		return nil, err
	}
	rows := make([]*models.RevenueRecognition, len(entries))
	for i, e := range entries {
		rows[i] = &models.RevenueRecognition{Month: e.Month, Amount: e.Amount}
	}
	return rows, nil
}

// RespreadInvoice regenerates the invoice's full recognition schedule from
// its current terms. Used after spread terms were edited directly, or to
// repair a schedule that drifted out of shape.
func RespreadInvoice(ctx context.Context, invoiceId int) (*models.Invoice, error) {
	invoice, err := models.GetInvoice(ctx, invoiceId)
	if err != nil {
		return nil, err
	}
	rows, err := BuildRecognitionRows(invoice.TotalValue, invoice.MonthsToSpread, invoice.StartMonth)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		return models.ReplaceRecognitionScheduleTx(tx, ctx, invoiceId, rows)
	})
	if err != nil {
		return nil, err
	}
	invoice.RevenueRecognitions = rows
	return invoice, nil
}
