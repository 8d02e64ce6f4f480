package models

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/techpros/finops_backend/utils"
)

// MonthlyPnL is the P&L view for one accounting month: recognized revenue
// less HR costs less business-allocated software costs. Defaults are used
// where no override row exists; Reconciled marks months with actuals.
type MonthlyPnL struct {
	Month             string          `json:"month"`
	RecognizedRevenue decimal.Decimal `json:"recognized_revenue"`
	HRCostTotal       decimal.Decimal `json:"hr_cost_total"`
	SoftwareCostTotal decimal.Decimal `json:"software_cost_total"`
	NetResult         decimal.Decimal `json:"net_result"`
	HRLines           []PnLLine       `json:"hr_lines"`
	SoftwareLines     []PnLLine       `json:"software_lines"`
}

type PnLLine struct {
	Id         int             `json:"id"`
	Name       string          `json:"name"`
	Category   string          `json:"category,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Reconciled bool            `json:"reconciled"`
}

func GetMonthlyPnL(ctx context.Context, month string) (*MonthlyPnL, error) {
	if !utils.IsValidMonth(month) {
		return nil, errors.New("month must be YYYY-MM")
	}

	revenue, err := RecognizedRevenueForMonth(ctx, month)
	if err != nil {
		return nil, err
	}

	members, err := ListTeamMembers(ctx)
	if err != nil {
		return nil, err
	}
	hrRows, err := ListHRCostsForMonth(ctx, month)
	if err != nil {
		return nil, err
	}
	hrByMember := make(map[int]*HRCost, len(hrRows))
	for _, row := range hrRows {
		hrByMember[row.TeamMemberId] = row
	}

	report := MonthlyPnL{Month: month, RecognizedRevenue: revenue}
	for _, member := range members {
		cost := member.DefaultMonthlyCost
		reconciled := false
		if row, ok := hrByMember[member.ID]; ok {
			cost = row.ActualCost.OrDefault(member.DefaultMonthlyCost).Add(row.Bonus)
			reconciled = true
		}
		report.HRLines = append(report.HRLines, PnLLine{
			Id:         member.ID,
			Name:       member.Name,
			Category:   string(member.EmploymentType),
			Amount:     cost,
			Reconciled: reconciled,
		})
		report.HRCostTotal = report.HRCostTotal.Add(cost)
	}

	items, err := ListSoftwareItems(ctx)
	if err != nil {
		return nil, err
	}
	swRows, err := ListSoftwareCostsForMonth(ctx, month)
	if err != nil {
		return nil, err
	}
	swByItem := make(map[int]*SoftwareCost, len(swRows))
	for _, row := range swRows {
		swByItem[row.SoftwareItemId] = row
	}

	hundred := decimal.NewFromInt(100)
	for _, item := range items {
		cost := item.DefaultMonthlyCost
		allocation := item.AllocationPercent
		reconciled := false
		if row, ok := swByItem[item.ID]; ok {
			cost = row.ActualCost.OrDefault(item.DefaultMonthlyCost)
			allocation = row.AllocationPercent.OrDefault(item.AllocationPercent)
			reconciled = true
		}
		allocated := cost.Mul(allocation).Div(hundred).Round(2)
		report.SoftwareLines = append(report.SoftwareLines, PnLLine{
			Id:         item.ID,
			Name:       item.Name,
			Category:   item.Category,
			Amount:     allocated,
			Reconciled: reconciled,
		})
		report.SoftwareCostTotal = report.SoftwareCostTotal.Add(allocated)
	}

	report.NetResult = report.RecognizedRevenue.
		Sub(report.HRCostTotal).
		Sub(report.SoftwareCostTotal)
	return &report, nil
}
