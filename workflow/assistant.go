package workflow

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/techpros/finops_backend/models"
	"github.com/techpros/finops_backend/utils"
)

// Assistant tools: the chat surface calls these instead of raw endpoints so
// every assistant edit goes through the same upsert and zero-diff rules as
// the dashboard forms.

const (
	ToolRecordHRCost        = "record_hr_cost"
	ToolRecordSoftwareCosts = "record_software_costs"
	ToolGetMonthlyPnL       = "get_monthly_pnl"
)

type RecordHRCostInput struct {
	TeamMemberId int              `json:"team_member_id" binding:"required"`
	Month        string           `json:"month" binding:"required"`
	ActualCost   *decimal.Decimal `json:"actual_cost"`
	Bonus        decimal.Decimal  `json:"bonus"`
	Notes        string           `json:"notes"`
}

// RecordHRCost writes one member-month actual. A request carrying no
// override, bonus or notes clears the month back to the default.
func RecordHRCost(ctx context.Context, input RecordHRCostInput) error {
	if _, err := models.GetTeamMember(ctx, input.TeamMemberId); err != nil {
		return err
	}
	actual := models.UseDefault()
	if input.ActualCost != nil {
		actual = models.Override(*input.ActualCost)
	}
	err := models.UpsertHRCost(ctx, &models.HRCost{
		TeamMemberId: input.TeamMemberId,
		CostMonth:    input.Month,
		ActualCost:   actual,
		Bonus:        input.Bonus,
		Notes:        input.Notes,
	})
	if err != nil {
		return err
	}
	Bus().Publish(TopicHRCosts)
	return nil
}

type RecordSoftwareCostInput struct {
	SoftwareItemId    int              `json:"software_item_id" binding:"required"`
	ActualCost        *decimal.Decimal `json:"actual_cost"`
	AllocationPercent *decimal.Decimal `json:"techpros_allocation_percent"`
	Notes             string           `json:"notes"`
}

type RecordSoftwareCostsInput struct {
	Month string                    `json:"month" binding:"required"`
	Items []RecordSoftwareCostInput `json:"items" binding:"required"`
}

// RecordSoftwareCosts writes several subscription actuals for one month.
func RecordSoftwareCosts(ctx context.Context, input RecordSoftwareCostsInput) error {
	if !utils.IsValidMonth(input.Month) {
		return fmt.Errorf("month must be YYYY-MM")
	}
	for _, item := range input.Items {
		if _, err := models.GetSoftwareItem(ctx, item.SoftwareItemId); err != nil {
			return err
		}
		actual := models.UseDefault()
		if item.ActualCost != nil {
			actual = models.Override(*item.ActualCost)
		}
		allocation := models.UseDefault()
		if item.AllocationPercent != nil {
			allocation = models.Override(*item.AllocationPercent)
		}
		err := models.UpsertSoftwareCost(ctx, &models.SoftwareCost{
			SoftwareItemId:    item.SoftwareItemId,
			CostMonth:         input.Month,
			ActualCost:        actual,
			AllocationPercent: allocation,
			Notes:             item.Notes,
		})
		if err != nil {
			return err
		}
	}
	Bus().Publish(TopicSoftwareCosts)
	return nil
}

// ToolCall dispatches a named assistant tool with raw JSON arguments and
// returns a JSON-serializable result.
func ToolCall(ctx context.Context, name string, arguments []byte) (interface{}, error) {
	switch name {
	case ToolRecordHRCost:
		var input RecordHRCostInput
		if err := utils.UnmarshalFromJSON(arguments, &input); err != nil {
			return nil, err
		}
		if err := RecordHRCost(ctx, input); err != nil {
			return nil, err
		}
		return map[string]string{"status": "recorded"}, nil

	case ToolRecordSoftwareCosts:
		var input RecordSoftwareCostsInput
		if err := utils.UnmarshalFromJSON(arguments, &input); err != nil {
			return nil, err
		}
		if err := RecordSoftwareCosts(ctx, input); err != nil {
			return nil, err
		}
		return map[string]string{"status": "recorded"}, nil

	case ToolGetMonthlyPnL:
		var input struct {
			Month string `json:"month"`
		}
		if err := utils.UnmarshalFromJSON(arguments, &input); err != nil {
			return nil, err
		}
		return models.GetMonthlyPnL(ctx, input.Month)

	default:
		return nil, fmt.Errorf("unknown tool %q", name)
	}
}
