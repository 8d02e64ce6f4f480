package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/techpros/finops_backend/config"
	"github.com/techpros/finops_backend/utils"
	"gorm.io/gorm"
)

type TeamMember struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	Name               string          `gorm:"size:255;not null" json:"name" binding:"required"`
	Role               string          `gorm:"size:255" json:"role"`
	EmploymentType     EmploymentType  `gorm:"size:16;not null" json:"employment_type"`
	DefaultMonthlyCost decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"default_monthly_cost"`
	Currency           string          `gorm:"size:3;not null;default:'GBP'" json:"currency"`
	SupplierAliases    StringList      `gorm:"type:json" json:"supplier_aliases"`
	Active             *bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// HRCost is a monthly actual for a team member. A row exists only when the
// month differs from the default (actual override, bonus or notes); a
// zero-diff upsert removes the row instead of keeping it.
type HRCost struct {
	ID               int             `gorm:"primary_key" json:"id"`
	TeamMemberId     int             `gorm:"not null;uniqueIndex:uniq_member_month" json:"team_member_id"`
	CostMonth        string          `gorm:"size:7;not null;uniqueIndex:uniq_member_month" json:"cost_month"`
	ActualCost       CostOverride    `gorm:"type:decimal(20,4)" json:"actual_cost"`
	Bonus            decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"bonus"`
	Notes            string          `gorm:"type:text" json:"notes"`
	SourceDocumentId *int            `gorm:"index" json:"source_document_id"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsZeroDiff reports whether the row carries no information beyond the
// member's defaults and should therefore be absent.
func (c HRCost) IsZeroDiff() bool {
	return !c.ActualCost.Valid && c.Bonus.IsZero() && c.Notes == ""
}

type NewTeamMember struct {
	Name               string          `json:"name" binding:"required"`
	Role               string          `json:"role"`
	EmploymentType     string          `json:"employment_type" binding:"required"`
	DefaultMonthlyCost decimal.Decimal `json:"default_monthly_cost"`
	Currency           string          `json:"currency"`
	SupplierAliases    []string        `json:"supplier_aliases"`
	Active             *bool           `json:"active"`
}

func CreateTeamMember(ctx context.Context, input *NewTeamMember) (*TeamMember, error) {
	employmentType, err := ParseEmploymentType(input.EmploymentType)
	if err != nil {
		return nil, err
	}
	currency := input.Currency
	if currency == "" {
		currency = "GBP"
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	member := TeamMember{
		Name:               input.Name,
		Role:               input.Role,
		EmploymentType:     employmentType,
		DefaultMonthlyCost: input.DefaultMonthlyCost,
		Currency:           currency,
		SupplierAliases:    StringList(utils.UniqueSlice(input.SupplierAliases)),
		Active:             &active,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&member).Error; err != nil {
		return nil, err
	}
	InvalidateRegistryCache(registryKeyTeamMembers)
	return &member, nil
}

func UpdateTeamMember(ctx context.Context, id int, input *NewTeamMember) (*TeamMember, error) {
	member, err := utils.FetchSingleModel[TeamMember](ctx, id)
	if err != nil {
		return nil, err
	}
	employmentType, err := ParseEmploymentType(input.EmploymentType)
	if err != nil {
		return nil, err
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(member).Updates(map[string]interface{}{
		"Name":               input.Name,
		"Role":               input.Role,
		"EmploymentType":     employmentType,
		"DefaultMonthlyCost": input.DefaultMonthlyCost,
		"Currency":           input.Currency,
		"SupplierAliases":    StringList(utils.UniqueSlice(input.SupplierAliases)),
		"Active":             active,
	}).Error; err != nil {
		return nil, err
	}
	InvalidateRegistryCache(registryKeyTeamMembers)
	return member, nil
}

func GetTeamMember(ctx context.Context, id int) (*TeamMember, error) {
	return utils.FetchSingleModel[TeamMember](ctx, id)
}

// UpsertHRCostTx inserts or overwrites the (team_member, month) row inside
// the caller's transaction. Zero-diff input deletes any existing row.
func UpsertHRCostTx(tx *gorm.DB, ctx context.Context, input *HRCost) error {
	if !utils.IsValidMonth(input.CostMonth) {
		return errors.New("cost month must be YYYY-MM")
	}

	var existing HRCost
	readErr := tx.WithContext(ctx).
		Where("team_member_id = ? AND cost_month = ?", input.TeamMemberId, input.CostMonth).
		First(&existing).Error

	action, err := classifyCostUpsert(readErr, input.IsZeroDiff())
	if err != nil {
		return err
	}
	switch action {
	case costUpsertNoop:
		// nothing stored, nothing to collapse
		return nil
	case costUpsertDelete:
		return tx.WithContext(ctx).Delete(&existing).Error
	case costUpsertCreate:
		createErr := tx.WithContext(ctx).Create(input).Error
		if IsDuplicateKeyErr(createErr) {
			// lost the insert race; overwrite the winner's row
			return tx.WithContext(ctx).Model(&HRCost{}).
				Where("team_member_id = ? AND cost_month = ?", input.TeamMemberId, input.CostMonth).
				Updates(hrCostUpdates(input)).Error
		}
		return createErr
	default:
		return tx.WithContext(ctx).Model(&existing).Updates(hrCostUpdates(input)).Error
	}
}

func hrCostUpdates(input *HRCost) map[string]interface{} {
	return map[string]interface{}{
		"ActualCost":       input.ActualCost,
		"Bonus":            input.Bonus,
		"Notes":            input.Notes,
		"SourceDocumentId": input.SourceDocumentId,
	}
}

func UpsertHRCost(ctx context.Context, input *HRCost) error {
	db := config.GetDB()
	return db.Transaction(func(tx *gorm.DB) error {
		return UpsertHRCostTx(tx, ctx, input)
	})
}

func ListHRCostsForMonth(ctx context.Context, month string) ([]*HRCost, error) {
	db := config.GetDB()
	var results []*HRCost
	if err := db.WithContext(ctx).Where("cost_month = ?", month).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
