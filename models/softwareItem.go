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

type SoftwareItem struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	Name               string          `gorm:"size:255;not null" json:"name" binding:"required"`
	Vendor             string          `gorm:"size:255" json:"vendor"`
	VendorAliases      StringList      `gorm:"type:json" json:"vendor_aliases"`
	DefaultMonthlyCost decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"default_monthly_cost"`
	AllocationPercent  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:100" json:"techpros_allocation_percent"`
	Category           string          `gorm:"size:64" json:"category"`
	Active             *bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// SoftwareCost is a monthly actual for a subscription. Rows exist only when
// something differs from the item defaults; reconciled months are exactly
// the months that have at least one row.
type SoftwareCost struct {
	ID                int          `gorm:"primary_key" json:"id"`
	SoftwareItemId    int          `gorm:"not null;uniqueIndex:uniq_item_month" json:"software_item_id"`
	CostMonth         string       `gorm:"size:7;not null;uniqueIndex:uniq_item_month" json:"cost_month"`
	ActualCost        CostOverride `gorm:"type:decimal(20,4)" json:"actual_cost"`
	AllocationPercent CostOverride `gorm:"type:decimal(5,2)" json:"techpros_allocation_percent"`
	Notes             string       `gorm:"type:text" json:"notes"`
	SourceDocumentId  *int         `gorm:"index" json:"source_document_id"`
	CreatedAt         time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c SoftwareCost) IsZeroDiff() bool {
	return !c.ActualCost.Valid && !c.AllocationPercent.Valid && c.Notes == ""
}

type NewSoftwareItem struct {
	Name               string           `json:"name" binding:"required"`
	Vendor             string           `json:"vendor"`
	VendorAliases      []string         `json:"vendor_aliases"`
	DefaultMonthlyCost decimal.Decimal  `json:"default_monthly_cost"`
	AllocationPercent  *decimal.Decimal `json:"techpros_allocation_percent"`
	Category           string           `json:"category"`
	Active             *bool            `json:"active"`
}

func (input *NewSoftwareItem) validate() error {
	if input.AllocationPercent != nil {
		hundred := decimal.NewFromInt(100)
		if input.AllocationPercent.IsNegative() || input.AllocationPercent.GreaterThan(hundred) {
			return errors.New("allocation percent must be between 0 and 100")
		}
	}
	return nil
}

// resolvedAllocation defaults to 100% when the field is absent. An explicit
// zero is a real 0% allocation and is kept, on create and update alike.
func (input *NewSoftwareItem) resolvedAllocation() decimal.Decimal {
	if input.AllocationPercent == nil {
		return decimal.NewFromInt(100)
	}
	return *input.AllocationPercent
}

func CreateSoftwareItem(ctx context.Context, input *NewSoftwareItem) (*SoftwareItem, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	item := SoftwareItem{
		Name:               input.Name,
		Vendor:             input.Vendor,
		VendorAliases:      StringList(utils.UniqueSlice(input.VendorAliases)),
		DefaultMonthlyCost: input.DefaultMonthlyCost,
		AllocationPercent:  input.resolvedAllocation(),
		Category:           input.Category,
		Active:             &active,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	InvalidateRegistryCache(registryKeySoftwareItems)
	return &item, nil
}

func UpdateSoftwareItem(ctx context.Context, id int, input *NewSoftwareItem) (*SoftwareItem, error) {
	item, err := utils.FetchSingleModel[SoftwareItem](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(item).Updates(map[string]interface{}{
		"Name":               input.Name,
		"Vendor":             input.Vendor,
		"VendorAliases":      StringList(utils.UniqueSlice(input.VendorAliases)),
		"DefaultMonthlyCost": input.DefaultMonthlyCost,
		"AllocationPercent":  input.resolvedAllocation(),
		"Category":           input.Category,
		"Active":             active,
	}).Error; err != nil {
		return nil, err
	}
	InvalidateRegistryCache(registryKeySoftwareItems)
	return item, nil
}

func GetSoftwareItem(ctx context.Context, id int) (*SoftwareItem, error) {
	return utils.FetchSingleModel[SoftwareItem](ctx, id)
}

// UpsertSoftwareCostTx mirrors UpsertHRCostTx: unique on (item, month),
// zero-diff collapses to an absent row.
func UpsertSoftwareCostTx(tx *gorm.DB, ctx context.Context, input *SoftwareCost) error {
	if !utils.IsValidMonth(input.CostMonth) {
		return errors.New("cost month must be YYYY-MM")
	}

	var existing SoftwareCost
	readErr := tx.WithContext(ctx).
		Where("software_item_id = ? AND cost_month = ?", input.SoftwareItemId, input.CostMonth).
		First(&existing).Error

	action, err := classifyCostUpsert(readErr, input.IsZeroDiff())
	if err != nil {
		return err
	}
	switch action {
	case costUpsertNoop:
		return nil
	case costUpsertDelete:
		return tx.WithContext(ctx).Delete(&existing).Error
	case costUpsertCreate:
		createErr := tx.WithContext(ctx).Create(input).Error
		if IsDuplicateKeyErr(createErr) {
			return tx.WithContext(ctx).Model(&SoftwareCost{}).
				Where("software_item_id = ? AND cost_month = ?", input.SoftwareItemId, input.CostMonth).
				Updates(softwareCostUpdates(input)).Error
		}
		return createErr
	default:
		return tx.WithContext(ctx).Model(&existing).Updates(softwareCostUpdates(input)).Error
	}
}

func softwareCostUpdates(input *SoftwareCost) map[string]interface{} {
	return map[string]interface{}{
		"ActualCost":        input.ActualCost,
		"AllocationPercent": input.AllocationPercent,
		"Notes":             input.Notes,
		"SourceDocumentId":  input.SourceDocumentId,
	}
}

func UpsertSoftwareCost(ctx context.Context, input *SoftwareCost) error {
	db := config.GetDB()
	return db.Transaction(func(tx *gorm.DB) error {
		return UpsertSoftwareCostTx(tx, ctx, input)
	})
}

func ListSoftwareCostsForMonth(ctx context.Context, month string) ([]*SoftwareCost, error) {
	db := config.GetDB()
	var results []*SoftwareCost
	if err := db.WithContext(ctx).Where("cost_month = ?", month).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
