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

// Contract links a client to commercial terms. Read-mostly: shown alongside
// inbox review, not consumed by recognition math.
type Contract struct {
	ID               int             `gorm:"primary_key" json:"id"`
	ClientId         int             `gorm:"index;not null" json:"client_id"`
	Client           *Client         `json:"client,omitempty"`
	Name             string          `gorm:"size:255;not null" json:"name"`
	MonthlyValue     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"monthly_value"`
	TotalValue       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_value"`
	StartDate        *time.Time      `json:"start_date"`
	EndDate          *time.Time      `json:"end_date"`
	SourceDocumentId *int            `gorm:"index" json:"source_document_id"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewContract struct {
	ClientId     int             `json:"client_id" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	MonthlyValue decimal.Decimal `json:"monthly_value"`
	TotalValue   decimal.Decimal `json:"total_value"`
	StartDate    *time.Time      `json:"start_date"`
	EndDate      *time.Time      `json:"end_date"`
}

// CreateContractTx inserts the contract inside the caller's transaction so
// the import engine can pair it with the document status change.
func CreateContractTx(tx *gorm.DB, ctx context.Context, input *NewContract, sourceDocumentId *int) (*Contract, error) {
	if err := utils.ValidateResourceId[Client](ctx, input.ClientId); err != nil {
		return nil, errors.New("client not found")
	}
	contract := Contract{
		ClientId:         input.ClientId,
		Name:             input.Name,
		MonthlyValue:     input.MonthlyValue,
		TotalValue:       input.TotalValue,
		StartDate:        input.StartDate,
		EndDate:          input.EndDate,
		SourceDocumentId: sourceDocumentId,
	}
	if err := tx.WithContext(ctx).Create(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func CreateContract(ctx context.Context, input *NewContract) (*Contract, error) {
	return CreateContractTx(config.GetDB(), ctx, input, nil)
}

func GetContract(ctx context.Context, id int) (*Contract, error) {
	return utils.FetchSingleModel[Contract](ctx, id, "Client")
}

func ListContracts(ctx context.Context, clientId *int) ([]*Contract, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Client").Order("start_date DESC")
	if clientId != nil && *clientId > 0 {
		dbCtx = dbCtx.Where("client_id = ?", *clientId)
	}
	var results []*Contract
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
