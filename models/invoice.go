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

type Invoice struct {
	ID                  int                   `gorm:"primary_key" json:"id"`
	InvoiceNumber       string                `gorm:"size:255;not null;index" json:"invoice_number"`
	ClientId            int                   `gorm:"index;not null" json:"client_id"`
	Client              *Client               `json:"client,omitempty"`
	InvoiceDate         time.Time             `gorm:"not null" json:"invoice_date"`
	TotalValue          decimal.Decimal       `gorm:"type:decimal(20,4);not null" json:"total_value"`
	Currency            string                `gorm:"size:3;not null;default:'GBP'" json:"currency"`
	MonthsToSpread      int                   `gorm:"not null;default:1" json:"months_to_spread"`
	StartMonth          string                `gorm:"size:7;not null" json:"start_month"`
	Status              InvoiceStatus         `gorm:"size:16;not null;default:'pending'" json:"status"`
	PaymentReceivedDate *time.Time            `json:"payment_received_date"`
	SourceDocumentId    *int                  `gorm:"index" json:"source_document_id"`
	RevenueRecognitions []*RevenueRecognition `gorm:"constraint:OnDelete:CASCADE" json:"revenue_recognitions,omitempty"`
	CreatedAt           time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

// RevenueRecognition is one accrual slice of an invoice. Rows are only ever
// replaced as a full set, never patched individually.
type RevenueRecognition struct {
	ID        int             `gorm:"primary_key" json:"id"`
	InvoiceId int             `gorm:"index;not null" json:"invoice_id"`
	Month     string          `gorm:"size:7;not null;index" json:"month"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
}

type NewInvoice struct {
	InvoiceNumber       string          `json:"invoice_number" binding:"required"`
	ClientId            int             `json:"client_id" binding:"required"`
	InvoiceDate         time.Time       `json:"invoice_date" binding:"required"`
	TotalValue          decimal.Decimal `json:"total_value" binding:"required"`
	Currency            string          `json:"currency"`
	MonthsToSpread      int             `json:"months_to_spread" binding:"required,min=1"`
	StartMonth          string          `json:"start_month" binding:"required"`
	Status              InvoiceStatus   `json:"status"`
	PaymentReceivedDate *time.Time      `json:"payment_received_date"`
}

func (input *NewInvoice) validate(ctx context.Context) error {
	if err := utils.ValidateResourceId[Client](ctx, input.ClientId); err != nil {
		return errors.New("client not found")
	}
	if input.MonthsToSpread < 1 {
		return errors.New("months to spread must be at least 1")
	}
	if !input.TotalValue.IsPositive() {
		return errors.New("total value must be positive")
	}
	if !utils.IsValidMonth(input.StartMonth) {
		return errors.New("start month must be YYYY-MM")
	}
	if input.Status != "" {
		if _, err := ParseInvoiceStatus(string(input.Status)); err != nil {
			return err
		}
	}
	return nil
}

func (input *NewInvoice) mapInput() *Invoice {
	currency := input.Currency
	if currency == "" {
		currency = "GBP"
	}
	status := input.Status
	if status == "" {
		status = InvoiceStatusPending
	}
	return &Invoice{
		InvoiceNumber:       input.InvoiceNumber,
		ClientId:            input.ClientId,
		InvoiceDate:         input.InvoiceDate,
		TotalValue:          input.TotalValue,
		Currency:            currency,
		MonthsToSpread:      input.MonthsToSpread,
		StartMonth:          input.StartMonth,
		Status:              status,
		PaymentReceivedDate: input.PaymentReceivedDate,
	}
}

// CreateInvoiceTx inserts the invoice and its full recognition row set inside
// the caller's transaction. The rows come from the revenue scheduler; their
// count must equal MonthsToSpread.
func CreateInvoiceTx(tx *gorm.DB, ctx context.Context, input *NewInvoice, recognitions []*RevenueRecognition, sourceDocumentId *int) (*Invoice, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	if len(recognitions) != input.MonthsToSpread {
		return nil, errors.New("recognition row count does not match months to spread")
	}

	invoice := input.mapInput()
	invoice.SourceDocumentId = sourceDocumentId
	if err := tx.WithContext(ctx).Create(invoice).Error; err != nil {
		return nil, err
	}
	for _, row := range recognitions {
		row.InvoiceId = invoice.ID
	}
	if err := tx.WithContext(ctx).Create(&recognitions).Error; err != nil {
		return nil, err
	}
	invoice.RevenueRecognitions = recognitions
	return invoice, nil
}

func CreateInvoice(ctx context.Context, input *NewInvoice, recognitions []*RevenueRecognition) (*Invoice, error) {
	db := config.GetDB()
	var invoice *Invoice
	err := db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		invoice, txErr = CreateInvoiceTx(tx, ctx, input, recognitions, nil)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// ReplaceRecognitionScheduleTx deletes the invoice's existing recognition
// rows and inserts the new set. Full delete-and-regenerate keeps the row set
// exactly months_to_spread rows starting at the configured start.
func ReplaceRecognitionScheduleTx(tx *gorm.DB, ctx context.Context, invoiceId int, recognitions []*RevenueRecognition) error {
	if err := tx.WithContext(ctx).Where("invoice_id = ?", invoiceId).
		Delete(&RevenueRecognition{}).Error; err != nil {
		return err
	}
	for _, row := range recognitions {
		row.InvoiceId = invoiceId
	}
	return tx.WithContext(ctx).Create(&recognitions).Error
}

func UpdateInvoice(ctx context.Context, id int, input *NewInvoice, recognitions []*RevenueRecognition) (*Invoice, error) {
	invoice, err := utils.FetchSingleModel[Invoice](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	if len(recognitions) != input.MonthsToSpread {
		return nil, errors.New("recognition row count does not match months to spread")
	}

	update := input.mapInput()
	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Model(invoice).Updates(map[string]interface{}{
			"InvoiceNumber":       update.InvoiceNumber,
			"ClientId":            update.ClientId,
			"InvoiceDate":         update.InvoiceDate,
			"TotalValue":          update.TotalValue,
			"Currency":            update.Currency,
			"MonthsToSpread":      update.MonthsToSpread,
			"StartMonth":          update.StartMonth,
			"Status":              update.Status,
			"PaymentReceivedDate": update.PaymentReceivedDate,
		}).Error; err != nil {
			return err
		}
		return ReplaceRecognitionScheduleTx(tx, ctx, id, recognitions)
	})
	if err != nil {
		return nil, err
	}
	invoice.RevenueRecognitions = recognitions
	return invoice, nil
}

// DeleteInvoice cascades to the invoice's recognition rows and no others.
func DeleteInvoice(ctx context.Context, id int) error {
	invoice, err := utils.FetchSingleModel[Invoice](ctx, id)
	if err != nil {
		return err
	}
	db := config.GetDB()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Where("invoice_id = ?", id).
			Delete(&RevenueRecognition{}).Error; err != nil {
			return err
		}
		return tx.WithContext(ctx).Delete(invoice).Error
	})
}

func GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	return utils.FetchSingleModel[Invoice](ctx, id, "Client", "RevenueRecognitions")
}

func ListInvoices(ctx context.Context, clientId *int) ([]*Invoice, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Client").Preload("RevenueRecognitions").
		Order("invoice_date DESC")
	if clientId != nil && *clientId > 0 {
		dbCtx = dbCtx.Where("client_id = ?", *clientId)
	}
	var results []*Invoice
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// RecognizedRevenueForMonth sums recognition slices across all invoices.
func RecognizedRevenueForMonth(ctx context.Context, month string) (decimal.Decimal, error) {
	db := config.GetDB()
	var total decimal.NullDecimal
	if err := db.WithContext(ctx).Model(&RevenueRecognition{}).
		Where("month = ?", month).
		Select("SUM(amount)").Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
