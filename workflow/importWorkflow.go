package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/techpros/finops_backend/config"
	"github.com/techpros/finops_backend/models"
	"github.com/techpros/finops_backend/utils"
	"gorm.io/gorm"
)

// Import engine: turn an extracted document into business records and flip
// the document to imported, all inside one transaction. The final status
// change is a compare-and-set, so a document imports at most once no matter
// how many times the endpoint is hit.

type ImportResult struct {
	DocumentId     int    `json:"document_id"`
	InvoiceId      *int   `json:"invoice_id,omitempty"`
	TeamMemberId   *int   `json:"team_member_id,omitempty"`
	RecordsWritten int    `json:"records_written"`
	ImportedAt     string `json:"imported_at"`
}

var errAlreadyImported = errors.New("document already imported or skipped")

// loadImportableDocument fetches the document and checks it belongs to the
// expected category. Pending documents that were never extracted still
// qualify via the classifier's category; the reviewer supplies every field
// as overrides. The status itself is enforced later by the CAS, not here.
func loadImportableDocument(ctx context.Context, documentId int, category models.DocumentCategory) (*models.Document, error) {
	doc, err := models.GetDocument(ctx, documentId)
	if err != nil {
		return nil, err
	}
	if doc.InboxStatus == models.InboxStatusImported || doc.InboxStatus == models.InboxStatusSkipped {
		return nil, errAlreadyImported
	}
	if doc.ImportCategory() != category {
		return nil, fmt.Errorf("document is not a %s", category)
	}
	return doc, nil
}

func markImported(tx *gorm.DB, ctx context.Context, doc *models.Document, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	now := time.Now().UTC()
	updates["imported_at"] = &now
	ok, err := doc.TransitionStatus(tx, ctx, models.ImportableStatuses(), models.InboxStatusImported, updates)
	if err != nil {
		return err
	}
	if !ok {
		return errAlreadyImported
	}
	doc.ImportedAt = &now
	return nil
}

// SalesInvoiceImport lets the reviewer override any extracted field before
// the import runs. Zero-value fields fall back to the extraction.
type SalesInvoiceImport struct {
	ClientId       int             `json:"client_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	InvoiceDate    string          `json:"invoice_date"`
	TotalValue     decimal.Decimal `json:"total_value"`
	Currency       string          `json:"currency"`
	MonthsToSpread int             `json:"months_to_spread"`
	StartMonth     string          `json:"start_month"`
}

// ImportSalesInvoice creates the invoice plus its full recognition schedule
// and marks the document imported, in one transaction.
func ImportSalesInvoice(ctx context.Context, documentId int, overrides SalesInvoiceImport) (*ImportResult, error) {
	doc, err := loadImportableDocument(ctx, documentId, models.DocumentCategorySalesInvoice)
	if err != nil {
		return nil, err
	}
	fields := doc.ExtractedData.SalesInvoice
	if fields == nil {
		// never extracted; every value must come from the overrides
		fields = &models.SalesInvoiceFields{}
	}

	input, err := resolveSalesInvoiceInput(ctx, fields, overrides)
	if err != nil {
		return nil, err
	}
	recognitions, err := BuildRecognitionRows(input.TotalValue, input.MonthsToSpread, input.StartMonth)
	if err != nil {
		return nil, err
	}

	var result *ImportResult
	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		invoice, txErr := models.CreateInvoiceTx(tx, ctx, input, recognitions, &doc.ID)
		if txErr != nil {
			return txErr
		}
		if txErr := markImported(tx, ctx, doc, map[string]interface{}{
			"invoice_id": invoice.ID,
		}); txErr != nil {
			return txErr
		}
		result = &ImportResult{
			DocumentId:     doc.ID,
			InvoiceId:      &invoice.ID,
			RecordsWritten: 1 + len(recognitions),
			ImportedAt:     doc.ImportedAt.Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	Bus().Publish(TopicDocuments)
	Bus().Publish(TopicInvoices)
	return result, nil
}

func resolveSalesInvoiceInput(ctx context.Context, fields *models.SalesInvoiceFields, overrides SalesInvoiceImport) (*models.NewInvoice, error) {
	clientId := overrides.ClientId
	if clientId == 0 {
		clients, err := models.ListClients(ctx)
		if err != nil {
			return nil, err
		}
		match := models.MatchClientByName(fields.ClientName, clients)
		if match.Candidate == nil {
			return nil, fmt.Errorf("no client matches %q; pick one explicitly", fields.ClientName)
		}
		clientId = match.Candidate.Id
	}

	invoiceNumber := overrides.InvoiceNumber
	if invoiceNumber == "" {
		invoiceNumber = fields.InvoiceNumber
	}
	if invoiceNumber == "" {
		return nil, errors.New("invoice number is required")
	}

	dateStr := overrides.InvoiceDate
	if dateStr == "" {
		dateStr = fields.InvoiceDate
	}
	invoiceDate, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("invoice date must be YYYY-MM-DD: %w", err)
	}

	total := overrides.TotalValue
	if total.IsZero() {
		total, err = utils.ParseDecimal(fields.TotalValue)
		if err != nil {
			return nil, fmt.Errorf("total value: %w", err)
		}
	}

	months := overrides.MonthsToSpread
	if months == 0 {
		months = fields.MonthsToSpread
	}
	if months == 0 {
		months = 1
	}

	startMonth := overrides.StartMonth
	if startMonth == "" {
		startMonth = fields.StartMonth
	}
	if startMonth == "" {
		startMonth = invoiceDate.Format("2006-01")
	}

	currency := overrides.Currency
	if currency == "" {
		currency = fields.Currency
	}

	return &models.NewInvoice{
		InvoiceNumber:  invoiceNumber,
		ClientId:       clientId,
		InvoiceDate:    invoiceDate,
		TotalValue:     total,
		Currency:       currency,
		MonthsToSpread: months,
		StartMonth:     startMonth,
	}, nil
}

// CostInvoiceImport carries the reviewer's choices for a supplier invoice.
type CostInvoiceImport struct {
	TeamMemberId int              `json:"team_member_id"`
	Month        string           `json:"month"`
	ActualCost   *decimal.Decimal `json:"actual_cost"`
	Bonus        decimal.Decimal  `json:"bonus"`
	Notes        string           `json:"notes"`
}

// ImportCostInvoice records the invoice amount as the member's actual cost
// for the month. The member comes from the request or, failing that, from
// fuzzy-matching the extracted supplier name.
func ImportCostInvoice(ctx context.Context, documentId int, overrides CostInvoiceImport) (*ImportResult, error) {
	doc, err := loadImportableDocument(ctx, documentId, models.DocumentCategoryCostInvoice)
	if err != nil {
		return nil, err
	}
	fields := doc.ExtractedData.CostInvoice
	if fields == nil {
		fields = &models.CostInvoiceFields{}
	}

	memberId := overrides.TeamMemberId
	if memberId == 0 {
		members, err := models.ListTeamMembers(ctx)
		if err != nil {
			return nil, err
		}
		match := models.MatchTeamMemberBySupplier(fields.SupplierName, members)
		if match.Candidate == nil {
			return nil, fmt.Errorf("no team member matches supplier %q; pick one explicitly", fields.SupplierName)
		}
		memberId = match.Candidate.Id
	}
	if _, err := models.GetTeamMember(ctx, memberId); err != nil {
		return nil, err
	}

	month := overrides.Month
	if month == "" {
		month = fields.Month
	}
	if !utils.IsValidMonth(month) {
		return nil, errors.New("cost month must be YYYY-MM")
	}

	actual := models.UseDefault()
	if overrides.ActualCost != nil {
		actual = models.Override(*overrides.ActualCost)
	} else if fields.Amount != "" {
		amount, err := utils.ParseDecimal(fields.Amount)
		if err != nil {
			return nil, fmt.Errorf("amount: %w", err)
		}
		actual = models.Override(amount)
	}

	cost := &models.HRCost{
		TeamMemberId:     memberId,
		CostMonth:        month,
		ActualCost:       actual,
		Bonus:            overrides.Bonus,
		Notes:            overrides.Notes,
		SourceDocumentId: &doc.ID,
	}

	var result *ImportResult
	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		if txErr := models.UpsertHRCostTx(tx, ctx, cost); txErr != nil {
			return txErr
		}
		if txErr := markImported(tx, ctx, doc, map[string]interface{}{
			"applies_to_month": month,
		}); txErr != nil {
			return txErr
		}
		result = &ImportResult{
			DocumentId:     doc.ID,
			TeamMemberId:   &memberId,
			RecordsWritten: 1,
			ImportedAt:     doc.ImportedAt.Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	Bus().Publish(TopicDocuments)
	Bus().Publish(TopicHRCosts)
	return result, nil
}

// BankStatementSelection is one reviewer-approved transaction to record.
type BankStatementSelection struct {
	SoftwareItemId int             `json:"software_item_id"`
	ActualCost     decimal.Decimal `json:"actual_cost"`
	Notes          string          `json:"notes"`
}

// ImportBankStatement records the selected matched transactions as software
// cost actuals for the statement month. Unselected transactions are ignored.
func ImportBankStatement(ctx context.Context, documentId int, month string, selections []BankStatementSelection) (*ImportResult, error) {
	doc, err := loadImportableDocument(ctx, documentId, models.DocumentCategoryBankStatement)
	if err != nil {
		return nil, err
	}

	if month == "" && doc.ExtractedData.BankStatement != nil {
		month = doc.ExtractedData.BankStatement.Month
	}
	if !utils.IsValidMonth(month) {
		return nil, errors.New("statement month must be YYYY-MM")
	}
	if len(selections) == 0 {
		return nil, errors.New("select at least one transaction to import")
	}

	var result *ImportResult
	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, sel := range selections {
			if _, txErr := models.GetSoftwareItem(ctx, sel.SoftwareItemId); txErr != nil {
				return txErr
			}
			cost := &models.SoftwareCost{
				SoftwareItemId:   sel.SoftwareItemId,
				CostMonth:        month,
				ActualCost:       models.Override(sel.ActualCost),
				Notes:            sel.Notes,
				SourceDocumentId: &doc.ID,
			}
			if txErr := models.UpsertSoftwareCostTx(tx, ctx, cost); txErr != nil {
				return txErr
			}
		}
		if txErr := markImported(tx, ctx, doc, map[string]interface{}{
			"applies_to_month": month,
		}); txErr != nil {
			return txErr
		}
		result = &ImportResult{
			DocumentId:     doc.ID,
			RecordsWritten: len(selections),
			ImportedAt:     doc.ImportedAt.Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	Bus().Publish(TopicDocuments)
	Bus().Publish(TopicSoftwareCosts)
	return result, nil
}

// ContractImport carries the reviewer's choices for a contract document.
type ContractImport struct {
	ClientId     int    `json:"client_id"`
	Name         string `json:"name"`
	MonthlyValue string `json:"monthly_value"`
	TotalValue   string `json:"total_value"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

// ImportContract creates the contract record and marks the document imported.
func ImportContract(ctx context.Context, documentId int, overrides ContractImport) (*ImportResult, error) {
	doc, err := loadImportableDocument(ctx, documentId, models.DocumentCategoryContract)
	if err != nil {
		return nil, err
	}
	fields := doc.ExtractedData.Contract
	if fields == nil {
		fields = &models.ContractFields{}
	}

	input, err := resolveContractInput(ctx, fields, overrides)
	if err != nil {
		return nil, err
	}

	var result *ImportResult
	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		contract, txErr := models.CreateContractTx(tx, ctx, input, &doc.ID)
		if txErr != nil {
			return txErr
		}
		if txErr := markImported(tx, ctx, doc, map[string]interface{}{
			"contract_id": contract.ID,
		}); txErr != nil {
			return txErr
		}
		result = &ImportResult{
			DocumentId:     doc.ID,
			RecordsWritten: 1,
			ImportedAt:     doc.ImportedAt.Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	Bus().Publish(TopicDocuments)
	Bus().Publish(TopicContracts)
	return result, nil
}

func resolveContractInput(ctx context.Context, fields *models.ContractFields, overrides ContractImport) (*models.NewContract, error) {
	clientId := overrides.ClientId
	if clientId == 0 {
		clients, err := models.ListClients(ctx)
		if err != nil {
			return nil, err
		}
		match := models.MatchClientByName(fields.ClientName, clients)
		if match.Candidate == nil {
			return nil, fmt.Errorf("no client matches %q; pick one explicitly", fields.ClientName)
		}
		clientId = match.Candidate.Id
	}

	name := overrides.Name
	if name == "" {
		name = fields.ClientName + " contract"
	}

	input := &models.NewContract{ClientId: clientId, Name: name}

	monthly := overrides.MonthlyValue
	if monthly == "" {
		monthly = fields.MonthlyValue
	}
	if monthly != "" {
		value, err := utils.ParseDecimal(monthly)
		if err != nil {
			return nil, fmt.Errorf("monthly value: %w", err)
		}
		input.MonthlyValue = value
	}

	total := overrides.TotalValue
	if total == "" {
		total = fields.TotalValue
	}
	if total != "" {
		value, err := utils.ParseDecimal(total)
		if err != nil {
			return nil, fmt.Errorf("total value: %w", err)
		}
		input.TotalValue = value
	}

	startDate := overrides.StartDate
	if startDate == "" {
		startDate = fields.StartDate
	}
	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return nil, fmt.Errorf("start date must be YYYY-MM-DD: %w", err)
		}
		input.StartDate = &parsed
	}

	endDate := overrides.EndDate
	if endDate == "" {
		endDate = fields.EndDate
	}
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, fmt.Errorf("end date must be YYYY-MM-DD: %w", err)
		}
		input.EndDate = &parsed
	}

	return input, nil
}

// SkipDocument retires a document without importing anything. Skipped is
// terminal and the scanner never re-offers a skipped drive file.
func SkipDocument(ctx context.Context, documentId int, reason string) (*models.Document, error) {
	doc, err := models.GetDocument(ctx, documentId)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if reason != "" {
		updates["review_notes"] = reason
	}
	skippableStatuses := []models.InboxStatus{
		models.InboxStatusPending, models.InboxStatusCompleted,
		models.InboxStatusManualReview, models.InboxStatusError,
	}
	db := config.GetDB()
	ok, err := doc.TransitionStatus(db, ctx, skippableStatuses, models.InboxStatusSkipped, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("document cannot be skipped from its current status")
	}

	Bus().Publish(TopicDocuments)
	return doc, nil
}
