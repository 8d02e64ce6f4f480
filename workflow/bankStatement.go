package workflow

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/techpros/finops_backend/models"
	"github.com/techpros/finops_backend/utils"
	"github.com/xuri/excelize/v2"
)

// Bank statement reconciliation: parse statement rows, line each
// transaction up against a software item, and classify the variance
// against the item's expected monthly cost.

type MatchStatus string

const (
	MatchStatusExact       MatchStatus = "exact_match"
	MatchStatusOverBudget  MatchStatus = "over_budget"
	MatchStatusUnderBudget MatchStatus = "under_budget"
	MatchStatusNoMatch     MatchStatus = "no_match"
)

// varianceTolerance: differences under a penny count as exact.
var varianceTolerance = decimal.NewFromFloat(0.01)

type TransactionMatch struct {
	Transaction    models.BankTransactionFields `json:"transaction"`
	SoftwareItemId *int                         `json:"software_item_id"`
	ItemName       string                       `json:"item_name,omitempty"`
	ExpectedCost   decimal.Decimal              `json:"expected_cost"`
	ActualCost     decimal.Decimal              `json:"actual_cost"`
	Variance       decimal.Decimal              `json:"variance"`
	Status         MatchStatus                  `json:"status"`
}

// ParseBankStatementXLSX reads the first sheet of a bank export. The first
// row holding a recognizable header (date/description/amount) maps the
// columns; every later row with a parseable amount becomes a transaction.
func ParseBankStatementXLSX(data []byte) ([]models.BankTransactionFields, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	dateCol, descCol, amountCol := -1, -1, -1
	headerRow := -1
	for i, row := range rows {
		for j, cell := range row {
			switch normalizeHeader(cell) {
			case "date", "transactiondate", "postingdate":
				dateCol = j
			case "description", "narrative", "details", "reference":
				descCol = j
			case "amount", "debit", "value", "paidout":
				amountCol = j
			}
		}
		if descCol >= 0 && amountCol >= 0 {
			headerRow = i
			break
		}
		dateCol, descCol, amountCol = -1, -1, -1
	}
	if headerRow < 0 {
		return nil, errors.New("no header row with description and amount columns")
	}

	var transactions []models.BankTransactionFields
	for _, row := range rows[headerRow+1:] {
		if amountCol >= len(row) || descCol >= len(row) {
			continue
		}
		amount, err := utils.ParseDecimal(row[amountCol])
		if err != nil {
			continue
		}
		tx := models.BankTransactionFields{
			Description: strings.TrimSpace(row[descCol]),
			Amount:      amount.String(),
		}
		if dateCol >= 0 && dateCol < len(row) {
			tx.Date = strings.TrimSpace(row[dateCol])
		}
		if tx.Description == "" {
			continue
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

func normalizeHeader(cell string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(cell), " ", ""))
}

// MatchTransactions pairs each transaction with the first software item
// whose name, vendor, or alias appears in the transaction description.
// Items are tried in the order given, so registry order decides ties.
func MatchTransactions(transactions []models.BankTransactionFields, items []*models.SoftwareItem) []TransactionMatch {
	matches := make([]TransactionMatch, 0, len(transactions))
	for _, tx := range transactions {
		match := TransactionMatch{Transaction: tx, Status: MatchStatusNoMatch}
		if amount, err := utils.ParseDecimal(tx.Amount); err == nil {
			match.ActualCost = amount.Abs()
		}

		item := matchItem(tx.Description, items)
		if item != nil {
			id := item.ID
			match.SoftwareItemId = &id
			match.ItemName = item.Name
			match.ExpectedCost = item.DefaultMonthlyCost
			match.Variance = match.ActualCost.Sub(item.DefaultMonthlyCost)
			match.Status = classifyVariance(match.Variance)
		}
		matches = append(matches, match)
	}
	return matches
}

func matchItem(description string, items []*models.SoftwareItem) *models.SoftwareItem {
	haystack := strings.ToLower(description)
	for _, item := range items {
		for _, needle := range itemNeedles(item) {
			if needle != "" && strings.Contains(haystack, needle) {
				return item
			}
		}
	}
	return nil
}

func itemNeedles(item *models.SoftwareItem) []string {
	needles := []string{strings.ToLower(item.Name), strings.ToLower(item.Vendor)}
	for _, alias := range item.VendorAliases {
		needles = append(needles, strings.ToLower(alias))
	}
	return needles
}

func classifyVariance(variance decimal.Decimal) MatchStatus {
	switch {
	case variance.Abs().LessThan(varianceTolerance):
		return MatchStatusExact
	case variance.IsPositive():
		return MatchStatusOverBudget
	default:
		return MatchStatusUnderBudget
	}
}
