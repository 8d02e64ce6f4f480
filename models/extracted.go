package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// ExtractedData is a closed tagged union keyed by document category.
// Exactly one variant pointer is set; Raw holds the model's text when the
// response could not be parsed into the category schema (0-confidence path).
// Stored as a single JSON column on documents.
type ExtractedData struct {
	Category      DocumentCategory        `json:"category,omitempty"`
	SalesInvoice  *SalesInvoiceFields     `json:"sales_invoice,omitempty"`
	CostInvoice   *CostInvoiceFields      `json:"cost_invoice,omitempty"`
	BankStatement *BankStatementFields    `json:"bank_statement,omitempty"`
	Contract      *ContractFields         `json:"contract,omitempty"`
	Raw           string                  `json:"raw_text,omitempty"`
}

type SalesInvoiceFields struct {
	ClientName     string `json:"client_name"`
	InvoiceNumber  string `json:"invoice_number"`
	InvoiceDate    string `json:"invoice_date"`
	TotalValue     string `json:"total_value"`
	Currency       string `json:"currency"`
	MonthsToSpread int    `json:"months_to_spread"`
	StartMonth     string `json:"start_month"`
}

type CostInvoiceFields struct {
	SupplierName string `json:"supplier_name"`
	Amount       string `json:"amount"`
	Month        string `json:"month"`
	Description  string `json:"description"`
}

type BankTransactionFields struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

type BankStatementFields struct {
	Month        string                  `json:"month"`
	Transactions []BankTransactionFields `json:"transactions"`
}

type ContractFields struct {
	ClientName   string `json:"client_name"`
	MonthlyValue string `json:"monthly_value"`
	TotalValue   string `json:"total_value"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

func (e ExtractedData) IsEmpty() bool {
	return e.SalesInvoice == nil && e.CostInvoice == nil &&
		e.BankStatement == nil && e.Contract == nil && e.Raw == ""
}

// Completeness is the fraction of category-required fields present and
// non-null. It is the confidence score that gates completed vs manual_review.
func (e ExtractedData) Completeness() float64 {
	var required []bool
	switch {
	case e.SalesInvoice != nil:
		f := e.SalesInvoice
		required = []bool{
			f.ClientName != "",
			f.InvoiceNumber != "",
			f.InvoiceDate != "",
			f.TotalValue != "",
		}
	case e.CostInvoice != nil:
		f := e.CostInvoice
		required = []bool{
			f.SupplierName != "",
			f.Amount != "",
			f.Month != "",
		}
	case e.BankStatement != nil:
		f := e.BankStatement
		required = []bool{
			f.Month != "",
			len(f.Transactions) > 0,
		}
	case e.Contract != nil:
		f := e.Contract
		required = []bool{
			f.ClientName != "",
			f.MonthlyValue != "" || f.TotalValue != "",
			f.StartDate != "",
		}
	default:
		return 0
	}

	present := 0
	for _, ok := range required {
		if ok {
			present++
		}
	}
	return float64(present) / float64(len(required))
}

func (e ExtractedData) Value() (driver.Value, error) {
	if e.IsEmpty() {
		return nil, nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (e *ExtractedData) Scan(value interface{}) error {
	if value == nil {
		*e = ExtractedData{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for ExtractedData")
	}
	if len(data) == 0 || strings.TrimSpace(string(data)) == "" {
		*e = ExtractedData{}
		return nil
	}
	return json.Unmarshal(data, e)
}
