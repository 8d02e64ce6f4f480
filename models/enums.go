package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

type DocumentCategory string

const (
	DocumentCategorySalesInvoice  DocumentCategory = "sales_invoice"
	DocumentCategoryCostInvoice   DocumentCategory = "cost_invoice"
	DocumentCategoryBankStatement DocumentCategory = "bank_statement"
	DocumentCategoryContract      DocumentCategory = "contract"
	DocumentCategoryOther         DocumentCategory = "other"
)

func ParseDocumentCategory(s string) (DocumentCategory, error) {
	switch DocumentCategory(s) {
	case DocumentCategorySalesInvoice, DocumentCategoryCostInvoice,
		DocumentCategoryBankStatement, DocumentCategoryContract, DocumentCategoryOther:
		return DocumentCategory(s), nil
	}
	return "", fmt.Errorf("invalid document category %q", s)
}

type InboxStatus string

const (
	InboxStatusPending      InboxStatus = "pending"
	InboxStatusProcessing   InboxStatus = "processing"
	InboxStatusCompleted    InboxStatus = "completed"
	InboxStatusManualReview InboxStatus = "manual_review"
	InboxStatusImported     InboxStatus = "imported"
	InboxStatusSkipped      InboxStatus = "skipped"
	InboxStatusError        InboxStatus = "error"
)

// IsTerminal reports whether no transition may leave the status.
func (s InboxStatus) IsTerminal() bool {
	return s == InboxStatusImported || s == InboxStatusSkipped
}

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	switch InvoiceStatus(s) {
	case InvoiceStatusPending, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue:
		return InvoiceStatus(s), nil
	}
	return "", fmt.Errorf("invalid invoice status %q", s)
}

type EmploymentType string

const (
	EmploymentTypeFTE        EmploymentType = "fte"
	EmploymentTypeContractor EmploymentType = "contractor"
)

func ParseEmploymentType(s string) (EmploymentType, error) {
	switch EmploymentType(s) {
	case EmploymentTypeFTE, EmploymentTypeContractor:
		return EmploymentType(s), nil
	}
	return "", fmt.Errorf("invalid employment type %q", s)
}

// StringList is stored as a JSON array column (alias lists).
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for StringList")
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, (*[]string)(l))
}
