package workflow

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/techpros/finops_backend/models"
)

// Document classification from cheap signals: the folder a file was found
// in, its name, and (for spreadsheet-shaped files) its header row. Folder
// signals outrank filename heuristics.

type Classification struct {
	Category models.DocumentCategory
	// Month is "" when nothing in the filename matched; the caller then
	// falls back to the month being scanned.
	Month string
}

// FolderCategoryHints maps inbox subfolder names to categories.
var FolderCategoryHints = map[string]models.DocumentCategory{
	"sales":           models.DocumentCategorySalesInvoice,
	"costs":           models.DocumentCategoryCostInvoice,
	"bank_statements": models.DocumentCategoryBankStatement,
	"contracts":       models.DocumentCategoryContract,
}

var bankColumnSignals = []string{"date", "description", "amount", "debit", "credit", "balance", "narrative", "reference"}
var invoiceColumnSignals = []string{"invoice", "client", "customer", "total", "tax", "vat"}

// ClassifyColumns applies the spreadsheet header heuristics: >=3 bank
// column signals make a bank statement, >=2 invoice signals an invoice.
func ClassifyColumns(headers []string) (models.DocumentCategory, bool) {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}
	contains := func(signal string) bool {
		for _, h := range lowered {
			if strings.Contains(h, signal) {
				return true
			}
		}
		return false
	}

	bankHits := 0
	for _, signal := range bankColumnSignals {
		if contains(signal) {
			bankHits++
		}
	}
	if bankHits >= 3 {
		return models.DocumentCategoryBankStatement, true
	}

	invoiceHits := 0
	for _, signal := range invoiceColumnSignals {
		if contains(signal) {
			invoiceHits++
		}
	}
	if invoiceHits >= 2 {
		return models.DocumentCategorySalesInvoice, true
	}

	return "", false
}

func classifyFilename(name string) (models.DocumentCategory, bool) {
	lowered := strings.ToLower(name)
	switch {
	case strings.Contains(lowered, "statement"):
		return models.DocumentCategoryBankStatement, true
	case strings.Contains(lowered, "contract") || strings.Contains(lowered, "agreement"):
		return models.DocumentCategoryContract, true
	case strings.Contains(lowered, "invoice"):
		return models.DocumentCategorySalesInvoice, true
	}
	return "", false
}

// ClassifyFile resolves the category with folder hint > column signals >
// filename keywords > other, and infers the applicable month from the name.
func ClassifyFile(name string, folderHint models.DocumentCategory, columnHeaders []string, fallbackMonth string) Classification {
	category := models.DocumentCategoryOther
	if folderHint != "" {
		category = folderHint
		// a spreadsheet full of bank columns in any folder is a statement
		if byColumns, ok := ClassifyColumns(columnHeaders); ok && byColumns == models.DocumentCategoryBankStatement {
			category = byColumns
		}
	} else if byColumns, ok := ClassifyColumns(columnHeaders); ok {
		category = byColumns
	} else if byName, ok := classifyFilename(name); ok {
		category = byName
	}

	month := MonthFromFilename(name)
	if month == "" {
		month = fallbackMonth
	}
	return Classification{Category: category, Month: month}
}

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

var (
	// first successful pattern wins, in this order
	reYearDashMonth = regexp.MustCompile(`(20\d{2})-(0[1-9]|1[0-2])`)
	reYearMonth     = regexp.MustCompile(`(20\d{2})(0[1-9]|1[0-2])`)
	reMonYear       = regexp.MustCompile(`(?i)\b([a-z]{3})[a-z]*[- _]?(20\d{2})`)
	reYearMon       = regexp.MustCompile(`(?i)(20\d{2})[- _]([a-z]{3})`)
)

// MonthFromFilename extracts YYYY-MM from the supported filename patterns:
// 2026-01, 202601, Jan-2026, Jan 2026, January2026, 2026-Jan. Returns ""
// when nothing matches.
func MonthFromFilename(name string) string {
	if m := reYearDashMonth.FindStringSubmatch(name); m != nil {
		return m[1] + "-" + m[2]
	}
	if m := reYearMonth.FindStringSubmatch(name); m != nil {
		return m[1] + "-" + m[2]
	}
	if m := reMonYear.FindStringSubmatch(name); m != nil {
		if month, ok := monthNames[strings.ToLower(m[1])]; ok {
			return fmt.Sprintf("%s-%02d", m[2], month)
		}
	}
	if m := reYearMon.FindStringSubmatch(name); m != nil {
		if month, ok := monthNames[strings.ToLower(m[2])]; ok {
			return fmt.Sprintf("%s-%02d", m[1], month)
		}
	}
	return ""
}
