package workflow

import (
	"testing"

	"github.com/techpros/finops_backend/models"
)

func TestMonthFromFilename(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Invoice_2026-01_Acme.pdf", "2026-01"},
		{"statement_202603.xlsx", "2026-03"},
		{"Jan-2026 retainer.pdf", "2026-01"},
		{"January2026_contract.docx", "2026-01"},
		{"2026-Mar bank.csv", "2026-03"},
		{"bank Dec 2025.xlsx", "2025-12"},
		{"no month here.pdf", ""},
		{"Invoice_2026-13.pdf", ""},
	}
	for _, tc := range cases {
		if got := MonthFromFilename(tc.name); got != tc.want {
			t.Fatalf("MonthFromFilename(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestClassifyColumns(t *testing.T) {
	cases := []struct {
		name    string
		headers []string
		want    models.DocumentCategory
		wantOk  bool
	}{
		{
			"bank statement headers",
			[]string{"Date", "Description", "Amount", "Balance"},
			models.DocumentCategoryBankStatement, true,
		},
		{
			"invoice headers",
			[]string{"Invoice Number", "Client", "Total"},
			models.DocumentCategorySalesInvoice, true,
		},
		{
			"two bank signals are not enough",
			[]string{"Date", "Amount"},
			"", false,
		},
		{"no headers", nil, "", false},
	}
	for _, tc := range cases {
		got, ok := ClassifyColumns(tc.headers)
		if ok != tc.wantOk || got != tc.want {
			t.Fatalf("%s: ClassifyColumns = (%q, %v), want (%q, %v)", tc.name, got, ok, tc.want, tc.wantOk)
		}
	}
}

func TestClassifyFile_FolderHintWins(t *testing.T) {
	c := ClassifyFile("random_file.pdf", models.DocumentCategoryCostInvoice, nil, "2026-02")
	if c.Category != models.DocumentCategoryCostInvoice {
		t.Fatalf("category = %q, want folder hint to win", c.Category)
	}
	if c.Month != "2026-02" {
		t.Fatalf("month = %q, want fallback 2026-02", c.Month)
	}
}

func TestClassifyFile_BankColumnsOverrideFolderHint(t *testing.T) {
	headers := []string{"Date", "Narrative", "Debit", "Credit"}
	c := ClassifyFile("export.xlsx", models.DocumentCategoryCostInvoice, headers, "")
	if c.Category != models.DocumentCategoryBankStatement {
		t.Fatalf("category = %q, want bank columns to override the folder hint", c.Category)
	}
}

func TestClassifyFile_FilenameKeywords(t *testing.T) {
	cases := []struct {
		name string
		want models.DocumentCategory
	}{
		{"Invoice_2026-01_Acme.pdf", models.DocumentCategorySalesInvoice},
		{"bank statement march.pdf", models.DocumentCategoryBankStatement},
		{"service agreement.docx", models.DocumentCategoryContract},
		{"holiday photos.png", models.DocumentCategoryOther},
	}
	for _, tc := range cases {
		c := ClassifyFile(tc.name, "", nil, "")
		if c.Category != tc.want {
			t.Fatalf("ClassifyFile(%q) category = %q, want %q", tc.name, c.Category, tc.want)
		}
	}
}

func TestClassifyFile_FilenameMonthBeatsFallback(t *testing.T) {
	c := ClassifyFile("Invoice_2026-01_Acme.pdf", models.DocumentCategorySalesInvoice, nil, "2026-04")
	if c.Month != "2026-01" {
		t.Fatalf("month = %q, want filename month 2026-01", c.Month)
	}
}
