package models

import (
	"testing"
)

func TestCanTransitionInbox(t *testing.T) {
	allowed := []struct {
		from, to InboxStatus
	}{
		{InboxStatusPending, InboxStatusProcessing},
		{InboxStatusPending, InboxStatusImported},
		{InboxStatusPending, InboxStatusSkipped},
		{InboxStatusProcessing, InboxStatusCompleted},
		{InboxStatusProcessing, InboxStatusManualReview},
		{InboxStatusProcessing, InboxStatusError},
		{InboxStatusCompleted, InboxStatusImported},
		{InboxStatusManualReview, InboxStatusImported},
		{InboxStatusError, InboxStatusProcessing},
		{InboxStatusError, InboxStatusSkipped},
	}
	for _, tc := range allowed {
		if !CanTransitionInbox(tc.from, tc.to) {
			t.Fatalf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to InboxStatus
	}{
		{InboxStatusImported, InboxStatusProcessing},
		{InboxStatusImported, InboxStatusImported},
		{InboxStatusSkipped, InboxStatusPending},
		{InboxStatusSkipped, InboxStatusProcessing},
		{InboxStatusCompleted, InboxStatusProcessing},
		{InboxStatusPending, InboxStatusCompleted},
	}
	for _, tc := range denied {
		if CanTransitionInbox(tc.from, tc.to) {
			t.Fatalf("%s -> %s should be denied", tc.from, tc.to)
		}
	}
}

func TestInboxStatus_IsTerminal(t *testing.T) {
	for _, s := range []InboxStatus{InboxStatusImported, InboxStatusSkipped} {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []InboxStatus{InboxStatusPending, InboxStatusProcessing, InboxStatusCompleted, InboxStatusManualReview, InboxStatusError} {
		if s.IsTerminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}

func TestImportableStatuses_ExcludeTerminal(t *testing.T) {
	for _, s := range ImportableStatuses() {
		if s.IsTerminal() {
			t.Fatalf("importable statuses must not include terminal %s", s)
		}
		if s == InboxStatusProcessing {
			t.Fatal("a document mid-extraction must not be importable")
		}
	}
}

func TestDocument_ImportCategory(t *testing.T) {
	bank := DocumentCategoryBankStatement
	cases := []struct {
		name string
		doc  Document
		want DocumentCategory
	}{
		{
			"extracted category wins",
			Document{
				DocumentCategory: &bank,
				ExtractedData:    ExtractedData{Category: DocumentCategorySalesInvoice},
			},
			DocumentCategorySalesInvoice,
		},
		{
			"never-extracted pending document falls back to the classifier",
			Document{
				DocumentCategory: &bank,
				InboxStatus:      InboxStatusPending,
			},
			DocumentCategoryBankStatement,
		},
		{"no category at all", Document{}, DocumentCategory("")},
	}
	for _, tc := range cases {
		if got := tc.doc.ImportCategory(); got != tc.want {
			t.Fatalf("%s: ImportCategory() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestExtractedData_Completeness(t *testing.T) {
	cases := []struct {
		name string
		data ExtractedData
		want float64
	}{
		{"empty", ExtractedData{}, 0},
		{
			"full sales invoice",
			ExtractedData{SalesInvoice: &SalesInvoiceFields{
				ClientName:    "Acme Ltd",
				InvoiceNumber: "INV-001",
				InvoiceDate:   "2026-01-15",
				TotalValue:    "1200.00",
			}},
			1.0,
		},
		{
			"sales invoice missing total",
			ExtractedData{SalesInvoice: &SalesInvoiceFields{
				ClientName:    "Acme Ltd",
				InvoiceNumber: "INV-001",
				InvoiceDate:   "2026-01-15",
			}},
			0.75,
		},
		{
			"cost invoice missing month",
			ExtractedData{CostInvoice: &CostInvoiceFields{
				SupplierName: "JD Consulting",
				Amount:       "6000",
			}},
			2.0 / 3.0,
		},
		{
			"bank statement with transactions",
			ExtractedData{BankStatement: &BankStatementFields{
				Month:        "2026-01",
				Transactions: []BankTransactionFields{{Description: "ZOOM.US", Amount: "159.00"}},
			}},
			1.0,
		},
	}
	for _, tc := range cases {
		if got := tc.data.Completeness(); got != tc.want {
			t.Fatalf("%s: Completeness() = %v, want %v", tc.name, got, tc.want)
		}
	}
}
