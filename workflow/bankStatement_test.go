package workflow

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/techpros/finops_backend/models"
	"github.com/xuri/excelize/v2"
)

func TestMatchTransactions_Classification(t *testing.T) {
	items := []*models.SoftwareItem{
		{ID: 1, Name: "Zoom", Vendor: "Zoom Video Communications", VendorAliases: models.StringList{"ZOOM.US"}, DefaultMonthlyCost: decimal.NewFromInt(159)},
		{ID: 2, Name: "Google Workspace", VendorAliases: models.StringList{"GOOGLE GSUITE"}, DefaultMonthlyCost: decimal.NewFromInt(92)},
	}
	transactions := []models.BankTransactionFields{
		{Date: "2026-01-05", Description: "ZOOM.US 888-799-9666", Amount: "159.00"},
		{Date: "2026-01-07", Description: "GOOGLE GSUITE_techpros", Amount: "103.50"},
		{Date: "2026-01-09", Description: "ACME SAAS LTD", Amount: "49.00"},
		{Date: "2026-01-12", Description: "Zoom annual true-up", Amount: "120.00"},
	}

	matches := MatchTransactions(transactions, items)
	if len(matches) != 4 {
		t.Fatalf("got %d matches, want 4", len(matches))
	}

	if matches[0].Status != MatchStatusExact {
		t.Fatalf("zoom at default cost: status = %q, want exact_match", matches[0].Status)
	}
	if matches[0].SoftwareItemId == nil || *matches[0].SoftwareItemId != 1 {
		t.Fatalf("zoom matched item %v, want 1", matches[0].SoftwareItemId)
	}

	if matches[1].Status != MatchStatusOverBudget {
		t.Fatalf("workspace over default: status = %q, want over_budget", matches[1].Status)
	}
	if !matches[1].Variance.Equal(decimal.NewFromFloat(11.5)) {
		t.Fatalf("workspace variance = %s, want 11.5", matches[1].Variance)
	}

	if matches[2].Status != MatchStatusNoMatch {
		t.Fatalf("unknown vendor: status = %q, want no_match", matches[2].Status)
	}
	if matches[2].SoftwareItemId != nil {
		t.Fatal("unknown vendor must not carry an item id")
	}

	if matches[3].Status != MatchStatusUnderBudget {
		t.Fatalf("zoom under default: status = %q, want under_budget", matches[3].Status)
	}
}

func TestMatchTransactions_FirstItemWins(t *testing.T) {
	items := []*models.SoftwareItem{
		{ID: 1, Name: "Zoom", DefaultMonthlyCost: decimal.NewFromInt(159)},
		{ID: 2, Name: "Zoom Phone", DefaultMonthlyCost: decimal.NewFromInt(30)},
	}
	matches := MatchTransactions([]models.BankTransactionFields{
		{Description: "ZOOM PHONE SUBSCRIPTION", Amount: "30.00"},
	}, items)
	if matches[0].SoftwareItemId == nil || *matches[0].SoftwareItemId != 1 {
		t.Fatalf("matched item %v; first item in registry order wins", matches[0].SoftwareItemId)
	}
}

func TestMatchTransactions_NegativeAmountsUseAbsoluteValue(t *testing.T) {
	items := []*models.SoftwareItem{
		{ID: 1, Name: "Zoom", DefaultMonthlyCost: decimal.NewFromInt(159)},
	}
	matches := MatchTransactions([]models.BankTransactionFields{
		{Description: "ZOOM DIRECT DEBIT", Amount: "-159.00"},
	}, items)
	if matches[0].Status != MatchStatusExact {
		t.Fatalf("debit-signed amount: status = %q, want exact_match", matches[0].Status)
	}
}

func TestParseBankStatementXLSX(t *testing.T) {
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	rows := [][]interface{}{
		{"Statement for January 2026"},
		{"Date", "Description", "Amount"},
		{"2026-01-05", "ZOOM.US 888-799-9666", "-159.00"},
		{"2026-01-07", "GOOGLE GSUITE", "-92.00"},
		{"", "row without amount", "n/a"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := file.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	transactions, err := ParseBankStatementXLSX(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseBankStatementXLSX error: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(transactions))
	}
	if transactions[0].Description != "ZOOM.US 888-799-9666" {
		t.Fatalf("description = %q", transactions[0].Description)
	}
	if transactions[0].Date != "2026-01-05" {
		t.Fatalf("date = %q, want 2026-01-05", transactions[0].Date)
	}
	if transactions[1].Amount != "-92" {
		t.Fatalf("amount = %q, want -92", transactions[1].Amount)
	}
}

func TestParseBankStatementXLSX_NoHeaderRow(t *testing.T) {
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	row := []interface{}{"just", "some", "cells"}
	if err := file.SetSheetRow(sheet, "A1", &row); err != nil {
		t.Fatalf("set row: %v", err)
	}
	buf, err := file.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	if _, err := ParseBankStatementXLSX(buf.Bytes()); err == nil {
		t.Fatal("expected error when no header row is present")
	}
}
