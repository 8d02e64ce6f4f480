package workflow

import (
	"testing"

	"github.com/techpros/finops_backend/models"
)

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around json", "Here you go:\n{\"a\":1}\nHope that helps.", `{"a":1}`},
		{"no json at all", "I could not read the document", "I could not read the document"},
	}
	for _, tc := range cases {
		if got := StripCodeFences(tc.in); got != tc.want {
			t.Fatalf("%s: StripCodeFences = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestParseExtractionText_SalesInvoice(t *testing.T) {
	text := "```json\n" +
		`{"client_name":"Acme Ltd","invoice_number":"INV-001","invoice_date":"2026-01-15","total_value":"1200.00","currency":"GBP","months_to_spread":3,"start_month":"2026-01"}` +
		"\n```"
	data, confidence := ParseExtractionText(models.DocumentCategorySalesInvoice, text)
	if data.SalesInvoice == nil {
		t.Fatal("expected sales invoice variant")
	}
	if data.SalesInvoice.ClientName != "Acme Ltd" || data.SalesInvoice.MonthsToSpread != 3 {
		t.Fatalf("parsed fields wrong: %+v", data.SalesInvoice)
	}
	if confidence != 1.0 {
		t.Fatalf("confidence = %v, want 1.0 for fully-populated invoice", confidence)
	}
}

func TestParseExtractionText_MissingFieldsLowerConfidence(t *testing.T) {
	text := `{"client_name":"Acme Ltd","invoice_number":"","invoice_date":"","total_value":"1200.00"}`
	data, confidence := ParseExtractionText(models.DocumentCategorySalesInvoice, text)
	if data.SalesInvoice == nil {
		t.Fatal("expected sales invoice variant")
	}
	if confidence != 0.5 {
		t.Fatalf("confidence = %v, want 0.5", confidence)
	}
	if confidence >= ConfidenceGate {
		t.Fatal("half-populated extraction must not clear the review gate")
	}
}

func TestParseExtractionText_UnparseableFallsBackToRaw(t *testing.T) {
	text := "sorry, the scan was illegible"
	data, confidence := ParseExtractionText(models.DocumentCategoryCostInvoice, text)
	if data.Raw != text {
		t.Fatalf("raw = %q, want original text preserved", data.Raw)
	}
	if data.CostInvoice != nil {
		t.Fatal("no variant should be set on parse failure")
	}
	if confidence != 0 {
		t.Fatalf("confidence = %v, want 0", confidence)
	}
}

func TestParseExtractionText_BankStatement(t *testing.T) {
	text := `{"month":"2026-01","transactions":[{"date":"2026-01-05","description":"ZOOM.US","amount":"159.00"}]}`
	data, confidence := ParseExtractionText(models.DocumentCategoryBankStatement, text)
	if data.BankStatement == nil || len(data.BankStatement.Transactions) != 1 {
		t.Fatalf("parsed statement wrong: %+v", data.BankStatement)
	}
	if confidence < ConfidenceGate {
		t.Fatalf("confidence = %v, want >= gate for complete statement", confidence)
	}
}
