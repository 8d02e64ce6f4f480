package workflow

import (
	"testing"

	"github.com/techpros/finops_backend/models"
)

func TestPlanScan_SkipsKnownFileIds(t *testing.T) {
	files := []DriveFile{
		{Id: "drive-1", Name: "Invoice_2026-01_Acme.pdf"},
		{Id: "drive-2", Name: "Invoice_2026-02_Acme.pdf"},
		{Id: "drive-3", Name: "Invoice_2026-03_Acme.pdf"},
	}
	existing := map[string]bool{"drive-2": true}

	planned := PlanScan(files, existing, models.DocumentCategorySalesInvoice, "2026-01")
	if len(planned) != 2 {
		t.Fatalf("planned %d documents, want 2", len(planned))
	}
	for _, doc := range planned {
		if *doc.DriveFileId == "drive-2" {
			t.Fatal("already-known file must not be planned again")
		}
	}
}

// A second scan over the same listing plans nothing: the first scan's ids
// are now in the existing set.
func TestPlanScan_RescanIsIdempotent(t *testing.T) {
	files := []DriveFile{
		{Id: "drive-1", Name: "statement_202601.xlsx"},
		{Id: "drive-2", Name: "statement_202602.xlsx"},
	}
	existing := map[string]bool{}

	first := PlanScan(files, existing, models.DocumentCategoryBankStatement, "2026-01")
	if len(first) != 2 {
		t.Fatalf("first scan planned %d, want 2", len(first))
	}
	for _, doc := range first {
		existing[*doc.DriveFileId] = true
	}

	second := PlanScan(files, existing, models.DocumentCategoryBankStatement, "2026-01")
	if len(second) != 0 {
		t.Fatalf("second scan planned %d, want 0", len(second))
	}
}

func TestPlanScan_NewDocumentShape(t *testing.T) {
	files := []DriveFile{
		{Id: "drive-9", Name: "Invoice_2026-01_Acme.pdf", MimeType: "application/pdf", Path: "inbox/sales/Invoice_2026-01_Acme.pdf"},
	}
	planned := PlanScan(files, map[string]bool{}, models.DocumentCategorySalesInvoice, "2026-04")
	if len(planned) != 1 {
		t.Fatalf("planned %d, want 1", len(planned))
	}
	doc := planned[0]
	if doc.InboxStatus != models.InboxStatusPending {
		t.Fatalf("status = %q, want pending", doc.InboxStatus)
	}
	if doc.DocumentCategory == nil || *doc.DocumentCategory != models.DocumentCategorySalesInvoice {
		t.Fatalf("category = %v, want sales_invoice", doc.DocumentCategory)
	}
	if doc.AppliesToMonth == nil || *doc.AppliesToMonth != "2026-01" {
		t.Fatalf("applies_to_month = %v, want filename month 2026-01", doc.AppliesToMonth)
	}
	if doc.StoragePath != files[0].Path {
		t.Fatalf("storage path = %q, want %q", doc.StoragePath, files[0].Path)
	}
}

func TestPlanScan_IgnoresEmptyIds(t *testing.T) {
	files := []DriveFile{{Id: "", Name: "broken.pdf"}}
	if planned := PlanScan(files, map[string]bool{}, models.DocumentCategoryCostInvoice, "2026-01"); len(planned) != 0 {
		t.Fatalf("planned %d for empty id, want 0", len(planned))
	}
}
