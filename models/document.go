package models

import (
	"context"
	"errors"
	"time"

	"github.com/techpros/finops_backend/config"
	"github.com/techpros/finops_backend/utils"
	"gorm.io/gorm"
)

type Document struct {
	ID                   int               `gorm:"primary_key" json:"id"`
	DriveFileId          *string           `gorm:"size:128;uniqueIndex" json:"drive_file_id"`
	StoragePath          string            `gorm:"size:512" json:"storage_path"`
	Name                 string            `gorm:"size:255;not null" json:"name"`
	MimeType             string            `gorm:"size:128" json:"mime_type"`
	DocumentCategory     *DocumentCategory `gorm:"size:32;index" json:"document_category"`
	InboxStatus          InboxStatus       `gorm:"size:32;not null;default:'pending';index" json:"inbox_status"`
	AppliesToMonth       *string           `gorm:"size:7" json:"applies_to_month"`
	PeriodStart          *string           `gorm:"size:7" json:"period_start"`
	PeriodEnd            *string           `gorm:"size:7" json:"period_end"`
	ExtractedData        ExtractedData     `gorm:"type:json" json:"extracted_data"`
	ExtractionConfidence float64           `gorm:"type:decimal(4,3);default:0" json:"extraction_confidence"`
	InvoiceId            *int              `gorm:"index" json:"invoice_id"`
	ContractId           *int              `gorm:"index" json:"contract_id"`
	ReviewNotes          string            `gorm:"type:text" json:"review_notes"`
	ImportedAt           *time.Time        `json:"imported_at"`
	CreatedAt            time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// inboxTransitions is the document state machine. imported and skipped are
// terminal; error documents may be retried through a fresh extraction.
var inboxTransitions = map[InboxStatus][]InboxStatus{
	InboxStatusPending:      {InboxStatusProcessing, InboxStatusImported, InboxStatusSkipped},
	InboxStatusProcessing:   {InboxStatusCompleted, InboxStatusManualReview, InboxStatusError},
	InboxStatusCompleted:    {InboxStatusImported, InboxStatusSkipped},
	InboxStatusManualReview: {InboxStatusImported, InboxStatusSkipped},
	InboxStatusError:        {InboxStatusProcessing, InboxStatusSkipped},
}

func CanTransitionInbox(from, to InboxStatus) bool {
	for _, allowed := range inboxTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// importableStatuses are the states from which the import engine accepts a
// document. An already-imported document must reject a second attempt.
var importableStatuses = []InboxStatus{InboxStatusPending, InboxStatusCompleted, InboxStatusManualReview}

func ImportableStatuses() []InboxStatus {
	return importableStatuses
}

func (d *Document) Store(tx *gorm.DB, ctx context.Context) error {
	return tx.WithContext(ctx).Create(&d).Error
}

// ImportCategory is the category the import engine dispatches on: the
// extracted category once extraction has run, otherwise the classifier's
// assignment. Empty when the document carries neither.
func (d *Document) ImportCategory() DocumentCategory {
	if d.ExtractedData.Category != "" {
		return d.ExtractedData.Category
	}
	return utils.DereferencePtr(d.DocumentCategory)
}

// TransitionStatus is a compare-and-set on inbox_status: the update applies
// only if the row still holds one of the expected statuses. Returns false
// when another actor won the race (or the document moved on).
func (d *Document) TransitionStatus(tx *gorm.DB, ctx context.Context, expected []InboxStatus, to InboxStatus, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["inbox_status"] = to

	result := tx.WithContext(ctx).Model(&Document{}).
		Where("id = ? AND inbox_status IN ?", d.ID, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	d.InboxStatus = to
	return true, nil
}

func GetDocument(ctx context.Context, id int) (*Document, error) {
	return utils.FetchSingleModel[Document](ctx, id)
}

func ListInboxDocuments(ctx context.Context, statuses []InboxStatus) ([]*Document, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Order("created_at DESC")
	if len(statuses) > 0 {
		dbCtx = dbCtx.Where("inbox_status IN ?", statuses)
	}
	var results []*Document
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ExistingDriveFileIds returns every drive file id ever recorded, regardless
// of status. A skipped document is never re-offered by the scanner.
func ExistingDriveFileIds(ctx context.Context) (map[string]bool, error) {
	db := config.GetDB()
	var ids []string
	if err := db.WithContext(ctx).Model(&Document{}).
		Where("drive_file_id IS NOT NULL").
		Pluck("drive_file_id", &ids).Error; err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(ids))
	for _, id := range ids {
		existing[id] = true
	}
	return existing, nil
}

// ReopenDocument moves an imported document back to manual_review so its
// extracted data can be corrected. This is the only way out of imported and
// it never deletes the records a previous import created.
func ReopenDocument(ctx context.Context, id int) (*Document, error) {
	doc, err := GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.InboxStatus != InboxStatusImported {
		return nil, errors.New("only imported documents can be re-opened")
	}

	db := config.GetDB()
	ok, err := doc.TransitionStatus(db, ctx, []InboxStatus{InboxStatusImported}, InboxStatusManualReview, map[string]interface{}{
		"imported_at": nil,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("document status changed concurrently")
	}
	return doc, nil
}
