package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/techpros/finops_backend/config"
	"github.com/techpros/finops_backend/models"
	"github.com/techpros/finops_backend/utils"
)

// Drive scanner: walks <inbox root>/{sales,costs,bank_statements}, inserts a
// pending Document for every file not seen before. De-duplication is on the
// external drive file id, so repeated or partially-retried scans converge.

type DriveFile struct {
	Id       string
	Name     string
	MimeType string
	Path     string
}

// DriveStore is the file-store boundary: folder lookup, listing, content
// fetch. The production implementation wraps the Google Drive API.
type DriveStore interface {
	FindChildFolder(ctx context.Context, parentId, name string) (string, error)
	ListFiles(ctx context.Context, folderId string) ([]DriveFile, error)
	DownloadFile(ctx context.Context, fileId string) ([]byte, error)
}

// scanFolders fixes the inbox skeleton and the category each folder implies.
var scanFolders = []struct {
	Name string
	Hint models.DocumentCategory
}{
	{"sales", models.DocumentCategorySalesInvoice},
	{"costs", models.DocumentCategoryCostInvoice},
	{"bank_statements", models.DocumentCategoryBankStatement},
}

type ScanResult struct {
	ScannedFolders int      `json:"scanned_folders"`
	NewDocuments   []int    `json:"new_documents"`
	Errors         []string `json:"errors,omitempty"`
}

// PlanScan decides which listed files become new pending Documents. Pure:
// the DB state arrives as the existing-id set, so idempotency is decided
// here and testable without a database.
func PlanScan(files []DriveFile, existing map[string]bool, hint models.DocumentCategory, fallbackMonth string) []*models.Document {
	var planned []*models.Document
	for _, f := range files {
		if f.Id == "" || existing[f.Id] {
			continue
		}
		classification := ClassifyFile(f.Name, hint, nil, fallbackMonth)
		fileId := f.Id
		category := classification.Category
		doc := &models.Document{
			DriveFileId:      &fileId,
			StoragePath:      f.Path,
			Name:             f.Name,
			MimeType:         f.MimeType,
			DocumentCategory: &category,
			InboxStatus:      models.InboxStatusPending,
			AppliesToMonth:   utils.NilIfEmpty(classification.Month),
		}
		planned = append(planned, doc)
	}
	return planned
}

// ScanInbox walks the fixed folder skeleton under rootFolderId and inserts
// pending documents sequentially per folder. A folder failure is recorded
// and the scan moves on; inserts hitting the unique drive-file-id index are
// treated as already-present, not as errors.
func ScanInbox(ctx context.Context, store DriveStore, rootFolderId string) (*ScanResult, error) {
	if rootFolderId == "" {
		return nil, errors.New("drive inbox folder id is required")
	}

	inboxId, err := store.FindChildFolder(ctx, rootFolderId, "inbox")
	if err != nil {
		return nil, fmt.Errorf("inbox folder not found: %w", err)
	}

	existing, err := models.ExistingDriveFileIds(ctx)
	if err != nil {
		return nil, err
	}

	logger := config.GetLogger()
	db := config.GetDB()
	fallbackMonth := utils.CurrentMonth()
	result := &ScanResult{}

	for _, folder := range scanFolders {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		folderId, err := store.FindChildFolder(ctx, inboxId, folder.Name)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", folder.Name, err))
			continue
		}
		files, err := store.ListFiles(ctx, folderId)
		if err != nil {
			config.LogError(logger, "workflow", "ScanInbox", "ListFiles "+folder.Name, nil, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", folder.Name, err))
			continue
		}
		result.ScannedFolders++

		for _, doc := range PlanScan(files, existing, folder.Hint, fallbackMonth) {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if err := doc.Store(db, ctx); err != nil {
				if models.IsDuplicateKeyErr(err) {
					// concurrent scan inserted it first
					continue
				}
				config.LogError(logger, "workflow", "ScanInbox", "Store "+doc.Name, nil, err)
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", doc.Name, err))
				continue
			}
			existing[*doc.DriveFileId] = true
			result.NewDocuments = append(result.NewDocuments, doc.ID)
		}
	}

	if len(result.NewDocuments) > 0 {
		Bus().Publish(TopicDocuments)
	}
	return result, nil
}
