package workflow

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/techpros/finops_backend/config"
	"github.com/techpros/finops_backend/models"
	"github.com/techpros/finops_backend/utils"
)

// Extraction adapter: sends document bytes to the external AI
// document-understanding service with category-specific instructions and
// grades the response by required-field completeness.

// ConfidenceGate routes completed vs manual_review.
const ConfidenceGate = 0.85

type ExtractionRequest struct {
	Data         []byte
	MimeType     string
	Instructions string
}

// Extractor is the AI service boundary: document in, free-form text out.
// The text is expected to contain a JSON object but is never trusted to.
type Extractor interface {
	Extract(ctx context.Context, req ExtractionRequest) (string, error)
}

type aiExtractor struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func NewAIExtractor() (Extractor, error) {
	baseURL := strings.TrimSpace(os.Getenv("AI_API_URL"))
	if baseURL == "" {
		return nil, errors.New("AI_API_URL is required")
	}
	apiKey := strings.TrimSpace(os.Getenv("AI_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("AI_API_KEY is required")
	}
	model := strings.TrimSpace(os.Getenv("AI_MODEL"))

	timeout := 60 * time.Second
	if v := strings.TrimSpace(os.Getenv("AI_TIMEOUT_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeout = time.Duration(n) * time.Second
		}
	}

	return &aiExtractor{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type aiExtractionPayload struct {
	Model        string `json:"model,omitempty"`
	MimeType     string `json:"mime_type"`
	Document     string `json:"document_base64"`
	Instructions string `json:"instructions"`
}

type aiExtractionResponse struct {
	Text string `json:"text"`
}

func (c *aiExtractor) Extract(ctx context.Context, req ExtractionRequest) (string, error) {
	payload := aiExtractionPayload{
		Model:        c.model,
		MimeType:     req.MimeType,
		Document:     base64.StdEncoding.EncodeToString(req.Data),
		Instructions: req.Instructions,
	}
	body, err := utils.MarshalToJSON(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/extract", strings.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("extraction service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed aiExtractionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unexpected extraction response: %w", err)
	}
	if parsed.Text == "" {
		return "", errors.New("extraction service returned empty text")
	}
	return parsed.Text, nil
}

// CategoryInstructions is the per-category prompt sent with the document.
func CategoryInstructions(category models.DocumentCategory) string {
	switch category {
	case models.DocumentCategorySalesInvoice:
		return `Extract the sales invoice fields and respond with only a JSON object:
{"client_name": "", "invoice_number": "", "invoice_date": "YYYY-MM-DD", "total_value": "", "currency": "GBP", "months_to_spread": 1, "start_month": "YYYY-MM"}`
	case models.DocumentCategoryCostInvoice:
		return `Extract the supplier invoice fields and respond with only a JSON object:
{"supplier_name": "", "amount": "", "month": "YYYY-MM", "description": ""}`
	case models.DocumentCategoryBankStatement:
		return `Extract every transaction and respond with only a JSON object:
{"month": "YYYY-MM", "transactions": [{"date": "YYYY-MM-DD", "description": "", "amount": ""}]}`
	case models.DocumentCategoryContract:
		return `Extract the contract terms and respond with only a JSON object:
{"client_name": "", "monthly_value": "", "total_value": "", "start_date": "YYYY-MM-DD", "end_date": "YYYY-MM-DD"}`
	default:
		return `Summarize the document and respond with only a JSON object: {"summary": ""}`
	}
}

// StripCodeFences removes a surrounding markdown code fence if present and
// trims to the outermost JSON object.
func StripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		return trimmed[start : end+1]
	}
	return trimmed
}

// ParseExtractionText parses the model response into the category's typed
// variant. Unparseable responses fall back to Raw with zero confidence.
func ParseExtractionText(category models.DocumentCategory, text string) (models.ExtractedData, float64) {
	cleaned := StripCodeFences(text)
	data := models.ExtractedData{Category: category}

	var parseErr error
	switch category {
	case models.DocumentCategorySalesInvoice:
		var fields models.SalesInvoiceFields
		if parseErr = json.Unmarshal([]byte(cleaned), &fields); parseErr == nil {
			data.SalesInvoice = &fields
		}
	case models.DocumentCategoryCostInvoice:
		var fields models.CostInvoiceFields
		if parseErr = json.Unmarshal([]byte(cleaned), &fields); parseErr == nil {
			data.CostInvoice = &fields
		}
	case models.DocumentCategoryBankStatement:
		var fields models.BankStatementFields
		if parseErr = json.Unmarshal([]byte(cleaned), &fields); parseErr == nil {
			data.BankStatement = &fields
		}
	case models.DocumentCategoryContract:
		var fields models.ContractFields
		if parseErr = json.Unmarshal([]byte(cleaned), &fields); parseErr == nil {
			data.Contract = &fields
		}
	default:
		parseErr = errors.New("no schema for category")
	}

	if parseErr != nil {
		return models.ExtractedData{Category: category, Raw: text}, 0
	}
	return data, data.Completeness()
}

// ProcessDocument runs one extraction: pending/error -> processing ->
// completed/manual_review (confidence gate) or error. Safe to call again
// for error documents; imported/skipped documents are rejected by the CAS.
func ProcessDocument(ctx context.Context, extractor Extractor, store DriveStore, documentId int) (*models.Document, error) {
	doc, err := models.GetDocument(ctx, documentId)
	if err != nil {
		return nil, err
	}
	if doc.DocumentCategory == nil {
		return nil, errors.New("document has no category; assign one before extraction")
	}
	category := *doc.DocumentCategory

	db := config.GetDB()
	ok, err := doc.TransitionStatus(db, ctx,
		[]models.InboxStatus{models.InboxStatusPending, models.InboxStatusError}, models.InboxStatusProcessing, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("document is not awaiting extraction")
	}

	markError := func(cause error) (*models.Document, error) {
		config.LogError(config.GetLogger(), "workflow", "ProcessDocument", doc.Name, nil, cause)
		if _, casErr := doc.TransitionStatus(db, ctx,
			[]models.InboxStatus{models.InboxStatusProcessing}, models.InboxStatusError, nil); casErr != nil {
			return nil, casErr
		}
		return doc, nil
	}

	data, err := fetchDocumentBytes(ctx, store, doc)
	if err != nil {
		return markError(err)
	}

	text, err := extractor.Extract(ctx, ExtractionRequest{
		Data:         data,
		MimeType:     doc.MimeType,
		Instructions: CategoryInstructions(category),
	})
	if err != nil {
		return markError(err)
	}

	extracted, confidence := ParseExtractionText(category, text)
	next := models.InboxStatusManualReview
	if confidence >= ConfidenceGate {
		next = models.InboxStatusCompleted
	}

	ok, err = doc.TransitionStatus(db, ctx,
		[]models.InboxStatus{models.InboxStatusProcessing}, next, map[string]interface{}{
			"extracted_data":        extracted,
			"extraction_confidence": confidence,
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("document status changed during extraction")
	}
	doc.ExtractedData = extracted
	doc.ExtractionConfidence = confidence

	Bus().Publish(TopicDocuments)
	return doc, nil
}

func fetchDocumentBytes(ctx context.Context, store DriveStore, doc *models.Document) ([]byte, error) {
	if doc.DriveFileId != nil && *doc.DriveFileId != "" {
		if store == nil {
			return nil, errors.New("drive store not configured")
		}
		return store.DownloadFile(ctx, *doc.DriveFileId)
	}
	if doc.StoragePath == "" {
		return nil, errors.New("document has no storage location")
	}
	return utils.DownloadBytesFromGCS(ctx, doc.StoragePath)
}
