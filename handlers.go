package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/techpros/finops_backend/config"
	"github.com/techpros/finops_backend/models"
	"github.com/techpros/finops_backend/utils"
	"github.com/techpros/finops_backend/workflow"
)

// External adapters are built once, lazily: the server must come up even
// when Drive or AI credentials are absent (direct uploads and reports still
// work without them).
var (
	driveOnce  sync.Once
	driveStore workflow.DriveStore
	driveErr   error

	extractorOnce sync.Once
	extractor     workflow.Extractor
	extractorErr  error
)

func getDriveStore(ctx context.Context) (workflow.DriveStore, error) {
	driveOnce.Do(func() {
		driveStore, driveErr = workflow.NewDriveStore(ctx)
	})
	return driveStore, driveErr
}

func getExtractor() (workflow.Extractor, error) {
	extractorOnce.Do(func() {
		extractor, extractorErr = workflow.NewAIExtractor()
	})
	return extractor, extractorErr
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func abortWithError(c *gin.Context, err error) {
	if err == utils.ErrorRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	correlationId, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
	config.LogError(config.GetLogger(), "handlers", c.FullPath(), correlationId, nil, err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "correlation_id": correlationId})
}

// ---- document inbox ----

func scanInboxHandler(c *gin.Context) {
	ctx := c.Request.Context()
	store, err := getDriveStore(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "drive not configured: " + err.Error()})
		return
	}
	rootFolderId := strings.TrimSpace(os.Getenv("DRIVE_ROOT_FOLDER_ID"))
	if rootFolderId == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "DRIVE_ROOT_FOLDER_ID is not set"})
		return
	}
	result, err := workflow.ScanInbox(ctx, store, rootFolderId)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func listDocumentsHandler(c *gin.Context) {
	var statuses []models.InboxStatus
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, models.InboxStatus(strings.TrimSpace(s)))
		}
	}
	docs, err := models.ListInboxDocuments(c.Request.Context(), statuses)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func getDocumentHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	doc, err := models.GetDocument(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func extractDocumentHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	ex, err := getExtractor()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "extraction not configured: " + err.Error()})
		return
	}
	// Drive is optional here: directly-uploaded documents come off GCS.
	store, _ := getDriveStore(c.Request.Context())
	doc, err := workflow.ProcessDocument(c.Request.Context(), ex, store, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// matchBankStatementHandler previews transaction matches for review. Nothing
// is written; the reviewer sends the selections to the import endpoint.
func matchBankStatementHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	doc, err := models.GetDocument(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	statement := doc.ExtractedData.BankStatement
	if statement == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document has no extracted bank statement"})
		return
	}
	items, err := models.ListSoftwareItems(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"month":   statement.Month,
		"matches": workflow.MatchTransactions(statement.Transactions, items),
	})
}

type importDocumentRequest struct {
	SalesInvoice  *workflow.SalesInvoiceImport      `json:"sales_invoice"`
	CostInvoice   *workflow.CostInvoiceImport       `json:"cost_invoice"`
	Contract      *workflow.ContractImport          `json:"contract"`
	Month         string                            `json:"month"`
	BankSelection []workflow.BankStatementSelection `json:"bank_selection"`
}

func importDocumentHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req importDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ctx := c.Request.Context()
	doc, err := models.GetDocument(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	var result *workflow.ImportResult
	switch doc.ImportCategory() {
	case models.DocumentCategorySalesInvoice:
		overrides := workflow.SalesInvoiceImport{}
		if req.SalesInvoice != nil {
			overrides = *req.SalesInvoice
		}
		result, err = workflow.ImportSalesInvoice(ctx, id, overrides)
	case models.DocumentCategoryCostInvoice:
		overrides := workflow.CostInvoiceImport{}
		if req.CostInvoice != nil {
			overrides = *req.CostInvoice
		}
		result, err = workflow.ImportCostInvoice(ctx, id, overrides)
	case models.DocumentCategoryBankStatement:
		result, err = workflow.ImportBankStatement(ctx, id, req.Month, req.BankSelection)
	case models.DocumentCategoryContract:
		overrides := workflow.ContractImport{}
		if req.Contract != nil {
			overrides = *req.Contract
		}
		result, err = workflow.ImportContract(ctx, id, overrides)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "document has no importable extracted data"})
		return
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func skipDocumentHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	doc, err := workflow.SkipDocument(c.Request.Context(), id, req.Reason)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func reopenDocumentHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	doc, err := models.ReopenDocument(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// ---- reference data ----

func listClientsHandler(c *gin.Context) {
	clients, err := models.ListClients(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func createClientHandler(c *gin.Context) {
	var input models.NewClient
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	client, err := models.CreateClient(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func getClientHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	client, err := models.GetClient(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func updateClientHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewClient
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	client, err := models.UpdateClient(c.Request.Context(), id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func deleteClientHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := models.DeleteClient(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func listTeamMembersHandler(c *gin.Context) {
	members, err := models.ListTeamMembers(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func createTeamMemberHandler(c *gin.Context) {
	var input models.NewTeamMember
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	member, err := models.CreateTeamMember(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func getTeamMemberHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	member, err := models.GetTeamMember(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func updateTeamMemberHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewTeamMember
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	member, err := models.UpdateTeamMember(c.Request.Context(), id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func listSoftwareItemsHandler(c *gin.Context) {
	items, err := models.ListSoftwareItems(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func createSoftwareItemHandler(c *gin.Context) {
	var input models.NewSoftwareItem
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	item, err := models.CreateSoftwareItem(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func getSoftwareItemHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	item, err := models.GetSoftwareItem(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func updateSoftwareItemHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewSoftwareItem
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	item, err := models.UpdateSoftwareItem(c.Request.Context(), id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ---- revenue ----

func listInvoicesHandler(c *gin.Context) {
	var clientId *int
	if v := c.Query("client_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			clientId = &id
		}
	}
	invoices, err := models.ListInvoices(c.Request.Context(), clientId)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func createInvoiceHandler(c *gin.Context) {
	var input models.NewInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	recognitions, err := workflow.BuildRecognitionRows(input.TotalValue, input.MonthsToSpread, input.StartMonth)
	if err != nil {
		abortWithError(c, err)
		return
	}
	invoice, err := models.CreateInvoice(c.Request.Context(), &input, recognitions)
	if err != nil {
		abortWithError(c, err)
		return
	}
	workflow.Bus().Publish(workflow.TopicInvoices)
	c.JSON(http.StatusCreated, invoice)
}

func getInvoiceHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	invoice, err := models.GetInvoice(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func updateInvoiceHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	recognitions, err := workflow.BuildRecognitionRows(input.TotalValue, input.MonthsToSpread, input.StartMonth)
	if err != nil {
		abortWithError(c, err)
		return
	}
	invoice, err := models.UpdateInvoice(c.Request.Context(), id, &input, recognitions)
	if err != nil {
		abortWithError(c, err)
		return
	}
	workflow.Bus().Publish(workflow.TopicInvoices)
	c.JSON(http.StatusOK, invoice)
}

func deleteInvoiceHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := models.DeleteInvoice(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	workflow.Bus().Publish(workflow.TopicInvoices)
	c.Status(http.StatusNoContent)
}

func respreadInvoiceHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	invoice, err := workflow.RespreadInvoice(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	workflow.Bus().Publish(workflow.TopicInvoices)
	c.JSON(http.StatusOK, invoice)
}

func listContractsHandler(c *gin.Context) {
	var clientId *int
	if v := c.Query("client_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			clientId = &id
		}
	}
	contracts, err := models.ListContracts(c.Request.Context(), clientId)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

func createContractHandler(c *gin.Context) {
	var input models.NewContract
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	contract, err := models.CreateContract(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	workflow.Bus().Publish(workflow.TopicContracts)
	c.JSON(http.StatusCreated, contract)
}

func getContractHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	contract, err := models.GetContract(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

// ---- monthly actuals ----

func monthParam(c *gin.Context) (string, bool) {
	month := c.Param("month")
	if !utils.IsValidMonth(month) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return "", false
	}
	return month, true
}

func listHRCostsHandler(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}
	costs, err := models.ListHRCostsForMonth(c.Request.Context(), month)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, costs)
}

func recordHRCostHandler(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}
	var input workflow.RecordHRCostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	input.Month = month
	if err := workflow.RecordHRCost(c.Request.Context(), input); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}

func listSoftwareCostsHandler(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}
	costs, err := models.ListSoftwareCostsForMonth(c.Request.Context(), month)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, costs)
}

func recordSoftwareCostsHandler(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}
	var input workflow.RecordSoftwareCostsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	input.Month = month
	if err := workflow.RecordSoftwareCosts(c.Request.Context(), input); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}

// ---- reporting and assistant ----

func monthlyPnLHandler(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		return
	}
	report, err := models.GetMonthlyPnL(c.Request.Context(), month)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type assistantToolRequest struct {
	Name      string `json:"name" binding:"required"`
	Arguments string `json:"arguments"`
}

func assistantToolHandler(c *gin.Context) {
	var req assistantToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	arguments := []byte(req.Arguments)
	if req.Arguments == "" {
		arguments = []byte("{}")
	}
	result, err := workflow.ToolCall(c.Request.Context(), req.Name, arguments)
	if err != nil {
		config.LogError(config.GetLogger(), "handlers", "assistantToolHandler", req.Name, nil, err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}
