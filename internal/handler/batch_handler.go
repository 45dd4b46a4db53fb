package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"expenso/internal/csvexport"
	"expenso/internal/service"
	"expenso/internal/xlsxexport"
)

// BatchHandler handles batch submission and lifecycle endpoints.
type BatchHandler struct {
	batchService service.BatchService
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(batchService service.BatchService) *BatchHandler {
	return &BatchHandler{batchService: batchService}
}

// Submit handles POST /api/v1/batches
// @Summary Submit a batch
// @Description Upload a primary/receipt ledger pair, reconcile it against history, and act on the recommendation
// @Tags batches
// @Accept multipart/form-data
// @Produce json
// @Param primary formData file true "Primary ledger (CSV)"
// @Param receipt formData file true "Receipt ledger (CSV)"
// @Success 201 {object} Response{data=SubmitBatchResponse} "Batch created"
// @Failure 400 {object} ErrorResponseBody "Missing artifact or unsupported type"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody "Extraction failed"
// @Security BearerAuth
// @Router /batches [post]
func (h *BatchHandler) Submit(c *gin.Context) {
	ownerID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	primary, primaryHeader, err := c.Request.FormFile("primary")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_ARTIFACT", "primary file field is required")
		return
	}
	defer func() { _ = primary.Close() }()

	receipt, receiptHeader, err := c.Request.FormFile("receipt")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_ARTIFACT", "receipt file field is required")
		return
	}
	defer func() { _ = receipt.Close() }()

	result, err := h.batchService.Submit(c.Request.Context(), service.SubmitInput{
		OwnerID:       ownerID,
		Primary:       primary,
		PrimaryHeader: primaryHeader,
		Receipt:       receipt,
		ReceiptHeader: receiptHeader,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, result)
}

// List handles GET /api/v1/batches
// @Summary List batches
// @Description List the caller's batches with pagination, newest first
// @Tags batches
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Batch,meta=PagMeta} "List of batches"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /batches [get]
func (h *BatchHandler) List(c *gin.Context) {
	ownerID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	batches, total, err := h.batchService.List(c.Request.Context(), ownerID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, batches, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/batches/:id
// @Summary Get batch by ID
// @Tags batches
// @Produce json
// @Param id path string true "Batch ID (UUID)"
// @Success 200 {object} Response{data=domain.Batch} "Batch"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Batch not found"
// @Security BearerAuth
// @Router /batches/{id} [get]
func (h *BatchHandler) GetByID(c *gin.Context) {
	ownerID, batchID, ok := h.ownerAndBatch(c)
	if !ok {
		return
	}

	batch, err := h.batchService.GetByID(c.Request.Context(), ownerID, batchID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, batch)
}

// Records handles GET /api/v1/batches/:id/records
// @Summary List batch records
// @Description List all expense records of a batch, ordered by person
// @Tags batches
// @Produce json
// @Param id path string true "Batch ID (UUID)"
// @Success 200 {object} Response{data=[]domain.ExpenseRecord} "Records"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Batch not found"
// @Security BearerAuth
// @Router /batches/{id}/records [get]
func (h *BatchHandler) Records(c *gin.Context) {
	ownerID, batchID, ok := h.ownerAndBatch(c)
	if !ok {
		return
	}

	records, err := h.batchService.ListRecords(c.Request.Context(), ownerID, batchID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, records)
}

// Delta handles GET /api/v1/batches/:id/delta
// @Summary Preview the reconciliation delta
// @Description Re-run reconciliation for an existing batch without changing its state
// @Tags batches
// @Produce json
// @Param id path string true "Batch ID (UUID)"
// @Success 200 {object} Response "Delta detection result"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Batch not found"
// @Security BearerAuth
// @Router /batches/{id}/delta [get]
func (h *BatchHandler) Delta(c *gin.Context) {
	ownerID, batchID, ok := h.ownerAndBatch(c)
	if !ok {
		return
	}

	result, err := h.batchService.PreviewDelta(c.Request.Context(), ownerID, batchID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// Resolve handles POST /api/v1/batches/:id/review
// @Summary Resolve a batch under review
// @Description Apply a reviewer's decision to a needs_review batch
// @Tags batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID (UUID)"
// @Param request body ReviewDecisionRequest true "Review decision"
// @Success 200 {object} Response{data=domain.Batch} "Updated batch"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Batch not found"
// @Failure 409 {object} ErrorResponseBody "Batch not reviewable"
// @Security BearerAuth
// @Router /batches/{id}/review [post]
func (h *BatchHandler) Resolve(c *gin.Context) {
	ownerID, batchID, ok := h.ownerAndBatch(c)
	if !ok {
		return
	}

	var decision service.ReviewDecision
	if err := c.ShouldBindJSON(&decision); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	batch, err := h.batchService.Resolve(c.Request.Context(), ownerID, batchID, decision)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, batch)
}

// ExportCSV handles GET /api/v1/batches/:id/export/csv
// @Summary Export batch records as CSV
// @Description Download all records of a batch as a CSV file (UTF-8 with BOM)
// @Tags batches
// @Produce text/csv
// @Param id path string true "Batch ID (UUID)"
// @Success 200 {string} string "CSV file"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Batch not found"
// @Security BearerAuth
// @Router /batches/{id}/export/csv [get]
func (h *BatchHandler) ExportCSV(c *gin.Context) {
	ownerID, batchID, ok := h.ownerAndBatch(c)
	if !ok {
		return
	}

	records, err := h.batchService.ListRecords(c.Request.Context(), ownerID, batchID)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := csvexport.BuildFilename(batchID.String())
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write(csvexport.BOM); err != nil {
		return
	}

	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteRecords(records); err != nil {
		return
	}
	w.Flush()
}

// ExportXLSX handles GET /api/v1/batches/:id/export/xlsx
// @Summary Export a batch as an Excel workbook
// @Description Download a two-sheet workbook: batch summary plus all records
// @Tags batches
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Batch ID (UUID)"
// @Success 200 {string} string "XLSX file"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Batch not found"
// @Security BearerAuth
// @Router /batches/{id}/export/xlsx [get]
func (h *BatchHandler) ExportXLSX(c *gin.Context) {
	ownerID, batchID, ok := h.ownerAndBatch(c)
	if !ok {
		return
	}

	batch, err := h.batchService.GetByID(c.Request.Context(), ownerID, batchID)
	if err != nil {
		HandleError(c, err)
		return
	}
	records, err := h.batchService.ListRecords(c.Request.Context(), ownerID, batchID)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := xlsxexport.BuildFilename(batchID.String())
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if err := xlsxexport.WriteBatch(c.Writer, batch, records); err != nil {
		HandleError(c, err)
	}
}

func (h *BatchHandler) ownerAndBatch(c *gin.Context) (ownerID, batchID uuid.UUID, ok bool) {
	ownerID, _, ok = extractAuthContext(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid batch ID")
		return uuid.Nil, uuid.Nil, false
	}
	return ownerID, batchID, true
}
