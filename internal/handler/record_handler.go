package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"expenso/internal/service"
)

// RecordHandler handles per-record endpoints.
type RecordHandler struct {
	recordService service.RecordService
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(recordService service.RecordService) *RecordHandler {
	return &RecordHandler{recordService: recordService}
}

// GetByID handles GET /api/v1/records/:id
// @Summary Get record by ID
// @Tags records
// @Produce json
// @Param id path string true "Record ID (UUID)"
// @Success 200 {object} Response{data=domain.ExpenseRecord} "Record"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Record not found"
// @Security BearerAuth
// @Router /records/{id} [get]
func (h *RecordHandler) GetByID(c *gin.Context) {
	ownerID, recordID, ok := h.ownerAndRecord(c)
	if !ok {
		return
	}

	rec, err := h.recordService.GetByID(c.Request.Context(), ownerID, recordID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, rec)
}

// Update handles PATCH /api/v1/records/:id
// @Summary Correct a record's amounts
// @Tags records
// @Accept json
// @Produce json
// @Param id path string true "Record ID (UUID)"
// @Param request body UpdateRecordRequest true "Fields to update"
// @Success 200 {object} Response{data=domain.ExpenseRecord} "Updated record"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Record not found"
// @Security BearerAuth
// @Router /records/{id} [patch]
func (h *RecordHandler) Update(c *gin.Context) {
	ownerID, recordID, ok := h.ownerAndRecord(c)
	if !ok {
		return
	}

	var input service.UpdateRecordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	rec, err := h.recordService.Update(c.Request.Context(), ownerID, recordID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, rec)
}

// ResolveIssue handles POST /api/v1/records/:id/resolve-issue
// @Summary Resolve a record issue
// @Description Remove one issue flag; the record flips to processed once no flags remain
// @Tags records
// @Accept json
// @Produce json
// @Param id path string true "Record ID (UUID)"
// @Param request body ResolveIssueRequest true "Flag to resolve"
// @Success 200 {object} Response{data=domain.ExpenseRecord} "Updated record"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Record not found"
// @Security BearerAuth
// @Router /records/{id}/resolve-issue [post]
func (h *RecordHandler) ResolveIssue(c *gin.Context) {
	ownerID, recordID, ok := h.ownerAndRecord(c)
	if !ok {
		return
	}

	var input ResolveIssueRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	rec, err := h.recordService.ResolveIssue(c.Request.Context(), ownerID, recordID, input.Flag)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, rec)
}

func (h *RecordHandler) ownerAndRecord(c *gin.Context) (ownerID, recordID uuid.UUID, ok bool) {
	ownerID, _, ok = extractAuthContext(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid record ID")
		return uuid.Nil, uuid.Nil, false
	}
	return ownerID, recordID, true
}
