package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"expenso/internal/domain"
	"expenso/internal/handler"
	"expenso/mocks"
)

func newRecordHandler() (*handler.RecordHandler, *mocks.MockRecordService) {
	mockSvc := new(mocks.MockRecordService)
	h := handler.NewRecordHandler(mockSvc)
	return h, mockSvc
}

func TestRecordHandler_GetByID_Success(t *testing.T) {
	h, mockSvc := newRecordHandler()
	ownerID := uuid.New()
	recordID := uuid.New()

	rec := &domain.ExpenseRecord{
		ID:            recordID,
		OwnerID:       ownerID,
		PersonName:    "Asha Rao",
		PersonRef:     "EMP-042",
		PrimaryAmount: 1250.50,
		Status:        domain.RecordStatusProcessed,
	}
	mockSvc.On("GetByID", mock.Anything, ownerID, recordID).Return(rec, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/records/"+recordID.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: recordID.String()}}
	setAuthContext(c, ownerID, "member")

	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	mockSvc.AssertExpectations(t)
}

func TestRecordHandler_GetByID_NotFound(t *testing.T) {
	h, mockSvc := newRecordHandler()
	ownerID := uuid.New()
	recordID := uuid.New()

	mockSvc.On("GetByID", mock.Anything, ownerID, recordID).Return(nil, domain.ErrRecordNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/records/"+recordID.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: recordID.String()}}
	setAuthContext(c, ownerID, "member")

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordHandler_Update_Success(t *testing.T) {
	h, mockSvc := newRecordHandler()
	ownerID := uuid.New()
	recordID := uuid.New()

	updated := &domain.ExpenseRecord{
		ID:            recordID,
		OwnerID:       ownerID,
		PersonName:    "Asha Rao",
		PrimaryAmount: 1300.00,
	}
	mockSvc.On("Update", mock.Anything, ownerID, recordID, mock.AnythingOfType("service.UpdateRecordInput")).
		Return(updated, nil)

	payload, _ := json.Marshal(gin.H{"primary_amount": 1300.00})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPatch, "/api/v1/records/"+recordID.String(), bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: recordID.String()}}
	setAuthContext(c, ownerID, "member")

	h.Update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestRecordHandler_ResolveIssue_Success(t *testing.T) {
	h, mockSvc := newRecordHandler()
	ownerID := uuid.New()
	recordID := uuid.New()

	resolved := &domain.ExpenseRecord{
		ID:      recordID,
		OwnerID: ownerID,
		Status:  domain.RecordStatusProcessed,
	}
	mockSvc.On("ResolveIssue", mock.Anything, ownerID, recordID, domain.IssueReceiptMismatch).
		Return(resolved, nil)

	payload, _ := json.Marshal(gin.H{"flag": "receipt_mismatch"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/records/"+recordID.String()+"/resolve-issue", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: recordID.String()}}
	setAuthContext(c, ownerID, "member")

	h.ResolveIssue(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestRecordHandler_ResolveIssue_MissingFlag(t *testing.T) {
	h, mockSvc := newRecordHandler()
	ownerID := uuid.New()
	recordID := uuid.New()

	payload, _ := json.Marshal(gin.H{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/records/"+recordID.String()+"/resolve-issue", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: recordID.String()}}
	setAuthContext(c, ownerID, "member")

	h.ResolveIssue(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "ResolveIssue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
