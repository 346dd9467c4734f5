package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"papertrail/internal/domain"
	"papertrail/internal/handler"
	"papertrail/internal/middleware"
	"papertrail/internal/service"
	"papertrail/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newCustodyHandler() (*handler.CustodyHandler, *mocks.MockCustodyService) {
	mockSvc := new(mocks.MockCustodyService)
	return handler.NewCustodyHandler(mockSvc, 100), mockSvc
}

func newContext(method, target string, body interface{}, documentID string) (*gin.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	if documentID != "" {
		c.Params = gin.Params{{Key: "id", Value: documentID}}
	}
	return c, w
}

func setCaller(c *gin.Context, userID int64, role string) {
	c.Set(middleware.ContextKeyUserID, userID)
	c.Set(middleware.ContextKeyRole, role)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func checkedOutRecord(documentID int64, holder domain.Holder) *domain.CustodyRecord {
	now := time.Now().UTC()
	return &domain.CustodyRecord{
		ID:           1,
		DocumentID:   documentID,
		Holder:       holder,
		Status:       domain.CustodyStatusCheckedOut,
		CheckedOutAt: &now,
	}
}

// --- Checkout ---

func TestCustodyHandler_Checkout_Success(t *testing.T) {
	h, mockSvc := newCustodyHandler()

	mockSvc.On("Checkout", mock.Anything, mock.MatchedBy(func(in *service.CheckoutInput) bool {
		return in.DocumentID == 10 &&
			in.PerformedBy == 3 &&
			in.Holder.Type == domain.CheckoutTypeUser &&
			in.Holder.UserID == 42 &&
			in.ExpectedReturnDate != nil &&
			in.ExpectedReturnDate.Equal(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC))
	})).Return(checkedOutRecord(10, domain.UserHolder(42)), nil)

	c, w := newContext(http.MethodPost, "/api/v1/documents/10/custody/checkout", map[string]interface{}{
		"checkout_type":        "user",
		"user_id":              42,
		"expected_return_date": "2026-11-01",
	}, "10")
	setCaller(c, 3, "member")

	h.Checkout(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "checked_out", data["status"])
	mockSvc.AssertExpectations(t)
}

func TestCustodyHandler_Checkout_MissingType(t *testing.T) {
	h, mockSvc := newCustodyHandler()

	c, w := newContext(http.MethodPost, "/", map[string]interface{}{"user_id": 42}, "10")
	setCaller(c, 3, "member")

	h.Checkout(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode(t, w).Error.Code)
	mockSvc.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything)
}

func TestCustodyHandler_Checkout_BadReturnDate(t *testing.T) {
	h, mockSvc := newCustodyHandler()

	c, w := newContext(http.MethodPost, "/", map[string]interface{}{
		"checkout_type":        "agent",
		"agent_id":             7,
		"expected_return_date": "next tuesday",
	}, "10")
	setCaller(c, 3, "member")

	h.Checkout(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)
	mockSvc.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything)
}

func TestCustodyHandler_Checkout_InvalidDocumentID(t *testing.T) {
	h, _ := newCustodyHandler()

	c, w := newContext(http.MethodPost, "/", map[string]interface{}{"checkout_type": "user"}, "abc")
	setCaller(c, 3, "member")

	h.Checkout(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decode(t, w).Error.Code)
}

func TestCustodyHandler_Checkout_NoCaller(t *testing.T) {
	h, _ := newCustodyHandler()

	c, w := newContext(http.MethodPost, "/", map[string]interface{}{"checkout_type": "user"}, "10")

	h.Checkout(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCustodyHandler_Checkout_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"already checked out", domain.ErrAlreadyCheckedOut, http.StatusConflict, "ALREADY_CHECKED_OUT"},
		{"document missing", domain.ErrDocumentNotFound, http.StatusNotFound, "DOCUMENT_NOT_FOUND"},
		{"document inactive", domain.ErrDocumentInactive, http.StatusNotFound, "DOCUMENT_INACTIVE"},
		{"validation", domain.Validationf("client 9 does not exist"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"persistence", domain.ErrPersistence, http.StatusServiceUnavailable, "PERSISTENCE_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mockSvc := newCustodyHandler()
			mockSvc.On("Checkout", mock.Anything, mock.Anything).Return(nil, tt.err)

			c, w := newContext(http.MethodPost, "/", map[string]interface{}{
				"checkout_type": "client",
				"client_id":     9,
			}, "10")
			setCaller(c, 3, "member")

			h.Checkout(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

// --- Checkin ---

func TestCustodyHandler_Checkin_UsesCaller(t *testing.T) {
	h, mockSvc := newCustodyHandler()

	available := &domain.CustodyRecord{ID: 1, DocumentID: 10, Status: domain.CustodyStatusAvailable}
	mockSvc.On("Checkin", mock.Anything, &service.CheckinInput{
		DocumentID:     10,
		RequestingUser: 42,
		Notes:          "returned",
	}).Return(available, nil)

	c, w := newContext(http.MethodPost, "/", map[string]string{"notes": "returned"}, "10")
	setCaller(c, 42, "member")

	h.Checkin(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestCustodyHandler_Checkin_EmptyBody(t *testing.T) {
	h, mockSvc := newCustodyHandler()

	mockSvc.On("Checkin", mock.Anything, &service.CheckinInput{DocumentID: 10, RequestingUser: 42}).
		Return(&domain.CustodyRecord{DocumentID: 10, Status: domain.CustodyStatusAvailable}, nil)

	c, w := newContext(http.MethodPost, "/", nil, "10")
	setCaller(c, 42, "member")

	h.Checkin(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestCustodyHandler_Checkin_HeldBySomeoneElse(t *testing.T) {
	h, mockSvc := newCustodyHandler()
	mockSvc.On("Checkin", mock.Anything, mock.Anything).Return(nil, domain.ErrHolderMismatch)

	c, w := newContext(http.MethodPost, "/", nil, "10")
	setCaller(c, 42, "member")

	h.Checkin(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "HOLDER_MISMATCH", decode(t, w).Error.Code)
}

// --- Transfer ---

func TestCustodyHandler_Transfer_CallerIsSenderAndPerformer(t *testing.T) {
	h, mockSvc := newCustodyHandler()

	mockSvc.On("Transfer", mock.Anything, mock.MatchedBy(func(in *service.TransferInput) bool {
		return in.DocumentID == 10 &&
			in.FromUser == 42 &&
			in.PerformedBy == 42 &&
			in.To.Type == domain.CheckoutTypeClient &&
			in.To.ClientID == 13 &&
			in.ExpectedReturnDate == nil
	})).Return(checkedOutRecord(10, domain.ClientHolder(13)), nil)

	c, w := newContext(http.MethodPost, "/", map[string]interface{}{
		"checkout_type": "CLIENT",
		"client_id":     13,
		"notes":         "front desk",
	}, "10")
	setCaller(c, 42, "member")

	h.Transfer(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestCustodyHandler_Transfer_NothingCheckedOut(t *testing.T) {
	h, mockSvc := newCustodyHandler()
	mockSvc.On("Transfer", mock.Anything, mock.Anything).Return(nil, domain.ErrNoActiveCustody)

	c, w := newContext(http.MethodPost, "/", map[string]interface{}{"checkout_type": "user", "user_id": 5}, "10")
	setCaller(c, 42, "member")

	h.Transfer(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NO_ACTIVE_CUSTODY", decode(t, w).Error.Code)
}

func TestCustodyHandler_Transfer_AdminOnBehalfOfHolder(t *testing.T) {
	h, mockSvc := newCustodyHandler()

	mockSvc.On("Transfer", mock.Anything, mock.MatchedBy(func(in *service.TransferInput) bool {
		return in.FromUser == 42 && in.PerformedBy == 1 && in.To.UserID == 5
	})).Return(checkedOutRecord(10, domain.UserHolder(5)), nil)

	c, w := newContext(http.MethodPost, "/", map[string]interface{}{
		"checkout_type": "user",
		"user_id":       5,
		"from_user":     42,
	}, "10")
	setCaller(c, 1, "admin")

	h.Transfer(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestCustodyHandler_Transfer_MemberCannotActForAnotherHolder(t *testing.T) {
	h, mockSvc := newCustodyHandler()

	c, w := newContext(http.MethodPost, "/", map[string]interface{}{
		"checkout_type": "user",
		"user_id":       5,
		"from_user":     42,
	}, "10")
	setCaller(c, 3, "member")

	h.Transfer(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decode(t, w).Error.Code)
	mockSvc.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything)
}

func TestCustodyHandler_Transfer_OwnIDInFromUserIsAllowed(t *testing.T) {
	h, mockSvc := newCustodyHandler()
	mockSvc.On("Transfer", mock.Anything, mock.MatchedBy(func(in *service.TransferInput) bool {
		return in.FromUser == 3 && in.PerformedBy == 3
	})).Return(checkedOutRecord(10, domain.UserHolder(5)), nil)

	c, w := newContext(http.MethodPost, "/", map[string]interface{}{
		"checkout_type": "user",
		"user_id":       5,
		"from_user":     3,
	}, "10")
	setCaller(c, 3, "member")

	h.Transfer(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

// --- Rollback ---

func TestCustodyHandler_Rollback_NotAdmin(t *testing.T) {
	h, mockSvc := newCustodyHandler()
	mockSvc.On("Rollback", mock.Anything, &service.RollbackInput{DocumentID: 10, AdminUser: 3, Notes: "wrong client"}).
		Return(nil, domain.ErrNotAdmin)

	c, w := newContext(http.MethodPost, "/", map[string]string{"notes": "wrong client"}, "10")
	setCaller(c, 3, "admin")

	h.Rollback(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "NOT_ADMIN", decode(t, w).Error.Code)
	mockSvc.AssertExpectations(t)
}

func TestCustodyHandler_Rollback_Success(t *testing.T) {
	h, mockSvc := newCustodyHandler()
	mockSvc.On("Rollback", mock.Anything, mock.Anything).
		Return(&domain.CustodyRecord{DocumentID: 10, Status: domain.CustodyStatusAvailable}, nil)

	c, w := newContext(http.MethodPost, "/", nil, "10")
	setCaller(c, 1, "admin")

	h.Rollback(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, "available", data["status"])
}

// --- Reads ---

func TestCustodyHandler_Get_NotFound(t *testing.T) {
	h, mockSvc := newCustodyHandler()
	mockSvc.On("GetCustody", mock.Anything, int64(10)).Return(nil, domain.ErrNotFound)

	c, w := newContext(http.MethodGet, "/", nil, "10")

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w).Error.Code)
}

func TestCustodyHandler_History_Paginated(t *testing.T) {
	h, mockSvc := newCustodyHandler()

	entries := []domain.TransferHistoryEntry{
		{ID: 2, DocumentID: 10, TransferType: domain.TransferUserToUser},
		{ID: 1, DocumentID: 10, TransferType: domain.TransferUserToUser},
	}
	mockSvc.On("GetHistory", mock.Anything, int64(10), 5, 2).Return(entries, 7, nil)

	c, w := newContext(http.MethodGet, "/api/v1/documents/10/custody/history?offset=5&limit=2", nil, "10")

	h.History(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 7, resp.Meta.Total)
	assert.Equal(t, 5, resp.Meta.Offset)
	assert.Equal(t, 2, resp.Meta.Limit)
	assert.Len(t, resp.Data, 2)
}

func TestCustodyHandler_History_LimitCappedInMeta(t *testing.T) {
	h, mockSvc := newCustodyHandler()
	mockSvc.On("GetHistory", mock.Anything, int64(10), 0, 100).Return([]domain.TransferHistoryEntry{}, 0, nil)

	c, w := newContext(http.MethodGet, "/api/v1/documents/10/custody/history?limit=500", nil, "10")

	h.History(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 100, resp.Meta.Limit)
	mockSvc.AssertExpectations(t)
}

func TestCustodyHandler_Export_CSV(t *testing.T) {
	h, mockSvc := newCustodyHandler()
	mockSvc.On("ExportHistory", mock.Anything, int64(10), domain.ExportFormatCSV).Return(&service.HistoryExport{
		FileName:    "custody_history_10_2026-10-15.csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        []byte("Entry ID\n1\n"),
	}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/documents/10/custody/history/export", nil, "10")

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="custody_history_10_2026-10-15.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Entry ID\n1\n", w.Body.String())
}

func TestCustodyHandler_Export_UnsupportedFormat(t *testing.T) {
	h, mockSvc := newCustodyHandler()
	mockSvc.On("ExportHistory", mock.Anything, int64(10), domain.ExportFormat("pdf")).
		Return(nil, domain.Validationf("format must be csv or xlsx"))

	c, w := newContext(http.MethodGet, "/api/v1/documents/10/custody/history/export?format=PDF", nil, "10")

	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error.Message, "format must be csv or xlsx")
}

func TestCustodyHandler_HeldBy(t *testing.T) {
	h, mockSvc := newCustodyHandler()
	mockSvc.On("GetHeldBy", mock.Anything, int64(42)).
		Return([]domain.CustodyRecord{*checkedOutRecord(10, domain.UserHolder(42))}, nil)

	c, w := newContext(http.MethodGet, "/", nil, "42")

	h.HeldBy(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w).Data, 1)
}

func TestCustodyHandler_Overdue_AsOf(t *testing.T) {
	h, mockSvc := newCustodyHandler()
	asOf := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	mockSvc.On("ListOverdue", mock.Anything, asOf, 0, 20).Return([]domain.CustodyRecord{}, 0, nil)

	c, w := newContext(http.MethodGet, "/api/v1/custody/overdue?as_of=2026-10-01", nil, "")

	h.Overdue(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestCustodyHandler_Overdue_BadAsOf(t *testing.T) {
	h, mockSvc := newCustodyHandler()

	c, w := newContext(http.MethodGet, "/api/v1/custody/overdue?as_of=yesterday", nil, "")

	h.Overdue(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "ListOverdue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
