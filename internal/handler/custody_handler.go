package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"papertrail/internal/domain"
	"papertrail/internal/middleware"
	"papertrail/internal/service"
)

// CustodyHandler handles physical-copy custody endpoints.
type CustodyHandler struct {
	custodyService service.CustodyService
	maxPageSize    int
}

// NewCustodyHandler creates a new CustodyHandler. maxPageSize should match the
// service's custody.max_page_size so page metadata reports the served limit.
func NewCustodyHandler(custodyService service.CustodyService, maxPageSize int) *CustodyHandler {
	return &CustodyHandler{custodyService: custodyService, maxPageSize: maxPageSize}
}

type holderRequest struct {
	CheckoutType domain.CheckoutType `json:"checkout_type" binding:"required"`
	UserID       int64               `json:"user_id"`
	AgentID      int64               `json:"agent_id"`
	ClientID     int64               `json:"client_id"`
}

func (r holderRequest) ref() service.HolderRef {
	return service.HolderRef{
		Type:     domain.CheckoutType(strings.ToLower(string(r.CheckoutType))),
		UserID:   r.UserID,
		AgentID:  r.AgentID,
		ClientID: r.ClientID,
	}
}

// parseReturnDate accepts RFC 3339 timestamps or plain dates.
func parseReturnDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, domain.Validationf("expected_return_date must be RFC 3339 or YYYY-MM-DD")
}

// Checkout handles POST /api/v1/documents/:id/custody/checkout
// @Summary Check out a physical copy
// @Description Hand the physical copy of a document to a staff user, an agent, or a client
// @Tags custody
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param request body CheckoutRequest true "Checkout details"
// @Success 200 {object} Response{data=domain.CustodyRecord}
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "Insufficient permission"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Failure 409 {object} ErrorResponseBody "Already checked out"
// @Failure 503 {object} ErrorResponseBody "Storage unavailable"
// @Security BearerAuth
// @Router /documents/{id}/custody/checkout [post]
func (h *CustodyHandler) Checkout(c *gin.Context) {
	userID, ok := extractCaller(c)
	if !ok {
		return
	}
	documentID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		holderRequest
		FromUser           int64  `json:"from_user"`
		Notes              string `json:"notes"`
		ExpectedReturnDate string `json:"expected_return_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "checkout_type is required")
		return
	}
	due, err := parseReturnDate(req.ExpectedReturnDate)
	if err != nil {
		HandleError(c, err)
		return
	}
	fromUser := userID
	if req.FromUser != 0 && req.FromUser != userID {
		if middleware.GetRole(c) != string(domain.RoleAdmin) {
			RespondError(c, http.StatusForbidden, "FORBIDDEN", "only administrators may transfer on behalf of another holder")
			return
		}
		fromUser = req.FromUser
	}

	rec, err := h.custodyService.Checkout(c.Request.Context(), &service.CheckoutInput{
		DocumentID:         documentID,
		Holder:             req.ref(),
		PerformedBy:        userID,
		Notes:              req.Notes,
		ExpectedReturnDate: due,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rec)
}

// Checkin handles POST /api/v1/documents/:id/custody/checkin
// @Summary Check a physical copy back in
// @Description Return a copy held by the calling user
// @Tags custody
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param request body CheckinRequest false "Return notes"
// @Success 200 {object} Response{data=domain.CustodyRecord}
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Not checked out"
// @Failure 409 {object} ErrorResponseBody "Held by someone else"
// @Failure 503 {object} ErrorResponseBody "Storage unavailable"
// @Security BearerAuth
// @Router /documents/{id}/custody/checkin [post]
func (h *CustodyHandler) Checkin(c *gin.Context) {
	userID, ok := extractCaller(c)
	if !ok {
		return
	}
	documentID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req CheckinRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
			return
		}
	}

	rec, err := h.custodyService.Checkin(c.Request.Context(), &service.CheckinInput{
		DocumentID:     documentID,
		RequestingUser: userID,
		Notes:          req.Notes,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rec)
}

// Transfer handles POST /api/v1/documents/:id/custody/transfer
// @Summary Transfer a physical copy
// @Description Hand a copy held by the calling user to another user, an agent, or a client. Administrators may name the current holder in from_user.
// @Tags custody
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param request body TransferRequest true "Transfer details"
// @Success 200 {object} Response{data=domain.CustodyRecord}
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "from_user set by a non-administrator"
// @Failure 404 {object} ErrorResponseBody "Not checked out"
// @Failure 409 {object} ErrorResponseBody "Held by someone else"
// @Failure 503 {object} ErrorResponseBody "Storage unavailable"
// @Security BearerAuth
// @Router /documents/{id}/custody/transfer [post]
func (h *CustodyHandler) Transfer(c *gin.Context) {
	userID, ok := extractCaller(c)
	if !ok {
		return
	}
	documentID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		holderRequest
		Notes              string `json:"notes"`
		ExpectedReturnDate string `json:"expected_return_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "checkout_type is required")
		return
	}
	due, err := parseReturnDate(req.ExpectedReturnDate)
	if err != nil {
		HandleError(c, err)
		return
	}

	rec, err := h.custodyService.Transfer(c.Request.Context(), &service.TransferInput{
		DocumentID:         documentID,
		FromUser:           fromUser,
		To:                 req.ref(),
		PerformedBy:        userID,
		Notes:              req.Notes,
		ExpectedReturnDate: due,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rec)
}

// Rollback handles POST /api/v1/documents/:id/custody/rollback
// @Summary Roll back custody
// @Description Administrators return a copy to the available state regardless of holder
// @Tags custody
// @Accept json
// @Produce json
// @Param id path int true "Document ID"
// @Param request body RollbackRequest false "Rollback notes"
// @Success 200 {object} Response{data=domain.CustodyRecord}
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "Administrator role required"
// @Failure 404 {object} ErrorResponseBody "Not checked out"
// @Failure 503 {object} ErrorResponseBody "Storage unavailable"
// @Security BearerAuth
// @Router /documents/{id}/custody/rollback [post]
func (h *CustodyHandler) Rollback(c *gin.Context) {
	userID, ok := extractCaller(c)
	if !ok {
		return
	}
	documentID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req RollbackRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
			return
		}
	}

	rec, err := h.custodyService.Rollback(c.Request.Context(), &service.RollbackInput{
		DocumentID: documentID,
		AdminUser:  userID,
		Notes:      req.Notes,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rec)
}

// Get handles GET /api/v1/documents/:id/custody
// @Summary Get current custody
// @Tags custody
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} Response{data=domain.CustodyRecord}
// @Failure 404 {object} ErrorResponseBody "No custody record"
// @Security BearerAuth
// @Router /documents/{id}/custody [get]
func (h *CustodyHandler) Get(c *gin.Context) {
	documentID, ok := parseID(c, "id")
	if !ok {
		return
	}
	rec, err := h.custodyService.GetCustody(c.Request.Context(), documentID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rec)
}

// History handles GET /api/v1/documents/:id/custody/history
// @Summary List custody history
// @Description Transfer history for a document, newest first
// @Tags custody
// @Produce json
// @Param id path int true "Document ID"
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Limit" default(20)
// @Success 200 {object} Response{data=[]domain.TransferHistoryEntry}
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security BearerAuth
// @Router /documents/{id}/custody/history [get]
func (h *CustodyHandler) History(c *gin.Context) {
	documentID, ok := parseID(c, "id")
	if !ok {
		return
	}
	offset, limit := parsePagination(c, h.maxPageSize)

	entries, total, err := h.custodyService.GetHistory(c.Request.Context(), documentID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, entries, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Export handles GET /api/v1/documents/:id/custody/history/export
// @Summary Export custody history
// @Description Download the full transfer history as CSV or XLSX
// @Tags custody
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Document ID"
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponseBody "Unsupported format"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security BearerAuth
// @Router /documents/{id}/custody/history/export [get]
func (h *CustodyHandler) Export(c *gin.Context) {
	documentID, ok := parseID(c, "id")
	if !ok {
		return
	}
	format := domain.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(domain.ExportFormatCSV))))

	out, err := h.custodyService.ExportHistory(c.Request.Context(), documentID, format)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.FileName))
	c.Data(http.StatusOK, out.ContentType, out.Data)
}

// HeldBy handles GET /api/v1/users/:id/custody
// @Summary List copies held by a user
// @Tags custody
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} Response{data=[]domain.CustodyRecord}
// @Security BearerAuth
// @Router /users/{id}/custody [get]
func (h *CustodyHandler) HeldBy(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}
	records, err := h.custodyService.GetHeldBy(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, records)
}

// Overdue handles GET /api/v1/custody/overdue
// @Summary List overdue copies
// @Description Checked-out copies whose expected return date is before as_of (default now)
// @Tags custody
// @Produce json
// @Param as_of query string false "RFC 3339 timestamp or YYYY-MM-DD"
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Limit" default(20)
// @Success 200 {object} Response{data=[]domain.CustodyRecord}
// @Failure 400 {object} ErrorResponseBody "Invalid as_of"
// @Security BearerAuth
// @Router /custody/overdue [get]
func (h *CustodyHandler) Overdue(c *gin.Context) {
	var asOf time.Time
	if raw := c.Query("as_of"); raw != "" {
		t, err := parseReturnDate(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "as_of must be RFC 3339 or YYYY-MM-DD")
			return
		}
		asOf = *t
	}
	offset, limit := parsePagination(c, h.maxPageSize)

	records, total, err := h.custodyService.ListOverdue(c.Request.Context(), asOf, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, records, PagMeta{Total: total, Offset: offset, Limit: limit})
}
