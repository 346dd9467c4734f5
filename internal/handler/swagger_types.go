package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// CheckoutRequest represents the checkout request body.
type CheckoutRequest struct {
	CheckoutType       string `json:"checkout_type" binding:"required" example:"user" enums:"user,agent,client"`
	UserID             int64  `json:"user_id" example:"42"`
	AgentID            int64  `json:"agent_id" example:"7"`
	ClientID           int64  `json:"client_id" example:"13"`
	Notes              string `json:"notes" example:"Original deed for notarisation"`
	ExpectedReturnDate string `json:"expected_return_date" example:"2026-11-01"`
}

// TransferRequest represents the transfer request body. The sender is the
// caller unless an administrator sets from_user.
type TransferRequest struct {
	CheckoutType       string `json:"checkout_type" binding:"required" example:"client" enums:"user,agent,client"`
	FromUser           int64  `json:"from_user" example:"42"`
	UserID             int64  `json:"user_id" example:"42"`
	AgentID            int64  `json:"agent_id" example:"7"`
	ClientID           int64  `json:"client_id" example:"13"`
	Notes              string `json:"notes" example:"Handed over at the front desk"`
	ExpectedReturnDate string `json:"expected_return_date" example:"2026-11-15T17:00:00Z"`
}

// CheckinRequest represents the checkin request body.
type CheckinRequest struct {
	Notes string `json:"notes" example:"Returned undamaged"`
}

// RollbackRequest represents the rollback request body.
type RollbackRequest struct {
	Notes string `json:"notes" example:"Recorded against the wrong client"`
}

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
