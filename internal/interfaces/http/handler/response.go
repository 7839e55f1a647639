package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// SuccessResponse is the envelope for successful responses
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// ErrorBody carries the machine-readable failure
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope for failed responses
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, SuccessResponse{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Success: false, Error: ErrorBody{Code: code, Message: message}})
}

// respondDomainError maps the error taxonomy to HTTP status codes
func respondDomainError(c *gin.Context, err error) {
	if shared.IsTransient(err) {
		respondError(c, http.StatusServiceUnavailable, "TRANSIENT_STORAGE", "Storage temporarily unavailable, retry with the same idempotency key")
		return
	}
	de := shared.AsDomainError(err)
	if de == nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL", "Internal server error")
		return
	}
	respondError(c, statusForCode(de.Code), de.Code, de.Message)
}

func statusForCode(code string) int {
	switch code {
	case "NOT_FOUND":
		return http.StatusNotFound
	case "UNAUTHORIZED":
		return http.StatusForbidden
	case "ALREADY_EXISTS", "IDEMPOTENCY_CONFLICT", "IDEMPOTENCY_IN_PROGRESS", "INVALID_STATE_TRANSITION":
		return http.StatusConflict
	case "INSUFFICIENT_STOCK", "OVER_RECEIPT", "INVALID_ADJUSTMENT":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
