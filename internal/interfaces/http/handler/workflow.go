package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/workflow"
)

// Request headers binding a command to its caller
const (
	HeaderTenantID       = "X-Tenant-ID"
	HeaderActorID        = "X-Actor-ID"
	HeaderIdempotencyKey = "X-Idempotency-Key"
)

// WorkflowHandler exposes the workflow actions as JSON endpoints. The body is
// the raw action payload; tenant, actor, and idempotency key travel as
// headers. No business logic lives here.
type WorkflowHandler struct {
	executor *workflow.Executor
}

// NewWorkflowHandler creates a WorkflowHandler
func NewWorkflowHandler(executor *workflow.Executor) *WorkflowHandler {
	return &WorkflowHandler{executor: executor}
}

// RegisterRoutes registers the action endpoint
func (h *WorkflowHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/actions/:action", h.Execute)
}

// Execute runs one named action exactly once per idempotency key
func (h *WorkflowHandler) Execute(c *gin.Context) {
	tenantID, err := uuid.Parse(c.GetHeader(HeaderTenantID))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_TENANT", "X-Tenant-ID header must be a UUID")
		return
	}
	actorID, err := uuid.Parse(c.GetHeader(HeaderActorID))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ACTOR", "X-Actor-ID header must be a UUID")
		return
	}
	idempotencyKey := c.GetHeader(HeaderIdempotencyKey)
	if idempotencyKey == "" {
		respondError(c, http.StatusBadRequest, "INVALID_IDEMPOTENCY_KEY", "X-Idempotency-Key header is required")
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "Failed to read request body")
		return
	}

	result, err := h.executor.Execute(c.Request.Context(), workflow.Command{
		TenantID:       tenantID,
		ActorID:        actorID,
		Action:         c.Param("action"),
		IdempotencyKey: idempotencyKey,
		Payload:        json.RawMessage(payload),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if !result.Success {
		respondError(c, statusForCode(result.Error.Code), result.Error.Code, result.Error.Message)
		return
	}
	if result.Replayed {
		respondOK(c, result)
		return
	}
	respondCreated(c, result)
}
