package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/compliance"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// ComplianceHandler scores contractor snapshots. Contractor, credential, and
// job records live in the surrounding platform; the caller sends a snapshot
// and gets back the deterministic score for it.
type ComplianceHandler struct {
	scorer *compliance.Scorer
	clock  shared.Clock
}

// NewComplianceHandler creates a ComplianceHandler
func NewComplianceHandler(scorer *compliance.Scorer, clock shared.Clock) *ComplianceHandler {
	return &ComplianceHandler{scorer: scorer, clock: clock}
}

// RegisterRoutes registers the compliance endpoints
func (h *ComplianceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/compliance/scores", h.ComputeScore)
}

type credentialRequest struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name" binding:"required"`
	ExpiresAt time.Time `json:"expires_at" binding:"required"`
}

type scoreRequest struct {
	ContractorID   uuid.UUID           `json:"contractor_id" binding:"required"`
	Credentials    []credentialRequest `json:"credentials" binding:"dive"`
	JobsAssigned   int                 `json:"jobs_assigned" binding:"min=0"`
	JobsCompleted  int                 `json:"jobs_completed" binding:"min=0"`
	UsagesTotal    int                 `json:"usages_total" binding:"min=0"`
	UsagesReversed int                 `json:"usages_reversed" binding:"min=0"`
}

type scoreView struct {
	ContractorID    uuid.UUID        `json:"contractor_id"`
	Value           string           `json:"value"`
	Grade           compliance.Grade `json:"grade"`
	ComputedAt      time.Time        `json:"computed_at"`
	CredentialScore string           `json:"credential_score"`
	CompletionScore string           `json:"completion_score"`
	AccuracyScore   string           `json:"accuracy_score"`
}

// ComputeScore evaluates one contractor snapshot at the current instant
func (h *ComplianceHandler) ComputeScore(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", "Invalid compliance snapshot: "+err.Error())
		return
	}

	record := compliance.ContractorRecord{
		ContractorID:   req.ContractorID,
		Credentials:    make([]compliance.Credential, 0, len(req.Credentials)),
		JobsAssigned:   req.JobsAssigned,
		JobsCompleted:  req.JobsCompleted,
		UsagesTotal:    req.UsagesTotal,
		UsagesReversed: req.UsagesReversed,
	}
	for _, cred := range req.Credentials {
		record.Credentials = append(record.Credentials, compliance.Credential{
			ID:        cred.ID,
			Name:      cred.Name,
			ExpiresAt: cred.ExpiresAt,
		})
	}

	score := h.scorer.ComputeScore(record, h.clock.Now())
	respondOK(c, scoreView{
		ContractorID:    score.ContractorID,
		Value:           score.Value.String(),
		Grade:           score.Grade,
		ComputedAt:      score.ComputedAt,
		CredentialScore: score.CredentialScore.String(),
		CompletionScore: score.CompletionScore.String(),
		AccuracyScore:   score.AccuracyScore.String(),
	})
}
