package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-engine/internal/domain"
	"github.com/lumenlearn/mastery-engine/internal/http/response"
	"github.com/lumenlearn/mastery-engine/internal/mastery"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
)

type AssessmentHandler struct {
	log     *logger.Logger
	mastery mastery.Service
}

func NewAssessmentHandler(log *logger.Logger, masterySvc mastery.Service) *AssessmentHandler {
	return &AssessmentHandler{
		log:     log.With("handler", "AssessmentHandler"),
		mastery: masterySvc,
	}
}

type assessmentRequest struct {
	UserID      string `json:"user_id"`
	ItemID      string `json:"item_id"`
	ConceptID   string `json:"concept_id"`
	IsCorrect   bool   `json:"is_correct"`
	TimeSpentMs int    `json:"time_spent_ms"`
	Timestamp   string `json:"timestamp"`
}

// POST /api/assessments
// Records a graded answer and applies the BKT update for its concept.
func (h *AssessmentHandler) Submit(c *gin.Context) {
	var req assessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, string(domain.CodeValidation), err)
		return
	}

	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil || userID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, string(domain.CodeValidation),
			domain.NewError(domain.CodeValidation, "AssessmentHandler.Submit", "missing or invalid user_id", err))
		return
	}
	if strings.TrimSpace(req.ConceptID) == "" {
		response.RespondError(c, http.StatusBadRequest, string(domain.CodeValidation),
			domain.NewError(domain.CodeValidation, "AssessmentHandler.Submit", "missing concept_id", nil))
		return
	}

	occurredAt := time.Now().UTC()
	if strings.TrimSpace(req.Timestamp) != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, string(domain.CodeValidation),
				domain.NewError(domain.CodeValidation, "AssessmentHandler.Submit", "unparsable timestamp", err))
			return
		}
		occurredAt = parsed.UTC()
	}

	res, err := h.mastery.ApplyAssessment(c.Request.Context(), &domain.AssessmentResponse{
		UserID:      userID,
		ItemID:      strings.TrimSpace(req.ItemID),
		ConceptID:   strings.TrimSpace(req.ConceptID),
		IsCorrect:   req.IsCorrect,
		TimeSpentMs: req.TimeSpentMs,
		OccurredAt:  occurredAt,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}
