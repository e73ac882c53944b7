package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-engine/internal/domain"
	"github.com/lumenlearn/mastery-engine/internal/http/response"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
	"github.com/lumenlearn/mastery-engine/internal/scoring"
)

type ScoringHandler struct {
	log     *logger.Logger
	scoring scoring.Service
}

func NewScoringHandler(log *logger.Logger, scoringSvc scoring.Service) *ScoringHandler {
	return &ScoringHandler{
		log:     log.With("handler", "ScoringHandler"),
		scoring: scoringSvc,
	}
}

type scoreRequest struct {
	UserID     string                    `json:"user_id"`
	Candidates []domain.ContentCandidate `json:"candidates"`
}

type scoreResponse struct {
	Candidates []domain.ScoredCandidate `json:"candidates"`
}

// POST /api/score
// Re-ranks search candidates with the caller's personalization boost.
func (h *ScoringHandler) Score(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, string(domain.CodeValidation), err)
		return
	}
	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil || userID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, string(domain.CodeValidation),
			domain.NewError(domain.CodeValidation, "ScoringHandler.Score", "missing or invalid user_id", err))
		return
	}

	scored, err := h.scoring.Score(c.Request.Context(), userID, req.Candidates)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, scoreResponse{Candidates: scored})
}
