package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumenlearn/mastery-engine/internal/domain"
	"github.com/lumenlearn/mastery-engine/internal/http/response"
	"github.com/lumenlearn/mastery-engine/internal/ingest"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
)

type InteractionHandler struct {
	log    *logger.Logger
	ingest ingest.Service
}

func NewInteractionHandler(log *logger.Logger, ingestSvc ingest.Service) *InteractionHandler {
	return &InteractionHandler{
		log:    log.With("handler", "InteractionHandler"),
		ingest: ingestSvc,
	}
}

// POST /api/interactions
// Records one learner interaction and, for strong signals, updates mastery.
func (h *InteractionHandler) Submit(c *gin.Context) {
	var in ingest.InteractionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, string(domain.CodeValidation), err)
		return
	}

	res, err := h.ingest.Ingest(c.Request.Context(), &in)
	if err != nil {
		h.log.Warn("interaction rejected", "error", err)
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}
