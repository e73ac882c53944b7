package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-engine/internal/domain"
	"github.com/lumenlearn/mastery-engine/internal/http/response"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
	"github.com/lumenlearn/mastery-engine/internal/progress"
)

type ProgressHandler struct {
	log      *logger.Logger
	progress progress.Service
}

func NewProgressHandler(log *logger.Logger, progressSvc progress.Service) *ProgressHandler {
	return &ProgressHandler{
		log:      log.With("handler", "ProgressHandler"),
		progress: progressSvc,
	}
}

// GET /api/paths/:threadID/progress?user_id=...
// Projects the caller's mastery onto a learning path.
func (h *ProgressHandler) Sync(c *gin.Context) {
	threadID := strings.TrimSpace(c.Param("threadID"))
	userID, err := uuid.Parse(strings.TrimSpace(c.Query("user_id")))
	if err != nil || userID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, string(domain.CodeValidation),
			domain.NewError(domain.CodeValidation, "ProgressHandler.Sync", "missing or invalid user_id", err))
		return
	}

	out, err := h.progress.Sync(c.Request.Context(), userID, threadID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, out)
}
