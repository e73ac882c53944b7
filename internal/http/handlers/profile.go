package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumenlearn/mastery-engine/internal/domain"
	"github.com/lumenlearn/mastery-engine/internal/http/response"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
	"github.com/lumenlearn/mastery-engine/internal/profile"
)

type ProfileHandler struct {
	log     *logger.Logger
	profile profile.Service
}

func NewProfileHandler(log *logger.Logger, profileSvc profile.Service) *ProfileHandler {
	return &ProfileHandler{
		log:     log.With("handler", "ProfileHandler"),
		profile: profileSvc,
	}
}

type rebuildRequest struct {
	UserID     string `json:"user_id"`
	WindowDays int    `json:"window_days"`
	AutoEvolve *bool  `json:"auto_evolve"`
}

// POST /api/profile/rebuild
// Recomputes the preference profile over the trailing window.
func (h *ProfileHandler) Rebuild(c *gin.Context) {
	var req rebuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, string(domain.CodeValidation), err)
		return
	}
	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil || userID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, string(domain.CodeValidation),
			domain.NewError(domain.CodeValidation, "ProfileHandler.Rebuild", "missing or invalid user_id", err))
		return
	}

	autoEvolve := true
	if req.AutoEvolve != nil {
		autoEvolve = *req.AutoEvolve
	}

	row, err := h.profile.Build(c.Request.Context(), userID, req.WindowDays, autoEvolve)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// GET /api/profile?user_id=...
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, err := uuid.Parse(strings.TrimSpace(c.Query("user_id")))
	if err != nil || userID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, string(domain.CodeValidation),
			domain.NewError(domain.CodeValidation, "ProfileHandler.Get", "missing or invalid user_id", err))
		return
	}

	row, err := h.profile.Get(c.Request.Context(), userID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if row == nil {
		response.RespondError(c, http.StatusNotFound, string(domain.CodeNotFound),
			domain.NewError(domain.CodeNotFound, "ProfileHandler.Get", "no profile for user", nil))
		return
	}
	response.RespondOK(c, row)
}
