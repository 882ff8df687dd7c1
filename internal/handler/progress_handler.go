package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/docentia/simulacro-backend/internal/middleware"
	"github.com/docentia/simulacro-backend/internal/model"
	"github.com/docentia/simulacro-backend/internal/response"
	"github.com/docentia/simulacro-backend/internal/service"
)

// ProgressHandler serves the student progress screen and the study advisor.
type ProgressHandler struct {
	progressService *service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// GetProgress godoc
// GET /api/v1/progress?module=...&limit=...
// Returns mastery profile, XP, result history, and earned badges.
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var module *model.Module
	if raw := c.Query("module"); raw != "" {
		m := model.Module(raw)
		if !m.Valid() {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		module = &m
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	progress, err := h.progressService.GetProgress(c.Request.Context(), claims.UserID, module, limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, progress)
}

// GetAdvice godoc
// GET /api/v1/progress/advice
// Returns the study recommendation derived from the mastery profile.
func (h *ProgressHandler) GetAdvice(c *gin.Context) {
	claims := middleware.GetClaims(c)

	rec, err := h.progressService.GetRecommendation(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, rec)
}
