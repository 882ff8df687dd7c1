package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docentia/simulacro-backend/internal/response"
	"github.com/docentia/simulacro-backend/internal/service"
)

// DashboardHandler serves the admin dashboard.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetSummary godoc
// GET /api/v1/admin/dashboard
// Returns headline counters, recent results, and per-module averages.
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.dashboardService.GetSummary(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, summary)
}
