package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulseboard/pulseboard-backend/internal/middleware"
	"github.com/pulseboard/pulseboard-backend/internal/response"
	"github.com/pulseboard/pulseboard-backend/internal/service"
)

// DashboardHandler serves the chart payloads for the dashboard page.
type DashboardHandler struct {
	dashboardService  *service.DashboardService
	permissionService *service.PermissionService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService, permissionService *service.PermissionService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService:  dashboardService,
		permissionService: permissionService,
	}
}

// GetDashboard returns chart data for the widgets the caller may view.
// Ungranted widgets are omitted rather than erroring, so a partially
// granted role still renders its dashboard.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	claims := middleware.GetClaims(c)

	rec, err := h.permissionService.GetForClaims(c.Request.Context(), claims)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	data, err := h.dashboardService.Build(c.Request.Context(), rec)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, data)
}
