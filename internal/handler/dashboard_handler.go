package handler

import (
	"net/http"

	"clinic-records-backend/internal/service"
	"clinic-records-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Get returns the aggregate dashboard snapshot
func (h *DashboardHandler) Get(c *gin.Context) {
	data, err := h.dashboardService.GetDashboard()
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to load dashboard data: "+err.Error())
		return
	}
	utils.SuccessResponse(c, data)
}
