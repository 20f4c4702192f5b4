package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/lezzetli-admin/services"
)

type DashboardController struct {
	dashboardService services.DashboardService
}

func NewDashboardController(dashboardService services.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// Dashboard handles GET /dashboard.
func (dc *DashboardController) Dashboard(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	summary, err := dc.dashboardService.Summary(c.Request.Context(), id)
	if err != nil {
		redirectError(c, "/", "Unable to load dashboard data", err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"counts":        summary.Counts,
		"recentCouples": summary.RecentCouples,
		"recentGuests":  summary.RecentGuests,
		"recentEvents":  summary.RecentEvents,
		"admin":         id,
	})
}
