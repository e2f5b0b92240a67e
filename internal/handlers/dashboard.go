package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/riverkeep/river-ops/internal/dto"
	apierrors "github.com/riverkeep/river-ops/internal/errors"
	"github.com/riverkeep/river-ops/internal/logger"
	"github.com/riverkeep/river-ops/internal/services"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
	urlFor    dto.URLFunc
	log       logger.Logger
}

func NewDashboardHandler(dashboard *services.DashboardService, urlFor dto.URLFunc, log logger.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, urlFor: urlFor, log: log.Module("dashboard")}
}

// GetDashboard returns site-wide totals, the stage distribution and recent visits.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	d, err := h.dashboard.Get()
	if err != nil {
		h.log.WithContext(c.Request.Context()).Error("failed to build dashboard", logger.Error(err))
		apierrors.InternalError(c, "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, dto.ToDashboardDTO(d, h.urlFor))
}
