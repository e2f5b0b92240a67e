package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/riverkeep/river-ops/internal/dto"
	apierrors "github.com/riverkeep/river-ops/internal/errors"
	"github.com/riverkeep/river-ops/internal/logger"
	"github.com/riverkeep/river-ops/internal/services"
)

// PlannerHandler serves the calendar views. Malformed query values fall back
// to today rather than failing.
type PlannerHandler struct {
	planner *services.PlannerService
	log     logger.Logger
}

func NewPlannerHandler(planner *services.PlannerService, log logger.Logger) *PlannerHandler {
	return &PlannerHandler{planner: planner, log: log.Module("planner")}
}

// Monthly handles GET /api/planner/monthly?year=&month=
func (h *PlannerHandler) Monthly(c *gin.Context) {
	plan, err := h.planner.Monthly(c.Query("year"), c.Query("month"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMonthlyPlanDTO(plan))
}

// Weekly handles GET /api/planner/weekly?week=YYYY-MM-DD
func (h *PlannerHandler) Weekly(c *gin.Context) {
	plan, err := h.planner.Weekly(c.Query("week"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToWeeklyPlanDTO(plan))
}

// Daily handles GET /api/planner/daily?date=YYYY-MM-DD
func (h *PlannerHandler) Daily(c *gin.Context) {
	agenda, err := h.planner.Daily(c.Query("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToDailyAgendaDTO(agenda))
}

func (h *PlannerHandler) fail(c *gin.Context, err error) {
	h.log.WithContext(c.Request.Context()).Error("planner query failed", logger.Error(err))
	apierrors.InternalError(c, "Failed to load planner")
}
