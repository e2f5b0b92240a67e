package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/riverkeep/river-ops/internal/dto"
	apierrors "github.com/riverkeep/river-ops/internal/errors"
	"github.com/riverkeep/river-ops/internal/logger"
	"github.com/riverkeep/river-ops/internal/models"
	"github.com/riverkeep/river-ops/internal/services"
	"github.com/riverkeep/river-ops/internal/utils"
)

type VisitHandler struct {
	visits *services.VisitService
	tasks  *services.TaskService
	urlFor dto.URLFunc
	log    logger.Logger
}

func NewVisitHandler(visits *services.VisitService, tasks *services.TaskService, urlFor dto.URLFunc, log logger.Logger) *VisitHandler {
	return &VisitHandler{visits: visits, tasks: tasks, urlFor: urlFor, log: log.Module("visits")}
}

type metricRequest struct {
	MetricType models.MetricType `json:"metric_type"`
	Label      string            `json:"label"`
	Value      int64             `json:"value"`
}

type visitRequest struct {
	TaskID    *uint64         `json:"task_id"`
	SectionID *uint64         `json:"section_id"`
	Date      string          `json:"date"`
	Notes     string          `json:"notes"`
	Metrics   []metricRequest `json:"metrics"`
}

func (r visitRequest) input(verr *services.ValidationError) services.VisitInput {
	input := services.VisitInput{
		TaskID:    r.TaskID,
		SectionID: r.SectionID,
		Date:      parseDateField(verr, "date", r.Date),
		Notes:     r.Notes,
		Metrics:   make([]services.MetricInput, len(r.Metrics)),
	}
	for i, m := range r.Metrics {
		input.Metrics[i] = services.MetricInput{MetricType: m.MetricType, Label: m.Label, Value: m.Value}
	}
	return input
}

// ListVisits returns a page of visits, newest first.
func (h *VisitHandler) ListVisits(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	visits, total, err := h.visits.ListVisits(params)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToVisitListResponse(visits, params, total, h.urlFor))
}

func (h *VisitHandler) GetVisit(c *gin.Context) {
	id, ok := paramID(c, "id", "visit")
	if !ok {
		return
	}

	visit, err := h.visits.GetVisit(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToVisitDTO(*visit, h.urlFor))
}

// NewVisit returns the visit form defaults, prefilled from ?task= when given.
func (h *VisitHandler) NewVisit(c *gin.Context) {
	prefill, err := h.tasks.PrefillVisit(queryID(c, "task"), queryID(c, "section"))
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			apierrors.NotFound(c, "Task not found")
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToVisitPrefillDTO(prefill))
}

// CreateVisit logs a visit from a JSON body, or from a multipart form when
// photos are attached. Multipart fields: task_id, section_id, date, notes,
// metrics (a JSON array), and repeated photo / photo_description pairs.
func (h *VisitHandler) CreateVisit(c *gin.Context) {
	verr := &services.ValidationError{}

	var input services.VisitInput
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err := c.MultipartForm()
		if err != nil {
			apierrors.BadRequest(c, "Invalid multipart form")
			return
		}

		var closers []io.Closer
		defer func() {
			for _, cl := range closers {
				cl.Close()
			}
		}()

		input, closers, err = visitFromForm(form.Value, form.File, verr)
		if err != nil {
			apierrors.BadRequest(c, "Failed to read uploaded photo")
			return
		}
	} else {
		var req visitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
		input = req.input(verr)
	}

	if err := verr.Err(); err != nil {
		h.respondError(c, err)
		return
	}

	visit, err := h.visits.CreateVisit(input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToVisitDTO(*visit, h.urlFor))
}

func visitFromForm(values map[string][]string, files map[string][]*multipart.FileHeader, verr *services.ValidationError) (services.VisitInput, []io.Closer, error) {
	first := func(key string) string {
		if v := values[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}
	optionalID := func(key string) *uint64 {
		raw := first(key)
		if raw == "" {
			return nil
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			verr.Add(key, "Enter a whole number.")
			return nil
		}
		return &id
	}

	req := visitRequest{
		TaskID:    optionalID("task_id"),
		SectionID: optionalID("section_id"),
		Date:      first("date"),
		Notes:     first("notes"),
	}
	if raw := first("metrics"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Metrics); err != nil {
			verr.Add("metrics", "Enter a valid JSON list of metrics.")
		}
	}
	input := req.input(verr)

	descriptions := values["photo_description"]
	var closers []io.Closer
	for i, fh := range files["photo"] {
		f, err := fh.Open()
		if err != nil {
			for _, cl := range closers {
				cl.Close()
			}
			return services.VisitInput{}, nil, err
		}
		closers = append(closers, f)

		description := ""
		if i < len(descriptions) {
			description = descriptions[i]
		}
		input.Photos = append(input.Photos, services.PhotoInput{
			Filename:    fh.Filename,
			Content:     f,
			Description: description,
		})
	}
	return input, closers, nil
}

func (h *VisitHandler) respondError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, services.ErrVisitNotFound):
		apierrors.NotFound(c, "Visit not found")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	default:
		h.log.WithContext(c.Request.Context()).Error("visit request failed", logger.Error(err))
		apierrors.InternalError(c, "Internal server error")
	}
}
