package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/riverkeep/river-ops/internal/calendar"
	apierrors "github.com/riverkeep/river-ops/internal/errors"
	"github.com/riverkeep/river-ops/internal/services"
)

// paramID parses a numeric path parameter, responding 400 when it is not one.
func paramID(c *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}

// queryID parses an optional numeric query parameter. A malformed value is
// treated as absent.
func queryID(c *gin.Context, name string) *uint64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// respondValidation writes field errors when err carries them.
func respondValidation(c *gin.Context, err error) bool {
	verr, ok := services.AsValidationError(err)
	if !ok {
		return false
	}
	apierrors.ValidationFailed(c, verr.Fields)
	return true
}

// parseDateField parses a YYYY-MM-DD body field. Empty is the zero time;
// anything else that does not parse is a field error.
func parseDateField(verr *services.ValidationError, field, raw string) (t time.Time) {
	if raw == "" {
		return t
	}
	d, ok := calendar.ParseDate(raw)
	if !ok {
		verr.Add(field, "Enter a valid date.")
		return t
	}
	return d
}
