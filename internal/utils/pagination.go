package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/riverkeep/river-ops/internal/constants"
)

// PaginationParams is a 1-based page request with its row offset.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse is the page metadata returned next to a list.
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// GetPaginationParams reads ?page= and ?limit=. Unparseable or non-positive
// values fall back to the defaults; limits above the maximum are capped.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page := queryInt(c, "page", constants.MinPageSize)
	limit := queryInt(c, "limit", constants.DefaultPageSize)

	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	switch {
	case limit < constants.MinPageSize:
		limit = constants.DefaultPageSize
	case limit > constants.MaxPageSize:
		limit = constants.MaxPageSize
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// NewPaginationResponse describes the page params selected out of total rows.
func NewPaginationResponse(params PaginationParams, total int64) PaginationResponse {
	pages := 0
	if params.Limit > 0 {
		pages = int((total + int64(params.Limit) - 1) / int64(params.Limit))
	}
	return PaginationResponse{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: pages,
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return v
}
