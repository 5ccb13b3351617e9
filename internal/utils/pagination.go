// internal/utils/pagination.go
package utils

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultPageLimit = 24
	MaxPageLimit     = 100
)

type PaginationParams struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	// Ordering is a public field name, prefixed with "-" for descending.
	Ordering string `json:"ordering"`
	Search   string `json:"search"`
}

type PaginationResult struct {
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
	Data       interface{} `json:"data"`
}

func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageLimit)))

	// Validate and set defaults
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxPageLimit {
		limit = DefaultPageLimit
	}

	return PaginationParams{
		Page:     page,
		Limit:    limit,
		Ordering: strings.TrimSpace(c.Query("ordering")),
		Search:   strings.TrimSpace(c.Query("q")),
	}
}

func ApplyPagination(db *gorm.DB, params PaginationParams) *gorm.DB {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = DefaultPageLimit
	}
	offset := (params.Page - 1) * params.Limit
	return db.Offset(offset).Limit(params.Limit)
}

// ApplyOrdering maps a public ordering onto a column through columns.
// Unknown names fall back to fallback, which uses the same syntax.
func ApplyOrdering(db *gorm.DB, ordering string, columns map[string]string, fallback string) *gorm.DB {
	column, desc, ok := resolveOrdering(ordering, columns)
	if !ok {
		column, desc, ok = resolveOrdering(fallback, columns)
		if !ok {
			return db
		}
	}

	direction := "ASC"
	if desc {
		direction = "DESC"
	}
	return db.Order(column + " " + direction)
}

func resolveOrdering(ordering string, columns map[string]string) (column string, desc bool, ok bool) {
	name := strings.TrimSpace(ordering)
	if strings.HasPrefix(name, "-") {
		desc = true
		name = name[1:]
	}
	column, ok = columns[name]
	return column, desc, ok
}

func CreatePaginationResult(data interface{}, total int64, params PaginationParams) PaginationResult {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(params.Limit)))
	}

	return PaginationResult{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
		Data:       data,
	}
}

func SetPaginationHeaders(c *gin.Context, result PaginationResult) {
	c.Header("X-Total-Count", strconv.FormatInt(result.Total, 10))
	c.Header("X-Page", strconv.Itoa(result.Page))
	c.Header("X-Per-Page", strconv.Itoa(result.Limit))
	c.Header("X-Total-Pages", strconv.Itoa(result.TotalPages))
}
