// Package pagination defines the canonical wire envelope returned by every
// list endpoint. Historically the API answered with several shapes (bare
// arrays, {items}, {results}); all server responses now go through this one
// shape, and the client SDK keeps a compatibility normalizer for older
// deployments.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Meta describes the position of a page within the full result set.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Page is the canonical {data, pagination} envelope.
type Page struct {
	Data       interface{} `json:"data"`
	Pagination Meta        `json:"pagination"`
}

// NewMeta computes pagination metadata. total_pages is ceil(total/perPage)
// floored at 1, so an empty result set still reports a single page.
func NewMeta(total int64, page, perPage int) Meta {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = DefaultPage
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}

	return Meta{
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// NewPage wraps data in the canonical envelope.
func NewPage(data interface{}, total int64, page, perPage int) Page {
	return Page{
		Data:       data,
		Pagination: NewMeta(total, page, perPage),
	}
}

// FromQuery extracts page/per_page from the request query, clamping
// per_page to MaxPerPage.
func FromQuery(c *gin.Context) (page, perPage int) {
	page = DefaultPage
	perPage = DefaultPerPage

	if v, err := atoiQuery(c, "page"); err == nil && v > 0 {
		page = v
	}
	if v, err := atoiQuery(c, "per_page"); err == nil && v > 0 {
		perPage = v
		if perPage > MaxPerPage {
			perPage = MaxPerPage
		}
	}
	return page, perPage
}

func atoiQuery(c *gin.Context, key string) (int, error) {
	return strconv.Atoi(c.Query(key))
}
