package client

import (
	"encoding/json"
)

// Meta is the normalized pagination block.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Page is a normalized paginated response: raw entries plus metadata.
type Page struct {
	Data []json.RawMessage
	Meta Meta
}

// dataKeys is the precedence order for locating the entry array in legacy
// envelopes. "data" wins over resource-specific keys older deployments used.
var dataKeys = []string{"data", "items", "results", "products", "pantries", "listItems"}

// wireMeta accepts both snake_case and camelCase pagination fields.
// Pointers distinguish absent from zero.
type wireMeta struct {
	Total       *int64 `json:"total"`
	Page        *int   `json:"page"`
	PerPage     *int   `json:"per_page"`
	PerPageC    *int   `json:"perPage"`
	TotalPages  *int   `json:"total_pages"`
	TotalPagesC *int   `json:"totalPages"`
}

// NormalizePage turns any historical list-endpoint response shape into a
// canonical Page. Accepted inputs:
//
//   - a bare JSON array
//   - {"data": [...], "pagination": {...}} with snake_case or camelCase meta
//   - {"items": [...]}, {"results": [...]}, {"products": [...]},
//     {"pantries": [...]}, {"listItems": [...]}
//
// Missing metadata is reconstructed: total falls back to the entry count,
// total_pages to max(1, ceil(total/per_page)). A well-formed JSON value in
// an unknown shape yields empty data with single-page metadata rather than
// an error; only malformed JSON fails.
func NormalizePage(raw json.RawMessage, page, perPage int) (Page, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 10
	}

	// Bare array.
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err == nil {
		return Page{Data: entries, Meta: synthesizeMeta(int64(len(entries)), page, perPage)}, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Page{}, err
	}

	data := []json.RawMessage{}
	for _, key := range dataKeys {
		candidate, ok := envelope[key]
		if !ok {
			continue
		}
		var parsed []json.RawMessage
		if err := json.Unmarshal(candidate, &parsed); err == nil {
			data = parsed
			break
		}
	}

	meta := synthesizeMeta(int64(len(data)), page, perPage)
	if rawMeta, ok := envelope["pagination"]; ok {
		var wire wireMeta
		if err := json.Unmarshal(rawMeta, &wire); err == nil {
			meta = mergeMeta(wire, int64(len(data)), page, perPage)
		}
	}

	return Page{Data: data, Meta: meta}, nil
}

// synthesizeMeta builds metadata for responses that carried none.
func synthesizeMeta(total int64, page, perPage int) Meta {
	return finalizeMeta(total, page, perPage, 0)
}

// mergeMeta fills the normalized block from whatever fields the server
// sent, falling back field by field.
func mergeMeta(wire wireMeta, fallbackTotal int64, page, perPage int) Meta {
	total := fallbackTotal
	if wire.Total != nil {
		total = *wire.Total
	}
	if wire.Page != nil && *wire.Page > 0 {
		page = *wire.Page
	}
	if wire.PerPage != nil && *wire.PerPage > 0 {
		perPage = *wire.PerPage
	} else if wire.PerPageC != nil && *wire.PerPageC > 0 {
		perPage = *wire.PerPageC
	}

	totalPages := 0
	if wire.TotalPages != nil && *wire.TotalPages > 0 {
		totalPages = *wire.TotalPages
	} else if wire.TotalPagesC != nil && *wire.TotalPagesC > 0 {
		totalPages = *wire.TotalPagesC
	}

	return finalizeMeta(total, page, perPage, totalPages)
}

func finalizeMeta(total int64, page, perPage, totalPages int) Meta {
	if totalPages <= 0 {
		totalPages = int((total + int64(perPage) - 1) / int64(perPage))
		if totalPages < 1 {
			totalPages = 1
		}
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
