package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePage_Shapes(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantLen   int
		wantTotal int64
	}{
		{
			name:      "bare_array",
			raw:       `[{"id":1},{"id":2}]`,
			wantLen:   2,
			wantTotal: 2,
		},
		{
			name:      "canonical_envelope",
			raw:       `{"data":[{"id":1}],"pagination":{"total":40,"page":1,"per_page":10,"total_pages":4}}`,
			wantLen:   1,
			wantTotal: 40,
		},
		{
			name:      "camel_case_meta",
			raw:       `{"data":[{"id":1}],"pagination":{"total":25,"page":2,"perPage":10,"totalPages":3}}`,
			wantLen:   1,
			wantTotal: 25,
		},
		{
			name:      "items_key",
			raw:       `{"items":[{"id":1},{"id":2},{"id":3}]}`,
			wantLen:   3,
			wantTotal: 3,
		},
		{
			name:      "results_key",
			raw:       `{"results":[{"id":1}]}`,
			wantLen:   1,
			wantTotal: 1,
		},
		{
			name:      "products_key",
			raw:       `{"products":[{"id":1},{"id":2}]}`,
			wantLen:   2,
			wantTotal: 2,
		},
		{
			name:      "pantries_key",
			raw:       `{"pantries":[{"id":7}]}`,
			wantLen:   1,
			wantTotal: 1,
		},
		{
			name:      "list_items_key",
			raw:       `{"listItems":[{"id":1},{"id":2}]}`,
			wantLen:   2,
			wantTotal: 2,
		},
		{
			name:      "unknown_shape",
			raw:       `{"something":"else"}`,
			wantLen:   0,
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := NormalizePage(json.RawMessage(tt.raw), 1, 10)
			require.NoError(t, err)
			assert.Len(t, page.Data, tt.wantLen)
			assert.Equal(t, tt.wantTotal, page.Meta.Total)
		})
	}
}

func TestNormalizePage_DataKeyPrecedence(t *testing.T) {
	raw := `{"data":[{"id":1}],"items":[{"id":1},{"id":2}]}`

	page, err := NormalizePage(json.RawMessage(raw), 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
}

func TestNormalizePage_TotalPages(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		perPage int
		want    int
	}{
		{"empty_is_one_page", `[]`, 10, 1},
		{"exact_division", `{"data":[],"pagination":{"total":30,"per_page":10}}`, 10, 3},
		{"remainder_rounds_up", `{"data":[],"pagination":{"total":31,"per_page":10}}`, 10, 4},
		{"server_value_wins", `{"data":[],"pagination":{"total":31,"per_page":10,"total_pages":9}}`, 10, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := NormalizePage(json.RawMessage(tt.raw), 1, tt.perPage)
			require.NoError(t, err)
			assert.Equal(t, tt.want, page.Meta.TotalPages)
		})
	}
}

func TestNormalizePage_HasNextHasPrev(t *testing.T) {
	raw := `{"data":[{"id":1}],"pagination":{"total":50,"page":3,"per_page":10}}`

	page, err := NormalizePage(json.RawMessage(raw), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Meta.Page)
	assert.Equal(t, 5, page.Meta.TotalPages)
	assert.True(t, page.Meta.HasNext)
	assert.True(t, page.Meta.HasPrev)
}

func TestNormalizePage_MalformedJSON(t *testing.T) {
	_, err := NormalizePage(json.RawMessage(`{not json`), 1, 10)
	assert.Error(t, err)
}
