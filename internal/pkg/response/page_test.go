package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageResponseNormalizesNilItems(t *testing.T) {
	page := NewPageResponse[string](nil, 1, 20, 0)

	out, err := json.Marshal(page)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"items":[]`)
}

func TestNewPageResponseCarriesWindow(t *testing.T) {
	page := NewPageResponse([]string{"a", "b"}, 2, 10, 42)

	assert.Equal(t, []string{"a", "b"}, page.Items)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 42, page.Total)
}
