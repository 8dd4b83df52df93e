package query

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParseQueryParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/roles?page=2&limit=500&search=%20adm%20&filters[is_active]=true&filters[name]=&sort[field]=name&sort[order]=ASC", nil)

	params := ParseQueryParams(c)

	assert.Equal(t, 2, params.Page)
	assert.Equal(t, 100, params.Limit)
	assert.Equal(t, "adm", params.Search)
	assert.Equal(t, map[string]string{"is_active": "true"}, params.Filters)
	assert.Equal(t, SortParams{Field: "name", Order: "asc"}, params.Sort)
}

func TestParseQueryParamsDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/roles?page=-3&sort[order]=sideways", nil)

	params := ParseQueryParams(c)

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 10, params.Limit)
	assert.Equal(t, SortParams{Field: "created_at", Order: "desc"}, params.Sort)
}

func TestBuildPaginationResponse(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		limit int
		total int64
		want  PaginationResponse
	}{
		{"empty", 1, 10, 0, PaginationResponse{Page: 1, Limit: 10}},
		{"first of many", 1, 10, 25, PaginationResponse{Page: 1, Limit: 10, Total: 25, TotalPages: 3, HasNext: true}},
		{"last page", 3, 10, 25, PaginationResponse{Page: 3, Limit: 10, Total: 25, TotalPages: 3, HasPrev: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildPaginationResponse(tt.page, tt.limit, tt.total))
		})
	}
}
