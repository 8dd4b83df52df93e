package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FilterParams represents filtering parameters
type FilterParams struct {
	Filters map[string]string `json:"filters"`
	Sort    SortParams        `json:"sort"`
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
	Search  string            `json:"search"`
}

// SortParams represents sorting parameters
type SortParams struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

// PaginationResponse represents pagination metadata
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// ListSpec declares which filters, sort fields and search columns a list endpoint accepts.
type ListSpec struct {
	Filters      map[string]string
	SortFields   map[string]string
	SearchFields []string
	DefaultSort  string
	Preloads     []string
}

// DefaultParams returns the first page with default sorting.
func DefaultParams() FilterParams {
	return FilterParams{
		Filters: map[string]string{},
		Sort:    SortParams{Field: "created_at", Order: "desc"},
		Page:    1,
		Limit:   10,
	}
}

// ParseQueryParams extracts standardized query parameters from Gin context
func ParseQueryParams(c *gin.Context) FilterParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	// filters[field_name]=value
	filters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if strings.HasPrefix(key, "filters[") && strings.HasSuffix(key, "]") {
			fieldName := key[8 : len(key)-1]
			if len(values) > 0 && values[0] != "" {
				filters[fieldName] = values[0]
			}
		}
	}

	// sort[field]=field_name&sort[order]=asc|desc
	sortField := c.Query("sort[field]")
	sortOrder := strings.ToLower(c.Query("sort[order]"))

	if sortField == "" {
		sortField = "created_at"
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return FilterParams{
		Filters: filters,
		Sort: SortParams{
			Field: sortField,
			Order: sortOrder,
		},
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(c.Query("search")),
	}
}

// ScopeOrganization restricts a query to rows owned by one organization
func ScopeOrganization(query *gorm.DB, organizationID uuid.UUID) *gorm.DB {
	return query.Where("organization_id = ?", organizationID)
}

// ApplyFilters applies filters to a GORM query
func ApplyFilters(query *gorm.DB, filters map[string]string, allowedFields map[string]string) *gorm.DB {
	for field, value := range filters {
		dbField, allowed := allowedFields[field]
		if !allowed || value == "" {
			continue
		}
		// Boolean columns are compared as booleans so the filter works on every dialect.
		if b, err := strconv.ParseBool(value); err == nil && (value == "true" || value == "false") {
			query = query.Where(fmt.Sprintf("%s = ?", dbField), b)
			continue
		}
		query = query.Where(fmt.Sprintf("%s = ?", dbField), value)
	}
	return query
}

// ApplySearch applies a case-insensitive substring search to the given fields
func ApplySearch(query *gorm.DB, search string, searchFields []string) *gorm.DB {
	if search == "" || len(searchFields) == 0 {
		return query
	}

	conditions := make([]string, len(searchFields))
	args := make([]interface{}, len(searchFields))
	pattern := "%" + strings.ToLower(search) + "%"

	for i, field := range searchFields {
		conditions[i] = fmt.Sprintf("LOWER(%s) LIKE ?", field)
		args[i] = pattern
	}

	return query.Where("("+strings.Join(conditions, " OR ")+")", args...)
}

// ApplySort applies sorting to a GORM query
func ApplySort(query *gorm.DB, sort SortParams, allowedSortFields map[string]string, defaultSort string) *gorm.DB {
	if dbField, allowed := allowedSortFields[sort.Field]; allowed {
		return query.Order(fmt.Sprintf("%s %s", dbField, strings.ToUpper(sort.Order)))
	}
	if defaultSort == "" {
		defaultSort = "created_at DESC"
	}
	return query.Order(defaultSort)
}

// ApplyPagination applies pagination to a GORM query
func ApplyPagination(query *gorm.DB, page, limit int) *gorm.DB {
	offset := (page - 1) * limit
	return query.Offset(offset).Limit(limit)
}

// BuildPaginationResponse creates pagination metadata
func BuildPaginationResponse(page, limit int, total int64) PaginationResponse {
	if limit < 1 {
		limit = 1
	}
	totalPages := (total + int64(limit) - 1) / int64(limit)

	return PaginationResponse{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    int64(page) < totalPages,
		HasPrev:    page > 1,
	}
}

// Paginate applies filters, search, sorting and pagination to base and loads one page into out
func Paginate[T any](base *gorm.DB, params FilterParams, spec ListSpec, out *[]T) (PaginationResponse, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 10
	}

	filtered := ApplySearch(ApplyFilters(base, params.Filters, spec.Filters), params.Search, spec.SearchFields)

	var total int64
	if err := filtered.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return PaginationResponse{}, err
	}

	paged := ApplyPagination(ApplySort(filtered, params.Sort, spec.SortFields, spec.DefaultSort), params.Page, params.Limit)
	for _, preload := range spec.Preloads {
		paged = paged.Preload(preload)
	}
	if err := paged.Find(out).Error; err != nil {
		return PaginationResponse{}, err
	}

	return BuildPaginationResponse(params.Page, params.Limit, total), nil
}
