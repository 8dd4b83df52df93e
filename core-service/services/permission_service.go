package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/database/models"
	"bcm-backend/shared/utils/query"
)

var permissionListSpec = query.ListSpec{
	SortFields: map[string]string{
		"name":       "name",
		"created_at": "created_at",
	},
	SearchFields: []string{"name", "description"},
	DefaultSort:  "name ASC",
}

// PermissionService exposes the global permission registry. It is read-only.
type PermissionService struct {
	db *gorm.DB
}

func NewPermissionService(db *gorm.DB) *PermissionService {
	return &PermissionService{db: db}
}

func (s *PermissionService) List(ctx context.Context, params query.FilterParams) (*Page[models.Permission], error) {
	items := make([]models.Permission, 0)
	pagination, err := query.Paginate(s.db.WithContext(ctx).Model(&models.Permission{}), params, permissionListSpec, &items)
	if err != nil {
		return nil, err
	}
	return &Page[models.Permission]{Items: items, Pagination: pagination}, nil
}

func (s *PermissionService) Get(ctx context.Context, id uuid.UUID) (*models.Permission, error) {
	var p models.Permission
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Permission")
		}
		return nil, err
	}
	return &p, nil
}
