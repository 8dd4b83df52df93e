package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bcm-backend/shared/database/models"
	"bcm-backend/shared/utils/auth"
	"bcm-backend/shared/utils/permission"
	"bcm-backend/shared/utils/query"
)

type BIACategoryCreate struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type BIACategoryUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

var biaCategoryListSpec = query.ListSpec{
	Filters:      map[string]string{"is_active": "is_active"},
	SortFields:   map[string]string{"name": "name", "created_at": "created_at"},
	SearchFields: []string{"name", "description"},
	DefaultSort:  "name ASC",
}

type BIACategoryService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewBIACategoryService(db *gorm.DB, log logrus.FieldLogger) *BIACategoryService {
	return &BIACategoryService{db: db, log: log}
}

func (s *BIACategoryService) Create(ctx context.Context, actor permission.Principal, in BIACategoryCreate) (*models.BIACategory, error) {
	name := strings.TrimSpace(in.Name)

	errs := fieldErrors{}
	errs.check("name", auth.ValidateLength(name, "name", 1, 255))
	if err := errs.err(); err != nil {
		return nil, err
	}

	category := models.BIACategory{
		OrganizationID: actor.OrganizationID,
		Name:           name,
		Description:    strings.TrimSpace(in.Description),
		IsActive:       in.IsActive == nil || *in.IsActive,
		CreatedByID:    actorRef(actor),
		UpdatedByID:    actorRef(actor),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkNameFree(tx, &models.BIACategory{}, actor.OrganizationID, "name", name, uuid.Nil, "BIA category"); err != nil {
			return err
		}
		return translateWriteError(tx.Create(&category).Error, "BIA category with name '"+name+"' already exists in this organization")
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"bia_category_id": category.ID, "actor_id": actor.UserID}).Info("bia category created")
	return &category, nil
}

func (s *BIACategoryService) Get(ctx context.Context, actor permission.Principal, id uuid.UUID) (*models.BIACategory, error) {
	return findVisible[models.BIACategory](ctx, s.db, actor, id, "BIA category")
}

func (s *BIACategoryService) List(ctx context.Context, actor permission.Principal, params query.FilterParams) (*Page[models.BIACategory], error) {
	return listScoped[models.BIACategory](ctx, s.db, actor, params, biaCategoryListSpec)
}

func (s *BIACategoryService) Update(ctx context.Context, actor permission.Principal, id uuid.UUID, in BIACategoryUpdate) (*models.BIACategory, error) {
	name := trimPtr(in.Name)

	errs := fieldErrors{}
	if name != nil {
		errs.check("name", auth.ValidateLength(*name, "name", 1, 255))
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := findVisible[models.BIACategory](ctx, tx, actor, id, "BIA category")
		if err != nil {
			return err
		}

		updates := map[string]interface{}{"updated_by_id": actor.UserID}
		if name != nil && *name != category.Name {
			if err := checkNameFree(tx, &models.BIACategory{}, category.OrganizationID, "name", *name, category.ID, "BIA category"); err != nil {
				return err
			}
			updates["name"] = *name
		}
		setString(updates, "description", in.Description)
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
		}
		return translateWriteError(tx.Model(category).Updates(updates).Error, "BIA category name already exists in this organization")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Delete deactivates the category. Its criteria stay untouched.
func (s *BIACategoryService) Delete(ctx context.Context, actor permission.Principal, id uuid.UUID) error {
	category, err := findVisible[models.BIACategory](ctx, s.db, actor, id, "BIA category")
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(category).Updates(map[string]interface{}{
		"is_active":     false,
		"updated_by_id": actor.UserID,
	}).Error
}
