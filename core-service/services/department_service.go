package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/database/models"
	"bcm-backend/shared/utils/auth"
	"bcm-backend/shared/utils/permission"
	"bcm-backend/shared/utils/query"
)

type DepartmentCreate struct {
	Name             string      `json:"name" binding:"required"`
	Description      string      `json:"description"`
	DepartmentHeadID *uuid.UUID  `json:"department_head_id"`
	LocationIDs      []uuid.UUID `json:"location_ids"`
	IsActive         *bool       `json:"is_active"`
}

type DepartmentUpdate struct {
	Name             *string      `json:"name"`
	Description      *string      `json:"description"`
	DepartmentHeadID *uuid.UUID   `json:"department_head_id"`
	LocationIDs      *[]uuid.UUID `json:"location_ids"`
	IsActive         *bool        `json:"is_active"`
}

var departmentListSpec = query.ListSpec{
	Filters: map[string]string{
		"is_active":          "is_active",
		"department_head_id": "department_head_id",
	},
	SortFields: map[string]string{
		"name":       "name",
		"created_at": "created_at",
		"updated_at": "updated_at",
	},
	SearchFields: []string{"name", "description"},
	DefaultSort:  "name ASC",
	Preloads:     []string{"Locations"},
}

type DepartmentService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewDepartmentService(db *gorm.DB, log logrus.FieldLogger) *DepartmentService {
	return &DepartmentService{db: db, log: log}
}

func validateDepartment(errs fieldErrors, name, description *string) {
	if name != nil {
		errs.check("name", auth.ValidateLength(*name, "name", 1, 255))
	}
	if description != nil {
		errs.check("description", auth.ValidateLength(*description, "description", 0, 1000))
	}
}

func (s *DepartmentService) Create(ctx context.Context, actor permission.Principal, in DepartmentCreate) (*models.Department, error) {
	name, description := strings.TrimSpace(in.Name), strings.TrimSpace(in.Description)

	errs := fieldErrors{}
	validateDepartment(errs, &name, &description)
	if err := errs.err(); err != nil {
		return nil, err
	}

	dept := models.Department{
		OrganizationID:   actor.OrganizationID,
		Name:             name,
		Description:      description,
		DepartmentHeadID: in.DepartmentHeadID,
		IsActive:         in.IsActive == nil || *in.IsActive,
		CreatedByID:      actorRef(actor),
		UpdatedByID:      actorRef(actor),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkNameFree(tx, &models.Department{}, actor.OrganizationID, "name", name, uuid.Nil, "Department"); err != nil {
			return err
		}
		if err := checkReference(tx, &models.User{}, in.DepartmentHeadID, actor.OrganizationID, "department head id"); err != nil {
			return err
		}
		locations, err := resolveLocations(tx, actor.OrganizationID, in.LocationIDs)
		if err != nil {
			return err
		}
		if err := tx.Omit("Locations").Create(&dept).Error; err != nil {
			return translateWriteError(err, "Department with name '"+name+"' already exists in this organization")
		}
		if len(locations) == 0 {
			return nil
		}
		return tx.Model(&dept).Association("Locations").Append(locations)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"department_id": dept.ID, "actor_id": actor.UserID}).Info("department created")
	return s.Get(ctx, actor, dept.ID)
}

func (s *DepartmentService) Get(ctx context.Context, actor permission.Principal, id uuid.UUID) (*models.Department, error) {
	return findVisible[models.Department](ctx, s.db, actor, id, "Department", "Locations")
}

func (s *DepartmentService) List(ctx context.Context, actor permission.Principal, params query.FilterParams) (*Page[models.Department], error) {
	return listScoped[models.Department](ctx, s.db, actor, params, departmentListSpec)
}

func (s *DepartmentService) Update(ctx context.Context, actor permission.Principal, id uuid.UUID, in DepartmentUpdate) (*models.Department, error) {
	name, description := trimPtr(in.Name), trimPtr(in.Description)

	errs := fieldErrors{}
	validateDepartment(errs, name, description)
	if err := errs.err(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dept, err := findVisible[models.Department](ctx, tx, actor, id, "Department")
		if err != nil {
			return err
		}

		updates := map[string]interface{}{"updated_by_id": actor.UserID}
		if name != nil && *name != dept.Name {
			if err := checkNameFree(tx, &models.Department{}, dept.OrganizationID, "name", *name, dept.ID, "Department"); err != nil {
				return err
			}
			updates["name"] = *name
		}
		if description != nil {
			updates["description"] = *description
		}
		if in.DepartmentHeadID != nil {
			if err := checkReference(tx, &models.User{}, in.DepartmentHeadID, dept.OrganizationID, "department head id"); err != nil {
				return err
			}
			updates["department_head_id"] = *in.DepartmentHeadID
		}
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
		}
		if err := tx.Model(dept).Updates(updates).Error; err != nil {
			return translateWriteError(err, "Department name already exists in this organization")
		}

		if in.LocationIDs == nil {
			return nil
		}
		locations, err := resolveLocations(tx, dept.OrganizationID, *in.LocationIDs)
		if err != nil {
			return err
		}
		return tx.Model(dept).Association("Locations").Replace(locations)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Delete deactivates the department.
func (s *DepartmentService) Delete(ctx context.Context, actor permission.Principal, id uuid.UUID) error {
	dept, err := findVisible[models.Department](ctx, s.db, actor, id, "Department")
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Model(dept).Updates(map[string]interface{}{
		"is_active":     false,
		"updated_by_id": actor.UserID,
	}).Error
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"department_id": id, "actor_id": actor.UserID}).Info("department deactivated")
	return nil
}

func resolveLocations(tx *gorm.DB, organizationID uuid.UUID, ids []uuid.UUID) ([]models.Location, error) {
	missing, err := missingIDs(tx, &models.Location{}, ids, &organizationID)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, apperrors.InvalidReferences("location ids", missing)
	}
	unique := uniqueIDs(ids)
	if len(unique) == 0 {
		return []models.Location{}, nil
	}
	var locations []models.Location
	if err := tx.Where("id IN ?", unique).Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// checkNameFree fails with a ConflictError when value is already used in the organization.
func checkNameFree(tx *gorm.DB, model any, organizationID uuid.UUID, column, value string, excludeID uuid.UUID, resource string) error {
	taken, err := nameTaken(tx, model, organizationID, column, value, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.Conflict("%s with name '%s' already exists in this organization", resource, value)
	}
	return nil
}
