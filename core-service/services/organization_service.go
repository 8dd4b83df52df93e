package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/database"
	"bcm-backend/shared/database/models"
	"bcm-backend/shared/utils/auth"
	"bcm-backend/shared/utils/permission"
)

type OrganizationCreate struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type OrganizationUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// RoleSeeder creates the predefined roles of a new organization.
type RoleSeeder interface {
	SeedRoles(tx *gorm.DB, organizationID uuid.UUID, includeBootstrap bool) (map[string]models.Role, error)
}

type OrganizationService struct {
	db    *gorm.DB
	roles RoleSeeder
	log   logrus.FieldLogger
}

func NewOrganizationService(db *gorm.DB, roles RoleSeeder, log logrus.FieldLogger) *OrganizationService {
	return &OrganizationService{db: db, roles: roles, log: log}
}

var _ RoleSeeder = (*database.Seeder)(nil)

// Create adds an organization and its predefined roles. Names are unique across all organizations.
func (s *OrganizationService) Create(ctx context.Context, actor permission.Principal, in OrganizationCreate) (*models.Organization, error) {
	name := strings.TrimSpace(in.Name)
	errs := fieldErrors{}
	errs.check("name", auth.ValidateLength(name, "name", 1, 255))
	if err := errs.err(); err != nil {
		return nil, err
	}

	org := models.Organization{Name: name, Description: strings.TrimSpace(in.Description), IsActive: true}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Organization{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.Conflict("Organization with name '%s' already exists", name)
		}
		if err := tx.Create(&org).Error; err != nil {
			return translateWriteError(err, "Organization with name '"+name+"' already exists")
		}
		if s.roles == nil {
			return nil
		}
		_, err := s.roles.SeedRoles(tx, org.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"organization_id": org.ID, "actor_id": actor.UserID}).Info("organization created")
	return &org, nil
}

// Get returns the organization if it is the actor's own; any other id is reported as not found.
func (s *OrganizationService) Get(ctx context.Context, actor permission.Principal, id uuid.UUID) (*models.Organization, error) {
	return findVisible[models.Organization](ctx, s.db, actor, id, "Organization")
}

// List returns the organizations visible to the actor, which is only their own.
func (s *OrganizationService) List(ctx context.Context, actor permission.Principal) ([]models.Organization, error) {
	org, err := s.Get(ctx, actor, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	return []models.Organization{*org}, nil
}

func (s *OrganizationService) Update(ctx context.Context, actor permission.Principal, id uuid.UUID, in OrganizationUpdate) (*models.Organization, error) {
	name := trimPtr(in.Name)
	errs := fieldErrors{}
	if name != nil {
		errs.check("name", auth.ValidateLength(*name, "name", 1, 255))
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := findVisible[models.Organization](ctx, tx, actor, id, "Organization")
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if name != nil && *name != org.Name {
			var count int64
			if err := tx.Model(&models.Organization{}).Where("name = ? AND id <> ?", *name, org.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return apperrors.Conflict("Organization with name '%s' already exists", *name)
			}
			updates["name"] = *name
		}
		if in.Description != nil {
			updates["description"] = strings.TrimSpace(*in.Description)
		}
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
		}
		if len(updates) == 0 {
			return nil
		}
		return translateWriteError(tx.Model(org).Updates(updates).Error, "Organization name already exists")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}
