package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/database/models"
	"bcm-backend/shared/utils/auth"
	"bcm-backend/shared/utils/permission"
	"bcm-backend/shared/utils/query"
)

// RoleCreate is the input of RoleService.Create.
type RoleCreate struct {
	Name           string      `json:"name" binding:"required"`
	Description    string      `json:"description"`
	OrganizationID *uuid.UUID  `json:"organization_id"`
	PermissionIDs  []uuid.UUID `json:"permission_ids"`
}

// RoleUpdate is the input of RoleService.Update. A nil PermissionIDs leaves the
// permission set untouched; a non-nil empty slice clears it.
type RoleUpdate struct {
	Name          *string      `json:"name"`
	Description   *string      `json:"description"`
	PermissionIDs *[]uuid.UUID `json:"permission_ids"`
}

// PermissionIDsInput carries a list of permission ids for the role permission endpoints.
// An absent permission_ids leaves the role untouched.
type PermissionIDsInput struct {
	PermissionIDs *[]uuid.UUID `json:"permission_ids"`
}

var roleListSpec = query.ListSpec{
	Filters: map[string]string{
		"is_system_role": "is_system_role",
	},
	SortFields: map[string]string{
		"name":       "name",
		"created_at": "created_at",
		"updated_at": "updated_at",
	},
	SearchFields: []string{"name", "description"},
	DefaultSort:  "name ASC",
	Preloads:     []string{"Permissions"},
}

type RoleService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewRoleService(db *gorm.DB, log logrus.FieldLogger) *RoleService {
	return &RoleService{db: db, log: log}
}

func validateRoleName(errs fieldErrors, name string) {
	errs.check("name", auth.ValidateLength(name, "name", 1, 100))
}

func validateRoleDescription(errs fieldErrors, description string) {
	errs.check("description", auth.ValidateLength(description, "description", 0, 255))
}

// Create adds a role to the actor's organization with the given permissions.
// It fails with ConflictError on a duplicate name in the organization and with a
// ValidationError naming every permission id that does not exist.
func (s *RoleService) Create(ctx context.Context, actor permission.Principal, in RoleCreate) (*models.Role, error) {
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)

	errs := fieldErrors{}
	validateRoleName(errs, name)
	validateRoleDescription(errs, description)
	if err := errs.err(); err != nil {
		return nil, err
	}

	organizationID := actor.OrganizationID
	if in.OrganizationID != nil {
		if err := permission.AssertSameOrganization(actor, *in.OrganizationID); err != nil {
			return nil, apperrors.MaskTenancy(err, "Organization")
		}
	}

	role := models.Role{
		Name:           name,
		Description:    description,
		OrganizationID: organizationID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, &models.Role{}, organizationID, "name", name, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.Conflict("Role with name '%s' already exists in this organization", name)
		}

		permissionIDs, err := resolvePermissionIDs(tx, in.PermissionIDs)
		if err != nil {
			return err
		}

		if err := tx.Create(&role).Error; err != nil {
			return translateWriteError(err, "Role with name '"+name+"' already exists in this organization")
		}
		return grantPermissions(tx, role.ID, permissionIDs)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"role_id":         role.ID,
		"organization_id": organizationID,
		"actor_id":        actor.UserID,
	}).Info("role created")

	return s.Get(ctx, actor, role.ID)
}

// Get returns a role with its permissions.
func (s *RoleService) Get(ctx context.Context, actor permission.Principal, id uuid.UUID) (*models.Role, error) {
	return findVisible[models.Role](ctx, s.db, actor, id, "Role", "Permissions")
}

// List returns the roles of the actor's organization.
func (s *RoleService) List(ctx context.Context, actor permission.Principal, params query.FilterParams) (*Page[models.Role], error) {
	return listScoped[models.Role](ctx, s.db, actor, params, roleListSpec)
}

// Update changes name, description and, when supplied, the full permission set.
// Predefined system roles keep their names since route gating refers to them.
func (s *RoleService) Update(ctx context.Context, actor permission.Principal, id uuid.UUID, in RoleUpdate) (*models.Role, error) {
	name := trimPtr(in.Name)
	description := trimPtr(in.Description)

	errs := fieldErrors{}
	if name != nil {
		validateRoleName(errs, *name)
	}
	if description != nil {
		validateRoleDescription(errs, *description)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := findVisible[models.Role](ctx, tx, actor, id, "Role")
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if name != nil && *name != role.Name {
			if role.IsSystemRole {
				return apperrors.Conflict("System role '%s' cannot be renamed", role.Name)
			}
			taken, err := nameTaken(tx, &models.Role{}, role.OrganizationID, "name", *name, role.ID)
			if err != nil {
				return err
			}
			if taken {
				return apperrors.Conflict("Role with name '%s' already exists in this organization", *name)
			}
			updates["name"] = *name
		}
		if description != nil {
			updates["description"] = *description
		}
		if len(updates) > 0 {
			if err := tx.Model(role).Updates(updates).Error; err != nil {
				return translateWriteError(err, "Role name already exists in this organization")
			}
		}

		if in.PermissionIDs != nil {
			return replacePermissions(tx, role.ID, *in.PermissionIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// ReplacePermissions sets the role's permissions to exactly permissionIDs. A nil
// pointer leaves them untouched; an empty list clears them.
func (s *RoleService) ReplacePermissions(ctx context.Context, actor permission.Principal, id uuid.UUID, permissionIDs *[]uuid.UUID) (*models.Role, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := findVisible[models.Role](ctx, tx, actor, id, "Role")
		if err != nil {
			return err
		}
		if permissionIDs == nil {
			return nil
		}
		return replacePermissions(tx, role.ID, *permissionIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// AddPermissions grants permissions in addition to the existing ones.
func (s *RoleService) AddPermissions(ctx context.Context, actor permission.Principal, id uuid.UUID, permissionIDs *[]uuid.UUID) (*models.Role, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := findVisible[models.Role](ctx, tx, actor, id, "Role")
		if err != nil {
			return err
		}
		if permissionIDs == nil {
			return nil
		}
		ids, err := resolvePermissionIDs(tx, *permissionIDs)
		if err != nil {
			return err
		}
		return grantPermissions(tx, role.ID, ids)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// RemovePermissions revokes the given permissions. Ids the role does not hold are ignored.
func (s *RoleService) RemovePermissions(ctx context.Context, actor permission.Principal, id uuid.UUID, permissionIDs *[]uuid.UUID) (*models.Role, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := findVisible[models.Role](ctx, tx, actor, id, "Role")
		if err != nil {
			return err
		}
		if permissionIDs == nil {
			return nil
		}
		ids := uniqueIDs(*permissionIDs)
		if len(ids) == 0 {
			return nil
		}
		return tx.Where("role_id = ? AND permission_id IN ?", role.ID, ids).Delete(&models.RolePermission{}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Permissions returns the permissions held by a role.
func (s *RoleService) Permissions(ctx context.Context, actor permission.Principal, id uuid.UUID) ([]models.Permission, error) {
	role, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return role.Permissions, nil
}

// Delete removes a role and detaches it from every user and permission.
// Predefined system roles cannot be deleted.
func (s *RoleService) Delete(ctx context.Context, actor permission.Principal, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role, err := findVisible[models.Role](ctx, tx, actor, id, "Role")
		if err != nil {
			return err
		}
		if role.IsSystemRole {
			return apperrors.Conflict("System role '%s' cannot be deleted", role.Name)
		}

		if err := tx.Where("role_id = ?", role.ID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(role).Error
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"role_id": id, "actor_id": actor.UserID}).Info("role deleted")
	return nil
}

// resolvePermissionIDs deduplicates ids and fails with every id that names no permission.
func resolvePermissionIDs(tx *gorm.DB, ids []uuid.UUID) ([]uuid.UUID, error) {
	missing, err := missingIDs(tx, &models.Permission{}, ids, nil)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, apperrors.InvalidReferences("permission ids", missing)
	}
	return uniqueIDs(ids), nil
}

func grantPermissions(tx *gorm.DB, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	if len(permissionIDs) == 0 {
		return nil
	}
	rows := make([]models.RolePermission, len(permissionIDs))
	for i, pid := range permissionIDs {
		rows[i] = models.RolePermission{RoleID: roleID, PermissionID: pid}
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func replacePermissions(tx *gorm.DB, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	ids, err := resolvePermissionIDs(tx, permissionIDs)
	if err != nil {
		return err
	}
	if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
		return err
	}
	return grantPermissions(tx, roleID, ids)
}
