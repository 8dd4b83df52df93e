package services

import (
	"context"
	"errors"
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

type UserCreate struct {
	Email        string      `json:"email" binding:"required"`
	Password     string      `json:"password" binding:"required"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	JobTitle     string      `json:"job_title"`
	DepartmentID *uuid.UUID  `json:"department_id"`
	LocationID   *uuid.UUID  `json:"location_id"`
	IsActive     *bool       `json:"is_active"`
	RoleIDs      []uuid.UUID `json:"role_ids"`
}

// UserUpdate changes only the supplied fields. RoleIDs follows the same absent
// versus empty rule as role permissions; department_id and location_id accept null
// to unassign.
type UserUpdate struct {
	Email        *string      `json:"email"`
	Password     *string      `json:"password"`
	FirstName    *string      `json:"first_name"`
	LastName     *string      `json:"last_name"`
	JobTitle     *string      `json:"job_title"`
	DepartmentID OptionalUUID `json:"department_id" swaggertype:"string" format:"uuid"`
	LocationID   OptionalUUID `json:"location_id" swaggertype:"string" format:"uuid"`
	IsActive     *bool        `json:"is_active"`
	RoleIDs      *[]uuid.UUID `json:"role_ids"`
}

var userListSpec = query.ListSpec{
	Filters: map[string]string{
		"is_active":     "is_active",
		"department_id": "department_id",
		"location_id":   "location_id",
	},
	SortFields: map[string]string{
		"email":      "email",
		"first_name": "first_name",
		"last_name":  "last_name",
		"created_at": "created_at",
	},
	SearchFields: []string{"email", "first_name", "last_name", "job_title"},
	DefaultSort:  "email ASC",
	Preloads:     []string{"Roles"},
}

type UserService struct {
	db       *gorm.DB
	identity *IdentityService
	log      logrus.FieldLogger
}

func NewUserService(db *gorm.DB, identity *IdentityService, log logrus.FieldLogger) *UserService {
	return &UserService{db: db, identity: identity, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateProfile(errs fieldErrors, first, last, jobTitle *string) {
	if first != nil {
		errs.check("first_name", auth.ValidateLength(*first, "first_name", 0, 100))
	}
	if last != nil {
		errs.check("last_name", auth.ValidateLength(*last, "last_name", 0, 100))
	}
	if jobTitle != nil {
		errs.check("job_title", auth.ValidateLength(*jobTitle, "job_title", 0, 255))
	}
}

// Create adds a user to the actor's organization. Emails are unique per organization.
func (s *UserService) Create(ctx context.Context, actor permission.Principal, in UserCreate) (*models.User, error) {
	email := normalizeEmail(in.Email)
	first, last, jobTitle := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName), strings.TrimSpace(in.JobTitle)

	errs := fieldErrors{}
	errs.check("email", auth.ValidateEmail(email))
	errs.check("password", auth.ValidatePassword(in.Password))
	validateProfile(errs, &first, &last, &jobTitle)
	if err := errs.err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		OrganizationID: actor.OrganizationID,
		Email:          email,
		PasswordHash:   hash,
		FirstName:      first,
		LastName:       last,
		JobTitle:       jobTitle,
		IsActive:       in.IsActive == nil || *in.IsActive,
		DepartmentID:   in.DepartmentID,
		LocationID:     in.LocationID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkEmailFree(tx, actor.OrganizationID, email, uuid.Nil); err != nil {
			return err
		}
		if err := checkReference(tx, &models.Department{}, in.DepartmentID, actor.OrganizationID, "department id"); err != nil {
			return err
		}
		if err := checkReference(tx, &models.Location{}, in.LocationID, actor.OrganizationID, "location id"); err != nil {
			return err
		}
		roleIDs, err := resolveRoleIDs(tx, actor.OrganizationID, in.RoleIDs)
		if err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return translateWriteError(err, "User with email '"+email+"' already exists in this organization")
		}
		return linkRoles(tx, user.ID, roleIDs)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "actor_id": actor.UserID}).Info("user created")
	return s.Get(ctx, actor, user.ID)
}

// Get returns a user with roles.
func (s *UserService) Get(ctx context.Context, actor permission.Principal, id uuid.UUID) (*models.User, error) {
	return findVisible[models.User](ctx, s.db, actor, id, "User", "Roles")
}

// List returns the users of the actor's organization.
func (s *UserService) List(ctx context.Context, actor permission.Principal, params query.FilterParams) (*Page[models.User], error) {
	return listScoped[models.User](ctx, s.db, actor, params, userListSpec)
}

func (s *UserService) Update(ctx context.Context, actor permission.Principal, id uuid.UUID, in UserUpdate) (*models.User, error) {
	first, last, jobTitle := trimPtr(in.FirstName), trimPtr(in.LastName), trimPtr(in.JobTitle)

	errs := fieldErrors{}
	var email string
	if in.Email != nil {
		email = normalizeEmail(*in.Email)
		errs.check("email", auth.ValidateEmail(email))
	}
	if in.Password != nil {
		errs.check("password", auth.ValidatePassword(*in.Password))
	}
	validateProfile(errs, first, last, jobTitle)
	if err := errs.err(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := findVisible[models.User](ctx, tx, actor, id, "User")
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if in.Email != nil && email != user.Email {
			if err := s.checkEmailFree(tx, user.OrganizationID, email, user.ID); err != nil {
				return err
			}
			updates["email"] = email
		}
		if in.Password != nil {
			hash, err := auth.HashPassword(*in.Password)
			if err != nil {
				return err
			}
			updates["password_hash"] = hash
		}
		if first != nil {
			updates["first_name"] = *first
		}
		if last != nil {
			updates["last_name"] = *last
		}
		if jobTitle != nil {
			updates["job_title"] = *jobTitle
		}
		if err := setReference(tx, updates, "department_id", in.DepartmentID, &models.Department{}, user.OrganizationID, "department id"); err != nil {
			return err
		}
		if err := setReference(tx, updates, "location_id", in.LocationID, &models.Location{}, user.OrganizationID, "location id"); err != nil {
			return err
		}
		if in.IsActive != nil {
			if !*in.IsActive && user.ID == actor.UserID {
				return apperrors.Validation("You cannot deactivate your own account")
			}
			updates["is_active"] = *in.IsActive
		}
		if len(updates) > 0 {
			if err := tx.Model(user).Updates(updates).Error; err != nil {
				return translateWriteError(err, "User with this email already exists in this organization")
			}
		}

		if in.RoleIDs == nil {
			return nil
		}
		roleIDs, err := resolveRoleIDs(tx, user.OrganizationID, *in.RoleIDs)
		if err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		return linkRoles(tx, user.ID, roleIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Deactivate soft-deletes a user. Rows are never removed so audit references stay valid.
func (s *UserService) Deactivate(ctx context.Context, actor permission.Principal, id uuid.UUID) (*models.User, error) {
	user, err := findVisible[models.User](ctx, s.db, actor, id, "User")
	if err != nil {
		return nil, err
	}
	if user.ID == actor.UserID {
		return nil, apperrors.Validation("You cannot deactivate your own account")
	}
	if err := s.db.WithContext(ctx).Model(user).Update("is_active", false).Error; err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": id, "actor_id": actor.UserID}).Info("user deactivated")
	return s.Get(ctx, actor, id)
}

// AssignRole gives a user a role. The role must belong to the user's organization.
func (s *UserService) AssignRole(ctx context.Context, actor permission.Principal, userID, roleID uuid.UUID) (*models.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := findVisible[models.User](ctx, tx, actor, userID, "User")
		if err != nil {
			return err
		}

		var role models.Role
		if err := tx.First(&role, "id = ?", roleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Role")
			}
			return err
		}
		if role.OrganizationID != user.OrganizationID {
			return &apperrors.ValidationError{
				Message:    "role does not belong to the user's organization",
				InvalidIDs: []string{role.ID.String()},
			}
		}
		return linkRoles(tx, user.ID, []uuid.UUID{role.ID})
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "role_id": roleID, "actor_id": actor.UserID}).Info("role assigned")
	return s.Get(ctx, actor, userID)
}

// RemoveRole takes a role away from a user.
func (s *UserService) RemoveRole(ctx context.Context, actor permission.Principal, userID, roleID uuid.UUID) (*models.User, error) {
	user, err := findVisible[models.User](ctx, s.db, actor, userID, "User")
	if err != nil {
		return nil, err
	}
	result := s.db.WithContext(ctx).Where("user_id = ? AND role_id = ?", user.ID, roleID).Delete(&models.UserRole{})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound("Role assignment")
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "role_id": roleID, "actor_id": actor.UserID}).Info("role removed")
	return s.Get(ctx, actor, userID)
}

// EffectivePermissions returns the sorted union of permissions over the user's roles.
func (s *UserService) EffectivePermissions(ctx context.Context, actor permission.Principal, id uuid.UUID) ([]string, error) {
	user, err := findVisible[models.User](ctx, s.db, actor, id, "User")
	if err != nil {
		return nil, err
	}
	p, err := s.identity.LoadPrincipal(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return p.PermissionNames(), nil
}

func (s *UserService) checkEmailFree(tx *gorm.DB, organizationID uuid.UUID, email string, excludeID uuid.UUID) error {
	taken, err := nameTaken(tx, &models.User{}, organizationID, "email", email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.Conflict("User with email '%s' already exists in this organization", email)
	}
	return nil
}

// resolveRoleIDs fails with every id that is not a role of the organization.
func resolveRoleIDs(tx *gorm.DB, organizationID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	missing, err := missingIDs(tx, &models.Role{}, ids, &organizationID)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, apperrors.InvalidReferences("role ids for this organization", missing)
	}
	return uniqueIDs(ids), nil
}

func linkRoles(tx *gorm.DB, userID uuid.UUID, roleIDs []uuid.UUID) error {
	if len(roleIDs) == 0 {
		return nil
	}
	rows := make([]models.UserRole, len(roleIDs))
	for i, rid := range roleIDs {
		rows[i] = models.UserRole{UserID: userID, RoleID: rid}
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
