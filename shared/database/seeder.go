package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bcm-backend/shared/config"
	"bcm-backend/shared/database/models"
	"bcm-backend/shared/utils/auth"
)

// Predefined role names referenced by route guards and the bootstrap.
const (
	RoleSuperAdmin     = "Super Admin"
	RoleAdmin          = "Admin"
	RoleBCMManager     = "BCM Manager"
	RoleDepartmentHead = "Department Head"
)

// Seeder creates the permission registry, predefined roles and bootstrap records.
// Every step is idempotent.
type Seeder struct {
	db      *gorm.DB
	catalog *Catalog
	log     logrus.FieldLogger
}

// NewSeeder returns a Seeder writing through db.
func NewSeeder(db *gorm.DB, catalog *Catalog, log logrus.FieldLogger) *Seeder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Seeder{db: db, catalog: catalog, log: log}
}

// Catalog returns the catalog the seeder was built with.
func (s *Seeder) Catalog() *Catalog {
	return s.catalog
}

// SeedDatabase seeds the default organization, registry, roles and the super admin user
func (s *Seeder) SeedDatabase(cfg *config.Config) error {
	orgID, err := uuid.Parse(cfg.DefaultOrgID)
	if err != nil {
		return fmt.Errorf("invalid DEFAULT_ORG_ID: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		org := models.Organization{ID: orgID}
		if err := tx.Where(models.Organization{ID: orgID}).
			Attrs(models.Organization{Name: cfg.DefaultOrgName, Description: "Default organization for the system.", IsActive: true}).
			FirstOrCreate(&org).Error; err != nil {
			return fmt.Errorf("default organization: %w", err)
		}

		if _, err := s.SeedPermissions(tx); err != nil {
			return err
		}

		roles, err := s.SeedRoles(tx, org.ID, true)
		if err != nil {
			return err
		}

		return s.EnsureSuperAdmin(tx, org.ID, cfg.SuperAdminEmail, cfg.SuperAdminPassword,
			[]models.Role{roles[RoleAdmin], roles[RoleSuperAdmin]})
	})
}

// SeedPermissions creates missing registry entries and returns every permission keyed by name.
func (s *Seeder) SeedPermissions(tx *gorm.DB) (map[string]models.Permission, error) {
	created := 0
	for _, entry := range s.catalog.Permissions {
		var existing models.Permission
		result := tx.Where("name = ?", entry.Name).Limit(1).Find(&existing)
		if result.Error != nil {
			return nil, fmt.Errorf("lookup permission %s: %w", entry.Name, result.Error)
		}
		if result.RowsAffected > 0 {
			continue
		}
		p := models.Permission{Name: entry.Name, Description: entry.Description}
		if err := tx.Create(&p).Error; err != nil {
			return nil, fmt.Errorf("create permission %s: %w", entry.Name, err)
		}
		created++
	}

	var all []models.Permission
	if err := tx.Find(&all).Error; err != nil {
		return nil, err
	}
	byName := make(map[string]models.Permission, len(all))
	for _, p := range all {
		byName[p.Name] = p
	}

	s.log.WithField("created", created).Info("permission registry seeded")
	return byName, nil
}

// SeedRoles creates the predefined roles of an organization and grants their catalog
// permissions. Existing grants are left in place.
func (s *Seeder) SeedRoles(tx *gorm.DB, organizationID uuid.UUID, includeBootstrap bool) (map[string]models.Role, error) {
	var perms []models.Permission
	if err := tx.Find(&perms).Error; err != nil {
		return nil, err
	}
	permByName := make(map[string]uuid.UUID, len(perms))
	for _, p := range perms {
		permByName[p.Name] = p.ID
	}

	roles := make(map[string]models.Role)
	for _, entry := range s.catalog.RolesForScope(includeBootstrap) {
		var role models.Role
		result := tx.Where("organization_id = ? AND name = ?", organizationID, entry.Name).Limit(1).Find(&role)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			role = models.Role{
				Name:           entry.Name,
				Description:    entry.Description,
				IsSystemRole:   true,
				OrganizationID: organizationID,
			}
			if err := tx.Create(&role).Error; err != nil {
				return nil, fmt.Errorf("create role %s: %w", entry.Name, err)
			}
			s.log.WithFields(logrus.Fields{"role": entry.Name, "organization_id": organizationID}).Info("role created")
		}

		var grants []models.RolePermission
		for _, name := range s.catalog.PermissionsFor(entry) {
			id, ok := permByName[name]
			if !ok {
				s.log.WithFields(logrus.Fields{"role": entry.Name, "permission": name}).Warn("permission not seeded, skipping grant")
				continue
			}
			grants = append(grants, models.RolePermission{RoleID: role.ID, PermissionID: id})
		}
		if len(grants) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grants).Error; err != nil {
				return nil, fmt.Errorf("grant permissions to %s: %w", entry.Name, err)
			}
		}
		roles[role.Name] = role
	}
	return roles, nil
}

// EnsureSuperAdmin creates the bootstrap administrator if missing and makes sure it holds roles.
func (s *Seeder) EnsureSuperAdmin(tx *gorm.DB, organizationID uuid.UUID, email, password string, roles []models.Role) error {
	var user models.User
	result := tx.Where("organization_id = ? AND email = ?", organizationID, email).Limit(1).Find(&user)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		user = models.User{
			OrganizationID: organizationID,
			Email:          email,
			PasswordHash:   hash,
			FirstName:      "Admin",
			LastName:       "User",
			IsActive:       true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create super admin: %w", err)
		}
		s.log.WithField("email", email).Info("super admin created")
	}

	var links []models.UserRole
	for _, r := range roles {
		if r.ID != uuid.Nil {
			links = append(links, models.UserRole{UserID: user.ID, RoleID: r.ID})
		}
	}
	if len(links) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}
