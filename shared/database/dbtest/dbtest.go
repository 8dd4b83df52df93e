// Package dbtest opens migrated in-memory sqlite databases for tests.
package dbtest

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bcm-backend/shared/database"
	"bcm-backend/shared/database/models"
)

// Logger returns a logrus logger that discards output.
func Logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// New returns an isolated, migrated database that is closed when the test ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database alive and serializes transactions.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db, Logger()))
	return db
}

// Seeded returns a database holding the permission registry plus the seeder used.
func Seeded(t testing.TB) (*gorm.DB, *database.Seeder) {
	t.Helper()

	db := New(t)
	catalog, err := database.LoadCatalog()
	require.NoError(t, err)

	seeder := database.NewSeeder(db, catalog, Logger())
	_, err = seeder.SeedPermissions(db)
	require.NoError(t, err)
	return db, seeder
}

// CreateOrganization inserts an organization with the given name.
func CreateOrganization(t testing.TB, db *gorm.DB, name string) models.Organization {
	t.Helper()
	org := models.Organization{Name: name, IsActive: true}
	require.NoError(t, db.Create(&org).Error)
	return org
}

// CreateUser inserts an active user in org with the given roles.
func CreateUser(t testing.TB, db *gorm.DB, orgID uuid.UUID, email string, roles ...models.Role) models.User {
	t.Helper()
	user := models.User{OrganizationID: orgID, Email: email, PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	for _, r := range roles {
		require.NoError(t, db.Create(&models.UserRole{UserID: user.ID, RoleID: r.ID}).Error)
	}
	return user
}

// CreateRole inserts a role in org granting the named permissions.
func CreateRole(t testing.TB, db *gorm.DB, orgID uuid.UUID, name string, permissions ...string) models.Role {
	t.Helper()
	role := models.Role{Name: name, OrganizationID: orgID}
	require.NoError(t, db.Create(&role).Error)
	for _, pname := range permissions {
		var p models.Permission
		require.NoError(t, db.Where("name = ?", pname).First(&p).Error, "permission %s", pname)
		require.NoError(t, db.Create(&models.RolePermission{RoleID: role.ID, PermissionID: p.ID}).Error)
	}
	return role
}

// PermissionID returns the id of a seeded permission.
func PermissionID(t testing.TB, db *gorm.DB, name string) uuid.UUID {
	t.Helper()
	var p models.Permission
	require.NoError(t, db.Where("name = ?", name).First(&p).Error)
	return p.ID
}
