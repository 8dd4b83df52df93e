package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/database/dbtest"
	"bcm-backend/shared/database/models"
	"bcm-backend/shared/utils/query"
)

func TestRoleCreateWithPermissions(t *testing.T) {
	db, _ := dbtest.Seeded(t)
	svc := NewRoleService(db, dbtest.Logger())
	a := newTenant(t, db, "alpha")

	read := dbtest.PermissionID(t, db, "role:read")
	create := dbtest.PermissionID(t, db, "role:create")

	role, err := svc.Create(context.Background(), a.actor, RoleCreate{
		Name:          "  Auditor  ",
		Description:   "reads roles",
		PermissionIDs: []uuid.UUID{read, create, read},
	})
	require.NoError(t, err)

	assert.Equal(t, "Auditor", role.Name)
	assert.Equal(t, a.org.ID, role.OrganizationID)
	assert.False(t, role.IsSystemRole)
	assert.ElementsMatch(t, []string{"role:read", "role:create"}, role.PermissionNames())
}

func TestRoleNamesAreUniquePerOrganization(t *testing.T) {
	db, _ := dbtest.Seeded(t)
	svc := NewRoleService(db, dbtest.Logger())
	a := newTenant(t, db, "alpha")
	b := newTenant(t, db, "beta")

	_, err := svc.Create(context.Background(), a.actor, RoleCreate{Name: "Auditor"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), a.actor, RoleCreate{Name: "Auditor"})
	var conflict *apperrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Message, "Auditor")

	_, err = svc.Create(context.Background(), b.actor, RoleCreate{Name: "Auditor"})
	assert.NoError(t, err, "the same name is allowed in another organization")
}

func TestRoleCreateListsEveryUnknownPermission(t *testing.T) {
	db, _ := dbtest.Seeded(t)
	svc := NewRoleService(db, dbtest.Logger())
	a := newTenant(t, db, "alpha")

	known := dbtest.PermissionID(t, db, "role:read")
	unknown1, unknown2 := uuid.New(), uuid.New()

	_, err := svc.Create(context.Background(), a.actor, RoleCreate{
		Name:          "Broken",
		PermissionIDs: []uuid.UUID{unknown1, known, unknown2},
	})
	verr := requireValidation(t, err)
	assert.Equal(t, ids(unknown1, unknown2), verr.InvalidIDs)

	var count int64
	require.NoError(t, db.Model(&models.Role{}).Where("name = ?", "Broken").Count(&count).Error)
	assert.Zero(t, count, "nothing is written when validation fails")
}

func TestRoleCreateValidatesLengths(t *testing.T) {
	db, _ := dbtest.Seeded(t)
	svc := NewRoleService(db, dbtest.Logger())
	a := newTenant(t, db, "alpha")

	_, err := svc.Create(context.Background(), a.actor, RoleCreate{Name: "   "})
	verr := requireValidation(t, err)
	assert.Contains(t, verr.Fields, "name")

	long := make([]byte, 256)
	for i := range long {
		long[i] = 'x'
	}
	_, err = svc.Create(context.Background(), a.actor, RoleCreate{Name: "ok", Description: string(long)})
	verr = requireValidation(t, err)
	assert.Contains(t, verr.Fields, "description")
}

func TestRoleCreateForAnotherOrganizationIsHidden(t *testing.T) {
	db, _ := dbtest.Seeded(t)
	svc := NewRoleService(db, dbtest.Logger())
	a := newTenant(t, db, "alpha")
	b := newTenant(t, db, "beta")

	_, err := svc.Create(context.Background(), a.actor, RoleCreate{Name: "Sneaky", OrganizationID: &b.org.ID})
	requireNotFound(t, err, "Organization")
}

func TestRoleUpdatePermissionSemantics(t *testing.T) {
	db, _ := dbtest.Seeded(t)
	svc := NewRoleService(db, dbtest.Logger())
	a := newTenant(t, db, "alpha")

	read := dbtest.PermissionID(t, db, "vendor:read")
	role, err := svc.Create(context.Background(), a.actor, RoleCreate{Name: "Vendors", PermissionIDs: []uuid.UUID{read}})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), a.actor, role.ID, RoleUpdate{Description: strPtr("changed")})
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Description)
	assert.Equal(t, []string{"vendor:read"}, updated.PermissionNames(), "absent permission_ids leaves permissions")

	empty := []uuid.UUID{}
	updated, err = svc.Update(context.Background(), a.actor, role.ID, RoleUpdate{PermissionIDs: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.Permissions, "empty permission_ids clears permissions")
}

func TestRoleRenameConflict(t *testing.T) {
	db, _ := dbtest.Seeded(t)
	svc := NewRoleService(db, dbtest.Logger())
	a := newTenant(t, db, "alpha")

	_, err := svc.Create(context.Background(), a.actor, RoleCreate{Name: "One"})
	require.NoError(t, err)
	two, err := svc.Create(context.Background(), a.actor, RoleCreate{Name: "Two"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), a.actor, two.ID, RoleUpdate{Name: strPtr("One")})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	same, err := svc.Update(context.Background(), a.actor, two.ID, RoleUpdate{Name: strPtr("Two")})
	require.NoError(t, err, "renaming to the current name is not a conflict")
	assert.Equal(t, "Two", same.Name)
}

func TestRoleReplaceAddRemovePermissions(t *testing.T) {
	db, _ := dbtest.Seeded(t)
	svc := NewRoleService(db, dbtest.Logger())
	a := newTenant(t, db, "alpha")

	read := dbtest.PermissionID(t, db, "vendor:read")
	create := dbtest.PermissionID(t, db, "vendor:create")
	del := dbtest.PermissionID(t, db, "vendor:delete")

	role, err := svc.Create(context.Background(), a.actor, RoleCreate{Name: "Vendors", PermissionIDs: []uuid.UUID{read}})
	require.NoError(t, err)

	role, err = svc.ReplacePermissions(context.Background(), a.actor, role.ID, idList(create, del))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"vendor:create", "vendor:delete"}, role.PermissionNames())

	role, err = svc.AddPermissions(context.Background(), a.actor, role.ID, idList(read, create))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"vendor:create", "vendor:delete", "vendor:read"}, role.PermissionNames())

	role, err = svc.RemovePermissions(context.Background(), a.actor, role.ID, idList(del, uuid.New()))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"vendor:create", "vendor:read"}, role.PermissionNames())

	role, err = svc.ReplacePermissions(context.Background(), a.actor, role.ID, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"vendor:create", "vendor:read"}, role.PermissionNames(), "absent list leaves permissions")

	role, err = svc.AddPermissions(context.Background(), a.actor, role.ID, nil)
	require.NoError(t, err)
	role, err = svc.RemovePermissions(context.Background(), a.actor, role.ID, nil)
	require.NoError(t, err)
	assert.Len(t, role.Permissions, 2)

	role, err = svc.ReplacePermissions(context.Background(), a.actor, role.ID, idList())
	require.NoError(t, err)
	assert.Empty(t, role.Permissions)

	missing := uuid.New()
	_, err = svc.ReplacePermissions(context.Background(), a.actor, role.ID, idList(read, missing))
	verr := requireValidation(t, err)
	assert.Equal(t, ids(missing), verr.InvalidIDs)
}

func TestRoleDeleteDetachesJoinRows(t *testing.T) {
	db, _ := dbtest.Seeded(t)
	svc := NewRoleService(db, dbtest.Logger())
	a := newTenant(t, db, "alpha")

	role := dbtest.CreateRole(t, db, a.org.ID, "Temp", "vendor:read", "vendor:create")
	dbtest.CreateUser(t, db, a.org.ID, "someone@alpha.test", role)

	require.NoError(t, svc.Delete(context.Background(), a.actor, role.ID))

	var userRoles, rolePerms int64
	require.NoError(t, db.Model(&models.UserRole{}).Where("role_id = ?", role.ID).Count(&userRoles).Error)
	require.NoError(t, db.Model(&models.RolePermission{}).Where("role_id = ?", role.ID).Count(&rolePerms).Error)
	assert.Zero(t, userRoles)
	assert.Zero(t, rolePerms)

	_, err := svc.Get(context.Background(), a.actor, role.ID)
	requireNotFound(t, err, "Role")
}

func TestRoleDeleteRefusesSystemRoles(t *testing.T) {
	db, seeder := dbtest.Seeded(t)
	svc := NewRoleService(db, dbtest.Logger())
	a := newTenant(t, db, "alpha")

	roles, err := seeder.SeedRoles(db, a.org.ID, false)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), a.actor, roles["Admin"].ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRoleUpdateRefusesRenamingSystemRoles(t *testing.T) {
	db, seeder := dbtest.Seeded(t)
	svc := NewRoleService(db, dbtest.Logger())
	a := newTenant(t, db, "alpha")

	roles, err := seeder.SeedRoles(db, a.org.ID, false)
	require.NoError(t, err)
	admin := roles["Admin"]

	_, err = svc.Update(context.Background(), a.actor, admin.ID, RoleUpdate{Name: strPtr("Ops")})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	updated, err := svc.Update(context.Background(), a.actor, admin.ID, RoleUpdate{Name: strPtr("Admin"), Description: strPtr("Tenant administrators")})
	require.NoError(t, err, "keeping the name while editing the description is allowed")
	assert.Equal(t, "Admin", updated.Name)
	assert.Equal(t, "Tenant administrators", updated.Description)
}

func TestRoleCrossTenantAccessIsNotFound(t *testing.T) {
	db, _ := dbtest.Seeded(t)
	svc := NewRoleService(db, dbtest.Logger())
	a := newTenant(t, db, "alpha")
	b := newTenant(t, db, "beta")

	foreign := dbtest.CreateRole(t, db, b.org.ID, "Theirs", "vendor:read")

	_, err := svc.Get(context.Background(), a.actor, foreign.ID)
	requireNotFound(t, err, "Role")

	_, err = svc.Update(context.Background(), a.actor, foreign.ID, RoleUpdate{Name: strPtr("Mine")})
	requireNotFound(t, err, "Role")

	err = svc.Delete(context.Background(), a.actor, foreign.ID)
	requireNotFound(t, err, "Role")

	var count int64
	require.NoError(t, db.Model(&models.Role{}).Where("id = ?", foreign.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRoleListIsScopedAndPaginated(t *testing.T) {
	db, _ := dbtest.Seeded(t)
	svc := NewRoleService(db, dbtest.Logger())
	a := newTenant(t, db, "alpha")
	b := newTenant(t, db, "beta")

	for _, name := range []string{"C", "A", "B"} {
		dbtest.CreateRole(t, db, a.org.ID, name, "vendor:read")
	}
	dbtest.CreateRole(t, db, b.org.ID, "Other")

	params := query.DefaultParams()
	params.Limit = 2
	params.Sort = query.SortParams{Field: "name", Order: "asc"}
	page, err := svc.List(context.Background(), a.actor, params)
	require.NoError(t, err)

	assert.EqualValues(t, 3, page.Pagination.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "A", page.Items[0].Name)
	assert.Equal(t, "B", page.Items[1].Name)
	assert.Equal(t, []string{"vendor:read"}, page.Items[0].PermissionNames())
}
