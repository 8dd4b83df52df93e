package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/database/dbtest"
	"bcm-backend/shared/database/models"
)

func newUserService(t *testing.T) (*UserService, tenant, tenant) {
	t.Helper()
	db, _ := dbtest.Seeded(t)
	identity := NewIdentityService(db, nil, nil, dbtest.Logger())
	return NewUserService(db, identity, dbtest.Logger()), newTenant(t, db, "alpha"), newTenant(t, db, "beta")
}

func TestUserCreateNormalizesEmailAndHashesPassword(t *testing.T) {
	svc, a, _ := newUserService(t)

	user, err := svc.Create(context.Background(), a.actor, UserCreate{
		Email:     "  Jane.Doe@Example.COM ",
		Password:  "s3cret-pass",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)

	assert.Equal(t, "jane.doe@example.com", user.Email)
	assert.Equal(t, a.org.ID, user.OrganizationID)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.Equal(t, "Jane Doe", user.FullName())
}

func TestUserEmailUniquePerOrganization(t *testing.T) {
	svc, a, b := newUserService(t)

	_, err := svc.Create(context.Background(), a.actor, UserCreate{Email: "x@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), a.actor, UserCreate{Email: "X@example.com", Password: "password1"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = svc.Create(context.Background(), b.actor, UserCreate{Email: "x@example.com", Password: "password1"})
	assert.NoError(t, err)
}

func TestUserCreateValidation(t *testing.T) {
	svc, a, _ := newUserService(t)

	_, err := svc.Create(context.Background(), a.actor, UserCreate{Email: "not-an-email", Password: "short"})
	verr := requireValidation(t, err)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
}

func TestUserCreateRejectsRolesOfOtherOrganizations(t *testing.T) {
	svc, a, b := newUserService(t)
	db := svc.db

	own := dbtest.CreateRole(t, db, a.org.ID, "Own")
	foreign := dbtest.CreateRole(t, db, b.org.ID, "Foreign")
	unknown := uuid.New()

	_, err := svc.Create(context.Background(), a.actor, UserCreate{
		Email:    "new@example.com",
		Password: "password1",
		RoleIDs:  []uuid.UUID{own.ID, foreign.ID, unknown},
	})
	verr := requireValidation(t, err)
	assert.Equal(t, ids(foreign.ID, unknown), verr.InvalidIDs)
}

func TestUserCreateChecksDepartmentAndLocation(t *testing.T) {
	svc, a, b := newUserService(t)
	db := svc.db

	dept := models.Department{OrganizationID: b.org.ID, Name: "Ops", IsActive: true}
	require.NoError(t, db.Create(&dept).Error)

	_, err := svc.Create(context.Background(), a.actor, UserCreate{
		Email:        "new@example.com",
		Password:     "password1",
		DepartmentID: &dept.ID,
	})
	verr := requireValidation(t, err)
	assert.Equal(t, ids(dept.ID), verr.InvalidIDs)
}

func TestUserUpdateDepartmentCanBeCleared(t *testing.T) {
	svc, a, b := newUserService(t)
	db := svc.db

	dept := models.Department{OrganizationID: a.org.ID, Name: "Finance", IsActive: true}
	require.NoError(t, db.Create(&dept).Error)
	foreign := models.Location{OrganizationID: b.org.ID, Name: "Elsewhere", IsActive: true}
	require.NoError(t, db.Create(&foreign).Error)

	user, err := svc.Create(context.Background(), a.actor, UserCreate{Email: "dept@example.com", Password: "password1", DepartmentID: &dept.ID})
	require.NoError(t, err)
	require.NotNil(t, user.DepartmentID)

	var in UserUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"job_title":"Analyst"}`), &in))
	user, err = svc.Update(context.Background(), a.actor, user.ID, in)
	require.NoError(t, err)
	require.NotNil(t, user.DepartmentID, "absent department_id is left alone")
	assert.Equal(t, dept.ID, *user.DepartmentID)

	in = UserUpdate{}
	require.NoError(t, json.Unmarshal([]byte(`{"department_id":null}`), &in))
	assert.True(t, in.DepartmentID.Set)
	user, err = svc.Update(context.Background(), a.actor, user.ID, in)
	require.NoError(t, err)
	assert.Nil(t, user.DepartmentID, "explicit null unassigns")

	_, err = svc.Update(context.Background(), a.actor, user.ID, UserUpdate{LocationID: SetOptionalUUID(&foreign.ID)})
	verr := requireValidation(t, err)
	assert.Equal(t, ids(foreign.ID), verr.InvalidIDs)

	in = UserUpdate{}
	assert.Error(t, json.Unmarshal([]byte(`{"location_id":"not-a-uuid"}`), &in))
}

func TestUserUpdateRoleIDsSemantics(t *testing.T) {
	svc, a, _ := newUserService(t)
	db := svc.db

	r1 := dbtest.CreateRole(t, db, a.org.ID, "R1")
	r2 := dbtest.CreateRole(t, db, a.org.ID, "R2")

	user, err := svc.Create(context.Background(), a.actor, UserCreate{
		Email:    "u@example.com",
		Password: "password1",
		RoleIDs:  []uuid.UUID{r1.ID},
	})
	require.NoError(t, err)
	require.Len(t, user.Roles, 1)

	user, err = svc.Update(context.Background(), a.actor, user.ID, UserUpdate{JobTitle: strPtr("Analyst")})
	require.NoError(t, err)
	assert.Equal(t, "Analyst", user.JobTitle)
	require.Len(t, user.Roles, 1, "absent role_ids leaves roles")

	replace := []uuid.UUID{r2.ID}
	user, err = svc.Update(context.Background(), a.actor, user.ID, UserUpdate{RoleIDs: &replace})
	require.NoError(t, err)
	require.Len(t, user.Roles, 1)
	assert.Equal(t, "R2", user.Roles[0].Name)

	empty := []uuid.UUID{}
	user, err = svc.Update(context.Background(), a.actor, user.ID, UserUpdate{RoleIDs: &empty})
	require.NoError(t, err)
	assert.Empty(t, user.Roles)
}

func TestUserDeactivate(t *testing.T) {
	svc, a, _ := newUserService(t)

	user, err := svc.Create(context.Background(), a.actor, UserCreate{Email: "u@example.com", Password: "password1"})
	require.NoError(t, err)

	user, err = svc.Deactivate(context.Background(), a.actor, user.ID)
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	_, err = svc.Deactivate(context.Background(), a.actor, a.user.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation, "users cannot deactivate themselves")
}

func TestAssignRoleToUser(t *testing.T) {
	svc, a, _ := newUserService(t)
	db := svc.db

	role := dbtest.CreateRole(t, db, a.org.ID, "Vendor Reader", "vendor:read")
	user := dbtest.CreateUser(t, db, a.org.ID, "u@example.com")

	got, err := svc.AssignRole(context.Background(), a.actor, user.ID, role.ID)
	require.NoError(t, err)
	require.Len(t, got.Roles, 1)

	_, err = svc.AssignRole(context.Background(), a.actor, user.ID, role.ID)
	require.NoError(t, err, "assigning twice is idempotent")

	perms, err := svc.EffectivePermissions(context.Background(), a.actor, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"vendor:read"}, perms)

	got, err = svc.RemoveRole(context.Background(), a.actor, user.ID, role.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Roles)

	_, err = svc.RemoveRole(context.Background(), a.actor, user.ID, role.ID)
	requireNotFound(t, err, "Role assignment")
}

func TestAssignRoleFromAnotherOrganizationIsRejected(t *testing.T) {
	svc, a, b := newUserService(t)
	db := svc.db

	foreign := dbtest.CreateRole(t, db, b.org.ID, "Foreign", "vendor:read")
	user := dbtest.CreateUser(t, db, a.org.ID, "u@example.com")

	_, err := svc.AssignRole(context.Background(), a.actor, user.ID, foreign.ID)
	verr := requireValidation(t, err)
	assert.Equal(t, ids(foreign.ID), verr.InvalidIDs)

	var count int64
	require.NoError(t, db.Model(&models.UserRole{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)

	_, err = svc.AssignRole(context.Background(), a.actor, user.ID, uuid.New())
	requireNotFound(t, err, "Role")
}

func TestUserCrossTenantIsNotFound(t *testing.T) {
	svc, a, b := newUserService(t)

	_, err := svc.Get(context.Background(), a.actor, b.user.ID)
	requireNotFound(t, err, "User")

	_, err = svc.Deactivate(context.Background(), a.actor, b.user.ID)
	requireNotFound(t, err, "User")

	role := dbtest.CreateRole(t, svc.db, b.org.ID, "Theirs")
	_, err = svc.AssignRole(context.Background(), a.actor, b.user.ID, role.ID)
	requireNotFound(t, err, "User")
}
