package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/database/dbtest"
	"bcm-backend/shared/database/models"
)

func TestOrganizationCreateBootstrapsRoles(t *testing.T) {
	db, seeder := dbtest.Seeded(t)
	svc := NewOrganizationService(db, seeder, dbtest.Logger())
	a := newTenant(t, db, "alpha")

	org, err := svc.Create(context.Background(), a.actor, OrganizationCreate{Name: "Acme", Description: "new tenant"})
	require.NoError(t, err)
	assert.True(t, org.IsActive)

	var roles []models.Role
	require.NoError(t, db.Preload("Permissions").Where("organization_id = ?", org.ID).Find(&roles).Error)

	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
		assert.True(t, r.IsSystemRole)
	}
	assert.Contains(t, names, "Admin")
	assert.Contains(t, names, "BCM Manager")
	assert.NotContains(t, names, "Super Admin", "bootstrap roles stay in the default organization")

	for _, r := range roles {
		if r.Name == "Admin" {
			assert.Contains(t, r.PermissionNames(), "role:create")
			assert.NotContains(t, r.PermissionNames(), "organization:create")
		}
	}
}

func TestOrganizationNameIsGloballyUnique(t *testing.T) {
	db, seeder := dbtest.Seeded(t)
	svc := NewOrganizationService(db, seeder, dbtest.Logger())
	a := newTenant(t, db, "alpha")

	_, err := svc.Create(context.Background(), a.actor, OrganizationCreate{Name: "alpha"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestOrganizationVisibility(t *testing.T) {
	db, seeder := dbtest.Seeded(t)
	svc := NewOrganizationService(db, seeder, dbtest.Logger())
	a := newTenant(t, db, "alpha")
	b := newTenant(t, db, "beta")

	got, err := svc.Get(context.Background(), a.actor, a.org.ID)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Name)

	_, err = svc.Get(context.Background(), a.actor, b.org.ID)
	requireNotFound(t, err, "Organization")

	_, err = svc.Update(context.Background(), a.actor, b.org.ID, OrganizationUpdate{Name: strPtr("stolen")})
	requireNotFound(t, err, "Organization")

	orgs, err := svc.List(context.Background(), a.actor)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, a.org.ID, orgs[0].ID)
}

func TestOrganizationUpdate(t *testing.T) {
	db, seeder := dbtest.Seeded(t)
	svc := NewOrganizationService(db, seeder, dbtest.Logger())
	a := newTenant(t, db, "alpha")
	newTenant(t, db, "beta")

	got, err := svc.Update(context.Background(), a.actor, a.org.ID, OrganizationUpdate{Description: strPtr("updated")})
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Description)

	_, err = svc.Update(context.Background(), a.actor, a.org.ID, OrganizationUpdate{Name: strPtr("beta")})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}
