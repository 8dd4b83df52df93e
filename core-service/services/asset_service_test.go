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
)

func TestDepartmentWithLocations(t *testing.T) {
	db := dbtest.New(t)
	log := dbtest.Logger()
	departments := NewDepartmentService(db, log)
	locations := NewLocationService(db, log)
	a := newTenant(t, db, "alpha")
	b := newTenant(t, db, "beta")

	hq, err := locations.Create(context.Background(), a.actor, LocationCreate{Name: "HQ", City: "Berlin", Latitude: float(52.5)})
	require.NoError(t, err)
	dc, err := locations.Create(context.Background(), a.actor, LocationCreate{Name: "DC"})
	require.NoError(t, err)
	theirs, err := locations.Create(context.Background(), b.actor, LocationCreate{Name: "Theirs"})
	require.NoError(t, err)

	dept, err := departments.Create(context.Background(), a.actor, DepartmentCreate{
		Name:             "Finance",
		DepartmentHeadID: &a.user.ID,
		LocationIDs:      []uuid.UUID{hq.ID},
	})
	require.NoError(t, err)
	require.Len(t, dept.Locations, 1)
	assert.Equal(t, "HQ", dept.Locations[0].Name)

	_, err = departments.Create(context.Background(), a.actor, DepartmentCreate{Name: "Finance"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = departments.Create(context.Background(), a.actor, DepartmentCreate{
		Name:        "Ops",
		LocationIDs: []uuid.UUID{dc.ID, theirs.ID},
	})
	verr := requireValidation(t, err)
	assert.Equal(t, ids(theirs.ID), verr.InvalidIDs)

	_, err = departments.Create(context.Background(), a.actor, DepartmentCreate{Name: "Ops", DepartmentHeadID: &b.user.ID})
	verr = requireValidation(t, err)
	assert.Equal(t, ids(b.user.ID), verr.InvalidIDs)

	swap := []uuid.UUID{dc.ID}
	dept, err = departments.Update(context.Background(), a.actor, dept.ID, DepartmentUpdate{LocationIDs: &swap})
	require.NoError(t, err)
	require.Len(t, dept.Locations, 1)
	assert.Equal(t, "DC", dept.Locations[0].Name)

	dept, err = departments.Update(context.Background(), a.actor, dept.ID, DepartmentUpdate{Description: strPtr("money")})
	require.NoError(t, err)
	assert.Len(t, dept.Locations, 1, "absent location_ids leaves locations")

	require.NoError(t, departments.Delete(context.Background(), a.actor, dept.ID))
	dept, err = departments.Get(context.Background(), a.actor, dept.ID)
	require.NoError(t, err)
	assert.False(t, dept.IsActive)
	assert.Equal(t, a.user.ID, *dept.UpdatedByID)

	_, err = departments.Get(context.Background(), b.actor, dept.ID)
	requireNotFound(t, err, "Department")
}

func TestLocationValidatesCoordinates(t *testing.T) {
	db := dbtest.New(t)
	locations := NewLocationService(db, dbtest.Logger())
	a := newTenant(t, db, "alpha")

	_, err := locations.Create(context.Background(), a.actor, LocationCreate{Name: "Nowhere", Latitude: float(91), Longitude: float(-181)})
	verr := requireValidation(t, err)
	assert.Contains(t, verr.Fields, "latitude")
	assert.Contains(t, verr.Fields, "longitude")
}

func TestVendorDefaultsAndValidation(t *testing.T) {
	db := dbtest.New(t)
	vendors := NewVendorService(db, dbtest.Logger())
	a := newTenant(t, db, "alpha")

	v, err := vendors.Create(context.Background(), a.actor, VendorCreate{Name: "Cloudy", ContactEmail: "Ops@Cloudy.io"})
	require.NoError(t, err)
	assert.Equal(t, models.CriticalityMedium, v.Criticality)
	assert.Equal(t, "ops@cloudy.io", v.ContactEmail)

	_, err = vendors.Create(context.Background(), a.actor, VendorCreate{Name: "Bad", ContactEmail: "nope", Criticality: "Extreme"})
	verr := requireValidation(t, err)
	assert.Contains(t, verr.Fields, "contact_email")
	assert.Contains(t, verr.Fields, "criticality")

	v, err = vendors.Update(context.Background(), a.actor, v.ID, VendorUpdate{Criticality: strPtr("High"), IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, models.CriticalityHigh, v.Criticality)
	assert.False(t, v.IsActive)
}

func TestApplicationReferencesStayInOrganization(t *testing.T) {
	db := dbtest.New(t)
	log := dbtest.Logger()
	vendors := NewVendorService(db, log)
	apps := NewApplicationService(db, log)
	a := newTenant(t, db, "alpha")
	b := newTenant(t, db, "beta")

	own, err := vendors.Create(context.Background(), a.actor, VendorCreate{Name: "Own"})
	require.NoError(t, err)
	foreign, err := vendors.Create(context.Background(), b.actor, VendorCreate{Name: "Foreign"})
	require.NoError(t, err)

	app, err := apps.Create(context.Background(), a.actor, ApplicationCreate{
		Name:        "ERP",
		VendorID:    &own.ID,
		AppOwnerID:  &a.user.ID,
		Criticality: models.CriticalityHigh,
	})
	require.NoError(t, err)
	require.NotNil(t, app.Vendor)
	assert.Equal(t, "Own", app.Vendor.Name)

	_, err = apps.Create(context.Background(), a.actor, ApplicationCreate{Name: "CRM", VendorID: &foreign.ID})
	verr := requireValidation(t, err)
	assert.Equal(t, ids(foreign.ID), verr.InvalidIDs)

	_, err = apps.Update(context.Background(), a.actor, app.ID, ApplicationUpdate{AppOwnerID: &b.user.ID})
	verr = requireValidation(t, err)
	assert.Equal(t, ids(b.user.ID), verr.InvalidIDs)

	_, err = apps.Update(context.Background(), b.actor, app.ID, ApplicationUpdate{Name: strPtr("Mine")})
	requireNotFound(t, err, "Application")

	require.NoError(t, apps.Delete(context.Background(), a.actor, app.ID))
	app, err = apps.Get(context.Background(), a.actor, app.ID)
	require.NoError(t, err)
	assert.False(t, app.IsActive)
}
