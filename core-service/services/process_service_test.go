package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/database/dbtest"
	"bcm-backend/shared/database/models"
)

type processFixture struct {
	processes *ProcessService
	a, b      tenant
	finance   *models.Department
	ops       *models.Department
	hq, dc    *models.Location
	erp       *models.Application
}

func newProcessFixture(t *testing.T, db *gorm.DB) processFixture {
	t.Helper()
	log := dbtest.Logger()
	locations := NewLocationService(db, log)
	departments := NewDepartmentService(db, log)
	apps := NewApplicationService(db, log)

	f := processFixture{processes: NewProcessService(db, log), a: newTenant(t, db, "alpha"), b: newTenant(t, db, "beta")}
	var err error
	f.hq, err = locations.Create(context.Background(), f.a.actor, LocationCreate{Name: "HQ"})
	require.NoError(t, err)
	f.dc, err = locations.Create(context.Background(), f.a.actor, LocationCreate{Name: "DC"})
	require.NoError(t, err)
	f.finance, err = departments.Create(context.Background(), f.a.actor, DepartmentCreate{Name: "Finance", LocationIDs: []uuid.UUID{f.hq.ID}})
	require.NoError(t, err)
	f.ops, err = departments.Create(context.Background(), f.a.actor, DepartmentCreate{Name: "Ops", LocationIDs: []uuid.UUID{f.hq.ID, f.dc.ID}})
	require.NoError(t, err)
	f.erp, err = apps.Create(context.Background(), f.a.actor, ApplicationCreate{Name: "ERP"})
	require.NoError(t, err)
	return f
}

func TestProcessCreateWithLinks(t *testing.T) {
	db := dbtest.New(t)
	f := newProcessFixture(t, db)
	a := f.a

	rto := 4.0
	payroll, err := f.processes.Create(context.Background(), a.actor, ProcessCreate{
		Name:           "Payroll",
		DepartmentID:   f.finance.ID,
		ProcessOwnerID: &a.user.ID,
		RTO:            &rto,
		LocationIDs:    []uuid.UUID{f.hq.ID},
		ApplicationIDs: []uuid.UUID{f.erp.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, a.org.ID, payroll.OrganizationID)
	assert.Equal(t, a.user.ID, *payroll.CreatedByID)
	require.Len(t, payroll.Locations, 1)
	assert.Equal(t, "HQ", payroll.Locations[0].Name)
	require.Len(t, payroll.Applications, 1)
	assert.Equal(t, "ERP", payroll.Applications[0].Name)
	assert.True(t, payroll.IsActive)

	invoicing, err := f.processes.Create(context.Background(), a.actor, ProcessCreate{
		Name:          "Invoicing",
		DepartmentID:  f.finance.ID,
		DependencyIDs: []uuid.UUID{payroll.ID},
	})
	require.NoError(t, err)
	require.Len(t, invoicing.Dependencies, 1)
	assert.Equal(t, payroll.ID, invoicing.Dependencies[0].ID)

	_, err = f.processes.Create(context.Background(), a.actor, ProcessCreate{Name: "Payroll", DepartmentID: f.finance.ID})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = f.processes.Create(context.Background(), a.actor, ProcessCreate{Name: "Payroll", DepartmentID: f.ops.ID})
	assert.NoError(t, err, "names are unique per department")

	page, err := f.processes.List(context.Background(), a.actor, listByDefault())
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)

	page, err = f.processes.List(context.Background(), f.b.actor, listByDefault())
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestProcessCreateRejectsInvalidInput(t *testing.T) {
	db := dbtest.New(t)
	f := newProcessFixture(t, db)
	a, b := f.a, f.b

	negative := -1
	_, err := f.processes.Create(context.Background(), a.actor, ProcessCreate{Name: " ", NumTeamMembers: &negative})
	verr := requireValidation(t, err)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "num_team_members")
	assert.Contains(t, verr.Fields, "department_id")

	theirDept, err := NewDepartmentService(db, dbtest.Logger()).Create(context.Background(), b.actor, DepartmentCreate{Name: "Theirs"})
	require.NoError(t, err)
	_, err = f.processes.Create(context.Background(), a.actor, ProcessCreate{Name: "Payroll", DepartmentID: theirDept.ID})
	verr = requireValidation(t, err)
	assert.Equal(t, ids(theirDept.ID), verr.InvalidIDs)

	_, err = f.processes.Create(context.Background(), a.actor, ProcessCreate{Name: "Payroll", DepartmentID: f.finance.ID, ProcessOwnerID: &b.user.ID})
	verr = requireValidation(t, err)
	assert.Equal(t, ids(b.user.ID), verr.InvalidIDs)

	inactive := dbtest.CreateUser(t, db, a.org.ID, "gone@alpha.test")
	require.NoError(t, db.Model(&inactive).Update("is_active", false).Error)
	_, err = f.processes.Create(context.Background(), a.actor, ProcessCreate{Name: "Payroll", DepartmentID: f.finance.ID, ProcessOwnerID: &inactive.ID})
	verr = requireValidation(t, err)
	assert.Equal(t, ids(inactive.ID), verr.InvalidIDs)

	_, err = f.processes.Create(context.Background(), a.actor, ProcessCreate{
		Name:         "Payroll",
		DepartmentID: f.finance.ID,
		LocationIDs:  []uuid.UUID{f.hq.ID, f.dc.ID},
	})
	verr = requireValidation(t, err)
	assert.Equal(t, ids(f.dc.ID), verr.InvalidIDs, "DC is not a Finance location")

	unknown1, unknown2 := uuid.New(), uuid.New()
	_, err = f.processes.Create(context.Background(), a.actor, ProcessCreate{
		Name:           "Payroll",
		DepartmentID:   f.finance.ID,
		ApplicationIDs: []uuid.UUID{unknown1, f.erp.ID, unknown2},
	})
	verr = requireValidation(t, err)
	assert.Equal(t, ids(unknown1, unknown2), verr.InvalidIDs)

	var count int64
	require.NoError(t, db.Model(&models.Process{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestProcessUpdateLinks(t *testing.T) {
	db := dbtest.New(t)
	f := newProcessFixture(t, db)
	a := f.a

	upstream, err := f.processes.Create(context.Background(), a.actor, ProcessCreate{Name: "Treasury", DepartmentID: f.finance.ID})
	require.NoError(t, err)
	proc, err := f.processes.Create(context.Background(), a.actor, ProcessCreate{
		Name:           "Payroll",
		DepartmentID:   f.finance.ID,
		ProcessOwnerID: &a.user.ID,
		LocationIDs:    []uuid.UUID{f.hq.ID},
		ApplicationIDs: []uuid.UUID{f.erp.ID},
	})
	require.NoError(t, err)

	proc, err = f.processes.Update(context.Background(), a.actor, proc.ID, ProcessUpdate{Description: strPtr("monthly")})
	require.NoError(t, err)
	assert.Equal(t, "monthly", proc.Description)
	assert.Len(t, proc.Locations, 1, "absent location_ids leaves locations")
	assert.Len(t, proc.Applications, 1, "absent application_ids leaves applications")
	require.NotNil(t, proc.ProcessOwnerID)

	proc, err = f.processes.Update(context.Background(), a.actor, proc.ID, ProcessUpdate{
		ApplicationIDs: idList(),
		DependencyIDs:  idList(upstream.ID),
	})
	require.NoError(t, err)
	assert.Empty(t, proc.Applications, "empty application_ids clears applications")
	require.Len(t, proc.Dependencies, 1)
	assert.Equal(t, upstream.ID, proc.Dependencies[0].ID)

	_, err = f.processes.Update(context.Background(), a.actor, proc.ID, ProcessUpdate{DependencyIDs: idList(proc.ID)})
	verr := requireValidation(t, err)
	assert.Contains(t, verr.Fields, "dependency_ids")

	var in ProcessUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"process_owner_id": null}`), &in))
	proc, err = f.processes.Update(context.Background(), a.actor, proc.ID, in)
	require.NoError(t, err)
	assert.Nil(t, proc.ProcessOwnerID)
}

func TestProcessUpdateDepartmentRules(t *testing.T) {
	db := dbtest.New(t)
	f := newProcessFixture(t, db)
	a, b := f.a, f.b

	_, err := f.processes.Create(context.Background(), a.actor, ProcessCreate{Name: "Payroll", DepartmentID: f.ops.ID})
	require.NoError(t, err)
	proc, err := f.processes.Create(context.Background(), a.actor, ProcessCreate{
		Name:         "Payroll",
		DepartmentID: f.finance.ID,
		LocationIDs:  []uuid.UUID{f.hq.ID},
	})
	require.NoError(t, err)

	_, err = f.processes.Update(context.Background(), a.actor, proc.ID, ProcessUpdate{DepartmentID: &f.ops.ID})
	assert.ErrorIs(t, err, apperrors.ErrConflict, "Ops already has a Payroll process")

	proc, err = f.processes.Update(context.Background(), a.actor, proc.ID, ProcessUpdate{Name: strPtr("Payroll EU"), DepartmentID: &f.ops.ID})
	require.NoError(t, err)
	assert.Equal(t, f.ops.ID, proc.DepartmentID)
	assert.Len(t, proc.Locations, 1, "HQ belongs to Ops as well")

	proc, err = f.processes.Update(context.Background(), a.actor, proc.ID, ProcessUpdate{LocationIDs: idList(f.dc.ID)})
	require.NoError(t, err)
	require.Len(t, proc.Locations, 1)
	assert.Equal(t, "DC", proc.Locations[0].Name)

	_, err = f.processes.Update(context.Background(), a.actor, proc.ID, ProcessUpdate{DepartmentID: &f.finance.ID})
	verr := requireValidation(t, err)
	assert.Equal(t, ids(f.dc.ID), verr.InvalidIDs, "DC is not a Finance location")

	_, err = f.processes.Update(context.Background(), b.actor, proc.ID, ProcessUpdate{Name: strPtr("Mine")})
	requireNotFound(t, err, "Process")

	require.NoError(t, f.processes.Delete(context.Background(), a.actor, proc.ID))
	proc, err = f.processes.Get(context.Background(), a.actor, proc.ID)
	require.NoError(t, err)
	assert.False(t, proc.IsActive)
	assert.Equal(t, a.user.ID, *proc.UpdatedByID)
}
