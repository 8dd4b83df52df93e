package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/database/models"
	"bcm-backend/shared/utils/auth"
	"bcm-backend/shared/utils/permission"
	"bcm-backend/shared/utils/query"
)

type ProcessCreate struct {
	Name             string      `json:"name" binding:"required"`
	Description      string      `json:"description"`
	DepartmentID     uuid.UUID   `json:"department_id" binding:"required"`
	ProcessOwnerID   *uuid.UUID  `json:"process_owner_id"`
	SLA              string      `json:"sla"`
	TAT              string      `json:"tat"`
	Seasonality      string      `json:"seasonality"`
	PeakTimes        string      `json:"peak_times"`
	Frequency        string      `json:"frequency"`
	NumTeamMembers   *int        `json:"num_team_members"`
	RTO              *float64    `json:"rto"`
	RPO              *float64    `json:"rpo"`
	CriticalityLevel string      `json:"criticality_level"`
	LocationIDs      []uuid.UUID `json:"location_ids"`
	ApplicationIDs   []uuid.UUID `json:"application_ids"`
	DependencyIDs    []uuid.UUID `json:"dependency_ids"`
	IsActive         *bool       `json:"is_active"`
}

// ProcessUpdate changes only the fields present. An absent list leaves the
// links untouched and an empty list removes them. A null process_owner_id
// unassigns the owner.
type ProcessUpdate struct {
	Name             *string      `json:"name"`
	Description      *string      `json:"description"`
	DepartmentID     *uuid.UUID   `json:"department_id"`
	ProcessOwnerID   OptionalUUID `json:"process_owner_id" swaggertype:"string" format:"uuid"`
	SLA              *string      `json:"sla"`
	TAT              *string      `json:"tat"`
	Seasonality      *string      `json:"seasonality"`
	PeakTimes        *string      `json:"peak_times"`
	Frequency        *string      `json:"frequency"`
	NumTeamMembers   *int         `json:"num_team_members"`
	RTO              *float64     `json:"rto"`
	RPO              *float64     `json:"rpo"`
	CriticalityLevel *string      `json:"criticality_level"`
	LocationIDs      *[]uuid.UUID `json:"location_ids"`
	ApplicationIDs   *[]uuid.UUID `json:"application_ids"`
	DependencyIDs    *[]uuid.UUID `json:"dependency_ids"`
	IsActive         *bool        `json:"is_active"`
}

var processListSpec = query.ListSpec{
	Filters: map[string]string{
		"is_active":         "is_active",
		"department_id":     "department_id",
		"process_owner_id":  "process_owner_id",
		"criticality_level": "criticality_level",
	},
	SortFields: map[string]string{
		"name":              "name",
		"criticality_level": "criticality_level",
		"rto":               "rto",
		"created_at":        "created_at",
	},
	SearchFields: []string{"name", "description"},
	DefaultSort:  "name ASC",
	Preloads:     []string{"Locations", "Applications", "Dependencies"},
}

var processPreloads = []string{"Locations", "Applications", "Dependencies"}

type ProcessService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewProcessService(db *gorm.DB, log logrus.FieldLogger) *ProcessService {
	return &ProcessService{db: db, log: log}
}

// processFields are the scalar attributes shared by create and update.
type processFields struct {
	name, sla, tat, seasonality, peakTimes, frequency, criticality *string
	numTeamMembers                                                 *int
	rto, rpo                                                       *float64
}

func validateProcess(errs fieldErrors, f processFields) {
	if f.name != nil {
		errs.check("name", auth.ValidateLength(*f.name, "name", 1, 255))
	}
	for field, value := range map[string]*string{
		"sla":         f.sla,
		"tat":         f.tat,
		"seasonality": f.seasonality,
		"peak_times":  f.peakTimes,
		"frequency":   f.frequency,
	} {
		if value != nil {
			errs.check(field, auth.ValidateLength(*value, field, 0, 255))
		}
	}
	if f.criticality != nil {
		errs.check("criticality_level", auth.ValidateLength(*f.criticality, "criticality_level", 0, 50))
	}
	if f.numTeamMembers != nil && *f.numTeamMembers < 0 {
		errs.add("num_team_members", "num_team_members must not be negative")
	}
	if f.rto != nil && *f.rto < 0 {
		errs.add("rto", "rto must not be negative")
	}
	if f.rpo != nil && *f.rpo < 0 {
		errs.add("rpo", "rpo must not be negative")
	}
}

func (s *ProcessService) Create(ctx context.Context, actor permission.Principal, in ProcessCreate) (*models.Process, error) {
	proc := models.Process{
		OrganizationID:   actor.OrganizationID,
		DepartmentID:     in.DepartmentID,
		Name:             strings.TrimSpace(in.Name),
		Description:      strings.TrimSpace(in.Description),
		ProcessOwnerID:   in.ProcessOwnerID,
		SLA:              strings.TrimSpace(in.SLA),
		TAT:              strings.TrimSpace(in.TAT),
		Seasonality:      strings.TrimSpace(in.Seasonality),
		PeakTimes:        strings.TrimSpace(in.PeakTimes),
		Frequency:        strings.TrimSpace(in.Frequency),
		NumTeamMembers:   in.NumTeamMembers,
		RTO:              in.RTO,
		RPO:              in.RPO,
		CriticalityLevel: strings.TrimSpace(in.CriticalityLevel),
		IsActive:         in.IsActive == nil || *in.IsActive,
		CreatedByID:      actorRef(actor),
		UpdatedByID:      actorRef(actor),
	}

	errs := fieldErrors{}
	validateProcess(errs, processFields{
		name: &proc.Name, sla: &proc.SLA, tat: &proc.TAT, seasonality: &proc.Seasonality,
		peakTimes: &proc.PeakTimes, frequency: &proc.Frequency, criticality: &proc.CriticalityLevel,
		numTeamMembers: in.NumTeamMembers, rto: in.RTO, rpo: in.RPO,
	})
	if in.DepartmentID == uuid.Nil {
		errs.add("department_id", "department_id is required")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReference(tx, &models.Department{}, &in.DepartmentID, actor.OrganizationID, "department id"); err != nil {
			return err
		}
		if err := checkProcessNameFree(tx, in.DepartmentID, proc.Name, uuid.Nil); err != nil {
			return err
		}
		if err := checkActiveUser(tx, in.ProcessOwnerID, actor.OrganizationID, "process owner id"); err != nil {
			return err
		}
		locations, err := resolveDepartmentLocations(tx, actor.OrganizationID, in.DepartmentID, in.LocationIDs)
		if err != nil {
			return err
		}
		applications, err := resolveScoped[models.Application](tx, actor.OrganizationID, in.ApplicationIDs, "application ids")
		if err != nil {
			return err
		}
		dependencies, err := resolveScoped[models.Process](tx, actor.OrganizationID, in.DependencyIDs, "dependency ids")
		if err != nil {
			return err
		}

		if err := tx.Omit("Locations", "Applications", "Dependencies").Create(&proc).Error; err != nil {
			return translateWriteError(err, "Process with name '"+proc.Name+"' already exists in this department")
		}
		return replaceProcessLinks(tx, &proc, &locations, &applications, &dependencies)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"process_id": proc.ID, "department_id": proc.DepartmentID, "actor_id": actor.UserID}).Info("process created")
	return s.Get(ctx, actor, proc.ID)
}

func (s *ProcessService) Get(ctx context.Context, actor permission.Principal, id uuid.UUID) (*models.Process, error) {
	return findVisible[models.Process](ctx, s.db, actor, id, "Process", processPreloads...)
}

func (s *ProcessService) List(ctx context.Context, actor permission.Principal, params query.FilterParams) (*Page[models.Process], error) {
	return listScoped[models.Process](ctx, s.db, actor, params, processListSpec)
}

// Update applies the present fields. Moving a process to another department
// requires its locations to belong to the new department.
func (s *ProcessService) Update(ctx context.Context, actor permission.Principal, id uuid.UUID, in ProcessUpdate) (*models.Process, error) {
	f := processFields{
		name: trimPtr(in.Name), sla: trimPtr(in.SLA), tat: trimPtr(in.TAT), seasonality: trimPtr(in.Seasonality),
		peakTimes: trimPtr(in.PeakTimes), frequency: trimPtr(in.Frequency), criticality: trimPtr(in.CriticalityLevel),
		numTeamMembers: in.NumTeamMembers, rto: in.RTO, rpo: in.RPO,
	}

	errs := fieldErrors{}
	validateProcess(errs, f)
	if in.DependencyIDs != nil {
		for _, dep := range *in.DependencyIDs {
			if dep == id {
				errs.add("dependency_ids", "a process cannot depend on itself")
			}
		}
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		proc, err := findVisible[models.Process](ctx, tx, actor, id, "Process")
		if err != nil {
			return err
		}

		updates := map[string]interface{}{"updated_by_id": actor.UserID}
		departmentID, name := proc.DepartmentID, proc.Name
		if in.DepartmentID != nil && *in.DepartmentID != proc.DepartmentID {
			if err := checkReference(tx, &models.Department{}, in.DepartmentID, proc.OrganizationID, "department id"); err != nil {
				return err
			}
			departmentID = *in.DepartmentID
			updates["department_id"] = departmentID
		}
		if f.name != nil {
			name = *f.name
			updates["name"] = name
		}
		if name != proc.Name || departmentID != proc.DepartmentID {
			if err := checkProcessNameFree(tx, departmentID, name, proc.ID); err != nil {
				return err
			}
		}
		if in.ProcessOwnerID.Set {
			if err := checkActiveUser(tx, in.ProcessOwnerID.Value, proc.OrganizationID, "process owner id"); err != nil {
				return err
			}
			if in.ProcessOwnerID.Value == nil {
				updates["process_owner_id"] = nil
			} else {
				updates["process_owner_id"] = *in.ProcessOwnerID.Value
			}
		}
		setString(updates, "description", in.Description)
		for column, value := range map[string]*string{
			"sla":               f.sla,
			"tat":               f.tat,
			"seasonality":       f.seasonality,
			"peak_times":        f.peakTimes,
			"frequency":         f.frequency,
			"criticality_level": f.criticality,
		} {
			if value != nil {
				updates[column] = *value
			}
		}
		if in.NumTeamMembers != nil {
			updates["num_team_members"] = *in.NumTeamMembers
		}
		if in.RTO != nil {
			updates["rto"] = *in.RTO
		}
		if in.RPO != nil {
			updates["rpo"] = *in.RPO
		}
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
		}

		var locations *[]models.Location
		switch {
		case in.LocationIDs != nil:
			resolved, err := resolveDepartmentLocations(tx, proc.OrganizationID, departmentID, *in.LocationIDs)
			if err != nil {
				return err
			}
			locations = &resolved
		case departmentID != proc.DepartmentID:
			var current []uuid.UUID
			if err := tx.Table("process_locations").Where("process_id = ?", proc.ID).Pluck("location_id", &current).Error; err != nil {
				return err
			}
			if _, err := resolveDepartmentLocations(tx, proc.OrganizationID, departmentID, current); err != nil {
				return err
			}
		}
		var applications *[]models.Application
		var dependencies *[]models.Process
		if in.ApplicationIDs != nil {
			resolved, err := resolveScoped[models.Application](tx, proc.OrganizationID, *in.ApplicationIDs, "application ids")
			if err != nil {
				return err
			}
			applications = &resolved
		}
		if in.DependencyIDs != nil {
			resolved, err := resolveScoped[models.Process](tx, proc.OrganizationID, *in.DependencyIDs, "dependency ids")
			if err != nil {
				return err
			}
			dependencies = &resolved
		}

		if err := tx.Model(proc).Omit("Locations", "Applications", "Dependencies").Updates(updates).Error; err != nil {
			return translateWriteError(err, "Process name already exists in this department")
		}
		return replaceProcessLinks(tx, proc, locations, applications, dependencies)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Delete deactivates the process.
func (s *ProcessService) Delete(ctx context.Context, actor permission.Principal, id uuid.UUID) error {
	proc, err := findVisible[models.Process](ctx, s.db, actor, id, "Process")
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Model(proc).Updates(map[string]interface{}{
		"is_active":     false,
		"updated_by_id": actor.UserID,
	}).Error
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"process_id": id, "actor_id": actor.UserID}).Info("process deactivated")
	return nil
}

// replaceProcessLinks rewrites each link set that is not nil.
func replaceProcessLinks(tx *gorm.DB, proc *models.Process, locations *[]models.Location, applications *[]models.Application, dependencies *[]models.Process) error {
	if locations != nil {
		if err := tx.Model(proc).Association("Locations").Replace(*locations); err != nil {
			return err
		}
	}
	if applications != nil {
		if err := tx.Model(proc).Association("Applications").Replace(*applications); err != nil {
			return err
		}
	}
	if dependencies != nil {
		if err := tx.Model(proc).Association("Dependencies").Replace(*dependencies); err != nil {
			return err
		}
	}
	return nil
}

func checkProcessNameFree(tx *gorm.DB, departmentID uuid.UUID, name string, excludeID uuid.UUID) error {
	var count int64
	q := tx.Model(&models.Process{}).Where("department_id = ? AND name = ?", departmentID, name)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Conflict("Process with name '%s' already exists in this department", name)
	}
	return nil
}

// checkActiveUser requires id, when set, to be an active user of the organization.
func checkActiveUser(tx *gorm.DB, id *uuid.UUID, organizationID uuid.UUID, what string) error {
	if id == nil {
		return nil
	}
	var count int64
	err := tx.Model(&models.User{}).
		Where("id = ? AND organization_id = ? AND is_active = ?", *id, organizationID, true).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return apperrors.InvalidReferences(what, []uuid.UUID{*id})
	}
	return nil
}

// resolveScoped loads the rows for ids, reporting every id outside the organization.
func resolveScoped[T any](tx *gorm.DB, organizationID uuid.UUID, ids []uuid.UUID, what string) ([]T, error) {
	var model T
	missing, err := missingIDs(tx, &model, ids, &organizationID)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, apperrors.InvalidReferences(what, missing)
	}
	rows := make([]T, 0, len(ids))
	unique := uniqueIDs(ids)
	if len(unique) == 0 {
		return rows, nil
	}
	if err := tx.Where("id IN ?", unique).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// resolveDepartmentLocations loads the locations for ids, which must all be
// assigned to the department.
func resolveDepartmentLocations(tx *gorm.DB, organizationID, departmentID uuid.UUID, ids []uuid.UUID) ([]models.Location, error) {
	locations, err := resolveLocations(tx, organizationID, ids)
	if err != nil || len(locations) == 0 {
		return locations, err
	}

	var assigned []uuid.UUID
	if err := tx.Table("department_locations").Where("department_id = ?", departmentID).Pluck("location_id", &assigned).Error; err != nil {
		return nil, err
	}
	allowed := make(map[uuid.UUID]bool, len(assigned))
	for _, id := range assigned {
		allowed[id] = true
	}
	var outside []uuid.UUID
	for _, id := range uniqueIDs(ids) {
		if !allowed[id] {
			outside = append(outside, id)
		}
	}
	if len(outside) > 0 {
		verr := apperrors.InvalidReferences("location ids", outside)
		verr.Message = "locations are not assigned to the department"
		return nil, verr
	}
	return locations, nil
}
