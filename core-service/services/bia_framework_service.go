package services

import (
	"context"
	"fmt"
	"math"
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

const weightageTolerance = 0.01

type FrameworkParameterInput struct {
	CriterionID uuid.UUID `json:"criterion_id"`
	Weightage   float64   `json:"weightage"`
}

type FrameworkRTOInput struct {
	DisplayText  string `json:"display_text"`
	ValueInHours int    `json:"value_in_hours"`
}

type BIAFrameworkCreate struct {
	Name        string                    `json:"name" binding:"required"`
	Description string                    `json:"description"`
	Formula     string                    `json:"formula"`
	Threshold   *float64                  `json:"threshold"`
	IsActive    *bool                     `json:"is_active"`
	Parameters  []FrameworkParameterInput `json:"parameters"`
	RTOs        []FrameworkRTOInput       `json:"rtos"`
}

// BIAFrameworkUpdate replaces parameters or rtos wholesale when supplied.
type BIAFrameworkUpdate struct {
	Name        *string                    `json:"name"`
	Description *string                    `json:"description"`
	Formula     *string                    `json:"formula"`
	Threshold   *float64                   `json:"threshold"`
	IsActive    *bool                      `json:"is_active"`
	Parameters  *[]FrameworkParameterInput `json:"parameters"`
	RTOs        *[]FrameworkRTOInput       `json:"rtos"`
}

var biaFrameworkListSpec = query.ListSpec{
	Filters:      map[string]string{"is_active": "is_active", "formula": "formula"},
	SortFields:   map[string]string{"name": "name", "created_at": "created_at"},
	SearchFields: []string{"name", "description"},
	DefaultSort:  "name ASC",
	Preloads:     []string{"Parameters", "RTOs"},
}

type BIAFrameworkService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewBIAFrameworkService(db *gorm.DB, log logrus.FieldLogger) *BIAFrameworkService {
	return &BIAFrameworkService{db: db, log: log}
}

// validateParameters checks each weightage is in (0,100], the total is 100 and no criterion repeats.
func validateParameters(errs fieldErrors, params []FrameworkParameterInput) {
	if len(params) == 0 {
		errs.add("parameters", "at least one parameter is required")
		return
	}
	seen := make(map[uuid.UUID]bool, len(params))
	var total float64
	for i, p := range params {
		if p.Weightage <= 0 || p.Weightage > 100 {
			errs.add(fmt.Sprintf("parameters[%d].weightage", i), "weightage must be greater than 0 and at most 100")
		}
		if seen[p.CriterionID] {
			errs.add(fmt.Sprintf("parameters[%d].criterion_id", i), "criterion "+p.CriterionID.String()+" is listed more than once")
		}
		seen[p.CriterionID] = true
		total += p.Weightage
	}
	if math.Abs(total-100) > weightageTolerance {
		errs.add("parameters", fmt.Sprintf("the sum of all parameter weightages must be 100, got %g", total))
	}
}

func validateRTOs(errs fieldErrors, rtos []FrameworkRTOInput) {
	for i, r := range rtos {
		field := fmt.Sprintf("rtos[%d]", i)
		if err := auth.ValidateLength(strings.TrimSpace(r.DisplayText), "display_text", 1, 100); err != nil {
			errs.add(field+".display_text", err.Error())
		}
		if r.ValueInHours < 0 {
			errs.add(field+".value_in_hours", "value_in_hours must not be negative")
		}
	}
}

func normalizeFormula(formula string) string {
	f := strings.ToUpper(strings.TrimSpace(formula))
	if f == "" {
		return models.FormulaWeightedAverage
	}
	return f
}

func validateFormula(errs fieldErrors, formula string) {
	if formula != models.FormulaWeightedAverage {
		errs.add("formula", "formula must be "+models.FormulaWeightedAverage)
	}
}

// checkCriteria fails with every criterion id that is not a criterion of the organization.
func checkCriteria(tx *gorm.DB, organizationID uuid.UUID, params []FrameworkParameterInput) error {
	ids := make([]uuid.UUID, len(params))
	for i, p := range params {
		ids[i] = p.CriterionID
	}
	missing, err := missingIDs(tx, &models.BIAImpactCriterion{}, ids, &organizationID)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperrors.InvalidReferences("criterion ids", missing)
	}
	return nil
}

func writeParameters(tx *gorm.DB, frameworkID uuid.UUID, in []FrameworkParameterInput) error {
	if len(in) == 0 {
		return nil
	}
	rows := make([]models.BIAFrameworkParameter, len(in))
	for i, p := range in {
		rows[i] = models.BIAFrameworkParameter{FrameworkID: frameworkID, CriterionID: p.CriterionID, Weightage: p.Weightage}
	}
	return tx.Create(&rows).Error
}

func writeRTOs(tx *gorm.DB, frameworkID uuid.UUID, in []FrameworkRTOInput) error {
	if len(in) == 0 {
		return nil
	}
	rows := make([]models.BIAFrameworkRTO, len(in))
	for i, r := range in {
		rows[i] = models.BIAFrameworkRTO{FrameworkID: frameworkID, DisplayText: strings.TrimSpace(r.DisplayText), ValueInHours: r.ValueInHours}
	}
	return tx.Create(&rows).Error
}

// Create stores a framework with its weighted parameters and RTO options.
func (s *BIAFrameworkService) Create(ctx context.Context, actor permission.Principal, in BIAFrameworkCreate) (*models.BIAFramework, error) {
	name := strings.TrimSpace(in.Name)
	formula := normalizeFormula(in.Formula)

	errs := fieldErrors{}
	errs.check("name", auth.ValidateLength(name, "name", 1, 255))
	validateFormula(errs, formula)
	validateParameters(errs, in.Parameters)
	validateRTOs(errs, in.RTOs)
	if err := errs.err(); err != nil {
		return nil, err
	}

	framework := models.BIAFramework{
		OrganizationID: actor.OrganizationID,
		Name:           name,
		Description:    strings.TrimSpace(in.Description),
		Formula:        formula,
		Threshold:      in.Threshold,
		IsActive:       in.IsActive == nil || *in.IsActive,
		CreatedByID:    actorRef(actor),
		UpdatedByID:    actorRef(actor),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkNameFree(tx, &models.BIAFramework{}, actor.OrganizationID, "name", name, uuid.Nil, "BIA framework"); err != nil {
			return err
		}
		if err := checkCriteria(tx, actor.OrganizationID, in.Parameters); err != nil {
			return err
		}
		if err := tx.Omit("Parameters", "RTOs").Create(&framework).Error; err != nil {
			return translateWriteError(err, "BIA framework with name '"+name+"' already exists in this organization")
		}
		if err := writeParameters(tx, framework.ID, in.Parameters); err != nil {
			return err
		}
		return writeRTOs(tx, framework.ID, in.RTOs)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"bia_framework_id": framework.ID, "actor_id": actor.UserID}).Info("bia framework created")
	return s.Get(ctx, actor, framework.ID)
}

func (s *BIAFrameworkService) Get(ctx context.Context, actor permission.Principal, id uuid.UUID) (*models.BIAFramework, error) {
	return findVisible[models.BIAFramework](ctx, s.db, actor, id, "BIA framework", "Parameters", "RTOs")
}

func (s *BIAFrameworkService) List(ctx context.Context, actor permission.Principal, params query.FilterParams) (*Page[models.BIAFramework], error) {
	return listScoped[models.BIAFramework](ctx, s.db, actor, params, biaFrameworkListSpec)
}

func (s *BIAFrameworkService) Update(ctx context.Context, actor permission.Principal, id uuid.UUID, in BIAFrameworkUpdate) (*models.BIAFramework, error) {
	name := trimPtr(in.Name)
	var formula *string
	if in.Formula != nil {
		f := normalizeFormula(*in.Formula)
		formula = &f
	}

	errs := fieldErrors{}
	if name != nil {
		errs.check("name", auth.ValidateLength(*name, "name", 1, 255))
	}
	if formula != nil {
		validateFormula(errs, *formula)
	}
	if in.Parameters != nil {
		validateParameters(errs, *in.Parameters)
	}
	if in.RTOs != nil {
		validateRTOs(errs, *in.RTOs)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		framework, err := findVisible[models.BIAFramework](ctx, tx, actor, id, "BIA framework")
		if err != nil {
			return err
		}

		updates := map[string]interface{}{"updated_by_id": actor.UserID}
		if name != nil && *name != framework.Name {
			if err := checkNameFree(tx, &models.BIAFramework{}, framework.OrganizationID, "name", *name, framework.ID, "BIA framework"); err != nil {
				return err
			}
			updates["name"] = *name
		}
		setString(updates, "description", in.Description)
		if formula != nil {
			updates["formula"] = *formula
		}
		if in.Threshold != nil {
			updates["threshold"] = *in.Threshold
		}
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
		}
		if err := tx.Model(framework).Omit("Parameters", "RTOs").Updates(updates).Error; err != nil {
			return translateWriteError(err, "BIA framework name already exists in this organization")
		}

		if in.Parameters != nil {
			if err := checkCriteria(tx, framework.OrganizationID, *in.Parameters); err != nil {
				return err
			}
			if err := tx.Where("framework_id = ?", framework.ID).Delete(&models.BIAFrameworkParameter{}).Error; err != nil {
				return err
			}
			if err := writeParameters(tx, framework.ID, *in.Parameters); err != nil {
				return err
			}
		}
		if in.RTOs != nil {
			if err := tx.Where("framework_id = ?", framework.ID).Delete(&models.BIAFrameworkRTO{}).Error; err != nil {
				return err
			}
			if err := writeRTOs(tx, framework.ID, *in.RTOs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Delete removes the framework with its parameters and RTO options.
func (s *BIAFrameworkService) Delete(ctx context.Context, actor permission.Principal, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		framework, err := findVisible[models.BIAFramework](ctx, tx, actor, id, "BIA framework")
		if err != nil {
			return err
		}
		if err := tx.Where("framework_id = ?", framework.ID).Delete(&models.BIAFrameworkParameter{}).Error; err != nil {
			return err
		}
		if err := tx.Where("framework_id = ?", framework.ID).Delete(&models.BIAFrameworkRTO{}).Error; err != nil {
			return err
		}
		return tx.Delete(framework).Error
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"bia_framework_id": id, "actor_id": actor.UserID}).Info("bia framework deleted")
	return nil
}
