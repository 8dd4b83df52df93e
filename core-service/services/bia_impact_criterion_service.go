package services

import (
	"context"
	"fmt"
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

type CriterionLevelInput struct {
	LevelName                   string   `json:"level_name"`
	LevelValueMin               *float64 `json:"level_value_min"`
	LevelValueMax               *float64 `json:"level_value_max"`
	QuantitativeLevelDescriptor string   `json:"quantitative_level_descriptor"`
	Score                       int      `json:"score"`
	SequenceOrder               int      `json:"sequence_order"`
}

type BIAImpactCriterionCreate struct {
	BIACategoryID uuid.UUID             `json:"bia_category_id" binding:"required"`
	Name          string                `json:"name" binding:"required"`
	Description   string                `json:"description"`
	RatingType    string                `json:"rating_type" binding:"required"`
	IsActive      *bool                 `json:"is_active"`
	Levels        []CriterionLevelInput `json:"levels"`
}

// BIAImpactCriterionUpdate replaces the level set when Levels is supplied.
type BIAImpactCriterionUpdate struct {
	BIACategoryID *uuid.UUID             `json:"bia_category_id"`
	Name          *string                `json:"name"`
	Description   *string                `json:"description"`
	RatingType    *string                `json:"rating_type"`
	IsActive      *bool                  `json:"is_active"`
	Levels        *[]CriterionLevelInput `json:"levels"`
}

var biaCriterionListSpec = query.ListSpec{
	Filters: map[string]string{
		"is_active":       "is_active",
		"rating_type":     "rating_type",
		"bia_category_id": "bia_category_id",
	},
	SortFields:   map[string]string{"name": "name", "created_at": "created_at"},
	SearchFields: []string{"name", "description"},
	DefaultSort:  "name ASC",
	Preloads:     []string{"Levels"},
}

type BIAImpactCriterionService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewBIAImpactCriterionService(db *gorm.DB, log logrus.FieldLogger) *BIAImpactCriterionService {
	return &BIAImpactCriterionService{db: db, log: log}
}

func validRatingType(t string) bool {
	return t == models.RatingTypeQualitative || t == models.RatingTypeQuantitative
}

// validateLevels checks the level list against the rating type.
func validateLevels(errs fieldErrors, ratingType string, levels []CriterionLevelInput) {
	if len(levels) == 0 {
		errs.add("levels", "at least one impact criterion level is required")
		return
	}
	for i, l := range levels {
		field := fmt.Sprintf("levels[%d]", i)
		if err := auth.ValidateLength(strings.TrimSpace(l.LevelName), "level_name", 1, 100); err != nil {
			errs.add(field+".level_name", err.Error())
		}
		if err := auth.ValidateLength(l.QuantitativeLevelDescriptor, "quantitative_level_descriptor", 0, 255); err != nil {
			errs.add(field+".quantitative_level_descriptor", err.Error())
		}
		if ratingType != models.RatingTypeQuantitative {
			continue
		}
		if l.LevelValueMin == nil && l.LevelValueMax == nil {
			errs.add(field, "quantitative levels need level_value_min or level_value_max")
		}
		if l.LevelValueMin != nil && l.LevelValueMax != nil && *l.LevelValueMin > *l.LevelValueMax {
			errs.add(field, "level_value_min must not exceed level_value_max")
		}
	}
}

func buildLevels(criterionID uuid.UUID, in []CriterionLevelInput) []models.BIAImpactCriterionLevel {
	levels := make([]models.BIAImpactCriterionLevel, len(in))
	for i, l := range in {
		levels[i] = models.BIAImpactCriterionLevel{
			CriterionID:                 criterionID,
			LevelName:                   strings.TrimSpace(l.LevelName),
			LevelValueMin:               l.LevelValueMin,
			LevelValueMax:               l.LevelValueMax,
			QuantitativeLevelDescriptor: strings.TrimSpace(l.QuantitativeLevelDescriptor),
			Score:                       l.Score,
			SequenceOrder:               l.SequenceOrder,
		}
	}
	return levels
}

func (s *BIAImpactCriterionService) Create(ctx context.Context, actor permission.Principal, in BIAImpactCriterionCreate) (*models.BIAImpactCriterion, error) {
	name := strings.TrimSpace(in.Name)
	ratingType := strings.ToUpper(strings.TrimSpace(in.RatingType))

	errs := fieldErrors{}
	errs.check("name", auth.ValidateLength(name, "name", 1, 255))
	if !validRatingType(ratingType) {
		errs.add("rating_type", "rating_type must be QUALITATIVE or QUANTITATIVE")
	}
	validateLevels(errs, ratingType, in.Levels)
	if err := errs.err(); err != nil {
		return nil, err
	}

	criterion := models.BIAImpactCriterion{
		OrganizationID: actor.OrganizationID,
		BIACategoryID:  in.BIACategoryID,
		Name:           name,
		Description:    strings.TrimSpace(in.Description),
		RatingType:     ratingType,
		IsActive:       in.IsActive == nil || *in.IsActive,
		CreatedByID:    actorRef(actor),
		UpdatedByID:    actorRef(actor),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReference(tx, &models.BIACategory{}, &in.BIACategoryID, actor.OrganizationID, "bia category id"); err != nil {
			return err
		}
		if err := tx.Omit("Levels").Create(&criterion).Error; err != nil {
			return err
		}
		levels := buildLevels(criterion.ID, in.Levels)
		return tx.Create(&levels).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"bia_impact_criterion_id": criterion.ID, "actor_id": actor.UserID}).Info("bia impact criterion created")
	return s.Get(ctx, actor, criterion.ID)
}

func (s *BIAImpactCriterionService) Get(ctx context.Context, actor permission.Principal, id uuid.UUID) (*models.BIAImpactCriterion, error) {
	c, err := findVisible[models.BIAImpactCriterion](ctx, s.db, actor, id, "BIA impact criterion")
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Where("criterion_id = ?", c.ID).Order("sequence_order ASC").Find(&c.Levels).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (s *BIAImpactCriterionService) List(ctx context.Context, actor permission.Principal, params query.FilterParams) (*Page[models.BIAImpactCriterion], error) {
	return listScoped[models.BIAImpactCriterion](ctx, s.db, actor, params, biaCriterionListSpec)
}

func (s *BIAImpactCriterionService) Update(ctx context.Context, actor permission.Principal, id uuid.UUID, in BIAImpactCriterionUpdate) (*models.BIAImpactCriterion, error) {
	name := trimPtr(in.Name)
	var ratingType *string
	if in.RatingType != nil {
		rt := strings.ToUpper(strings.TrimSpace(*in.RatingType))
		ratingType = &rt
	}

	errs := fieldErrors{}
	if name != nil {
		errs.check("name", auth.ValidateLength(*name, "name", 1, 255))
	}
	if ratingType != nil && !validRatingType(*ratingType) {
		errs.add("rating_type", "rating_type must be QUALITATIVE or QUANTITATIVE")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		criterion, err := findVisible[models.BIAImpactCriterion](ctx, tx, actor, id, "BIA impact criterion")
		if err != nil {
			return err
		}

		effectiveType := criterion.RatingType
		if ratingType != nil {
			effectiveType = *ratingType
		}
		if in.Levels != nil {
			errs := fieldErrors{}
			validateLevels(errs, effectiveType, *in.Levels)
			if err := errs.err(); err != nil {
				return err
			}
		} else if ratingType != nil && *ratingType != criterion.RatingType {
			return apperrors.Validation("levels must be supplied when rating_type changes")
		}

		updates := map[string]interface{}{"updated_by_id": actor.UserID}
		if in.BIACategoryID != nil {
			if err := checkReference(tx, &models.BIACategory{}, in.BIACategoryID, criterion.OrganizationID, "bia category id"); err != nil {
				return err
			}
			updates["bia_category_id"] = *in.BIACategoryID
		}
		if name != nil {
			updates["name"] = *name
		}
		setString(updates, "description", in.Description)
		if ratingType != nil {
			updates["rating_type"] = *ratingType
		}
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
		}
		if err := tx.Model(criterion).Omit("Levels").Updates(updates).Error; err != nil {
			return err
		}

		if in.Levels == nil {
			return nil
		}
		if err := tx.Where("criterion_id = ?", criterion.ID).Delete(&models.BIAImpactCriterionLevel{}).Error; err != nil {
			return err
		}
		levels := buildLevels(criterion.ID, *in.Levels)
		return tx.Create(&levels).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Delete removes the criterion and its levels. Criteria weighted in a framework cannot be removed.
func (s *BIAImpactCriterionService) Delete(ctx context.Context, actor permission.Principal, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		criterion, err := findVisible[models.BIAImpactCriterion](ctx, tx, actor, id, "BIA impact criterion")
		if err != nil {
			return err
		}

		var used int64
		if err := tx.Model(&models.BIAFrameworkParameter{}).Where("criterion_id = ?", criterion.ID).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return apperrors.Conflict("BIA impact criterion '%s' is used by %d framework parameter(s)", criterion.Name, used)
		}

		if err := tx.Where("criterion_id = ?", criterion.ID).Delete(&models.BIAImpactCriterionLevel{}).Error; err != nil {
			return err
		}
		return tx.Delete(criterion).Error
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"bia_impact_criterion_id": id, "actor_id": actor.UserID}).Info("bia impact criterion deleted")
	return nil
}
