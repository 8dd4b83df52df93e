package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bcm-backend/shared/database/models"
	"bcm-backend/shared/utils/auth"
	"bcm-backend/shared/utils/permission"
	"bcm-backend/shared/utils/query"
)

type BIATimeframeCreate struct {
	TimeframeName string `json:"timeframe_name" binding:"required"`
	SequenceOrder int    `json:"sequence_order"`
	Description   string `json:"description"`
	IsActive      *bool  `json:"is_active"`
}

type BIATimeframeUpdate struct {
	TimeframeName *string `json:"timeframe_name"`
	SequenceOrder *int    `json:"sequence_order"`
	Description   *string `json:"description"`
	IsActive      *bool   `json:"is_active"`
}

var biaTimeframeListSpec = query.ListSpec{
	Filters: map[string]string{"is_active": "is_active"},
	SortFields: map[string]string{
		"sequence_order": "sequence_order",
		"timeframe_name": "timeframe_name",
		"created_at":     "created_at",
	},
	SearchFields: []string{"timeframe_name", "description"},
	DefaultSort:  "sequence_order ASC",
}

type BIATimeframeService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewBIATimeframeService(db *gorm.DB, log logrus.FieldLogger) *BIATimeframeService {
	return &BIATimeframeService{db: db, log: log}
}

func (s *BIATimeframeService) Create(ctx context.Context, actor permission.Principal, in BIATimeframeCreate) (*models.BIATimeframe, error) {
	name := strings.TrimSpace(in.TimeframeName)

	errs := fieldErrors{}
	errs.check("timeframe_name", auth.ValidateLength(name, "timeframe_name", 1, 100))
	if in.SequenceOrder < 0 {
		errs.add("sequence_order", "sequence_order must not be negative")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	timeframe := models.BIATimeframe{
		OrganizationID: actor.OrganizationID,
		TimeframeName:  name,
		SequenceOrder:  in.SequenceOrder,
		Description:    strings.TrimSpace(in.Description),
		IsActive:       in.IsActive == nil || *in.IsActive,
		CreatedByID:    actorRef(actor),
		UpdatedByID:    actorRef(actor),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkNameFree(tx, &models.BIATimeframe{}, actor.OrganizationID, "timeframe_name", name, uuid.Nil, "BIA timeframe"); err != nil {
			return err
		}
		return translateWriteError(tx.Create(&timeframe).Error, "BIA timeframe with name '"+name+"' already exists in this organization")
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"bia_timeframe_id": timeframe.ID, "actor_id": actor.UserID}).Info("bia timeframe created")
	return &timeframe, nil
}

func (s *BIATimeframeService) Get(ctx context.Context, actor permission.Principal, id uuid.UUID) (*models.BIATimeframe, error) {
	return findVisible[models.BIATimeframe](ctx, s.db, actor, id, "BIA timeframe")
}

func (s *BIATimeframeService) List(ctx context.Context, actor permission.Principal, params query.FilterParams) (*Page[models.BIATimeframe], error) {
	return listScoped[models.BIATimeframe](ctx, s.db, actor, params, biaTimeframeListSpec)
}

func (s *BIATimeframeService) Update(ctx context.Context, actor permission.Principal, id uuid.UUID, in BIATimeframeUpdate) (*models.BIATimeframe, error) {
	name := trimPtr(in.TimeframeName)

	errs := fieldErrors{}
	if name != nil {
		errs.check("timeframe_name", auth.ValidateLength(*name, "timeframe_name", 1, 100))
	}
	if in.SequenceOrder != nil && *in.SequenceOrder < 0 {
		errs.add("sequence_order", "sequence_order must not be negative")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		timeframe, err := findVisible[models.BIATimeframe](ctx, tx, actor, id, "BIA timeframe")
		if err != nil {
			return err
		}

		updates := map[string]interface{}{"updated_by_id": actor.UserID}
		if name != nil && *name != timeframe.TimeframeName {
			if err := checkNameFree(tx, &models.BIATimeframe{}, timeframe.OrganizationID, "timeframe_name", *name, timeframe.ID, "BIA timeframe"); err != nil {
				return err
			}
			updates["timeframe_name"] = *name
		}
		if in.SequenceOrder != nil {
			updates["sequence_order"] = *in.SequenceOrder
		}
		setString(updates, "description", in.Description)
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
		}
		return translateWriteError(tx.Model(timeframe).Updates(updates).Error, "BIA timeframe name already exists in this organization")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Delete deactivates the timeframe.
func (s *BIATimeframeService) Delete(ctx context.Context, actor permission.Principal, id uuid.UUID) error {
	timeframe, err := findVisible[models.BIATimeframe](ctx, s.db, actor, id, "BIA timeframe")
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(timeframe).Updates(map[string]interface{}{
		"is_active":     false,
		"updated_by_id": actor.UserID,
	}).Error
}
