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

type ApplicationCreate struct {
	Name               string     `json:"name" binding:"required"`
	Description        string     `json:"description"`
	ApplicationType    string     `json:"application_type"`
	HostingEnvironment string     `json:"hosting_environment"`
	Status             string     `json:"status"`
	Version            string     `json:"version"`
	VendorID           *uuid.UUID `json:"vendor_id"`
	Criticality        string     `json:"criticality"`
	Workarounds        string     `json:"workarounds"`
	DerivedRTO         string     `json:"derived_rto"`
	AppOwnerID         *uuid.UUID `json:"app_owner_id"`
	IsActive           *bool      `json:"is_active"`
}

type ApplicationUpdate struct {
	Name               *string    `json:"name"`
	Description        *string    `json:"description"`
	ApplicationType    *string    `json:"application_type"`
	HostingEnvironment *string    `json:"hosting_environment"`
	Status             *string    `json:"status"`
	Version            *string    `json:"version"`
	VendorID           *uuid.UUID `json:"vendor_id"`
	Criticality        *string    `json:"criticality"`
	Workarounds        *string    `json:"workarounds"`
	DerivedRTO         *string    `json:"derived_rto"`
	AppOwnerID         *uuid.UUID `json:"app_owner_id"`
	IsActive           *bool      `json:"is_active"`
}

var applicationListSpec = query.ListSpec{
	Filters: map[string]string{
		"is_active":        "is_active",
		"criticality":      "criticality",
		"vendor_id":        "vendor_id",
		"app_owner_id":     "app_owner_id",
		"application_type": "application_type",
		"status":           "status",
	},
	SortFields: map[string]string{
		"name":        "name",
		"criticality": "criticality",
		"status":      "status",
		"created_at":  "created_at",
	},
	SearchFields: []string{"name", "description", "application_type"},
	DefaultSort:  "name ASC",
	Preloads:     []string{"Vendor"},
}

type ApplicationService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewApplicationService(db *gorm.DB, log logrus.FieldLogger) *ApplicationService {
	return &ApplicationService{db: db, log: log}
}

func (s *ApplicationService) Create(ctx context.Context, actor permission.Principal, in ApplicationCreate) (*models.Application, error) {
	name := strings.TrimSpace(in.Name)
	criticality := strings.TrimSpace(in.Criticality)

	errs := fieldErrors{}
	errs.check("name", auth.ValidateLength(name, "name", 1, 255))
	if criticality != "" {
		validateCriticality(errs, criticality)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	app := models.Application{
		OrganizationID:     actor.OrganizationID,
		Name:               name,
		Description:        strings.TrimSpace(in.Description),
		ApplicationType:    strings.TrimSpace(in.ApplicationType),
		HostingEnvironment: strings.TrimSpace(in.HostingEnvironment),
		Status:             strings.TrimSpace(in.Status),
		Version:            strings.TrimSpace(in.Version),
		VendorID:           in.VendorID,
		Criticality:        criticality,
		Workarounds:        strings.TrimSpace(in.Workarounds),
		DerivedRTO:         strings.TrimSpace(in.DerivedRTO),
		AppOwnerID:         in.AppOwnerID,
		IsActive:           in.IsActive == nil || *in.IsActive,
		CreatedByID:        actorRef(actor),
		UpdatedByID:        actorRef(actor),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkNameFree(tx, &models.Application{}, actor.OrganizationID, "name", name, uuid.Nil, "Application"); err != nil {
			return err
		}
		if err := checkReference(tx, &models.Vendor{}, in.VendorID, actor.OrganizationID, "vendor id"); err != nil {
			return err
		}
		if err := checkReference(tx, &models.User{}, in.AppOwnerID, actor.OrganizationID, "app owner id"); err != nil {
			return err
		}
		return translateWriteError(tx.Omit("Vendor").Create(&app).Error, "Application with name '"+name+"' already exists in this organization")
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"application_id": app.ID, "actor_id": actor.UserID}).Info("application created")
	return s.Get(ctx, actor, app.ID)
}

func (s *ApplicationService) Get(ctx context.Context, actor permission.Principal, id uuid.UUID) (*models.Application, error) {
	return findVisible[models.Application](ctx, s.db, actor, id, "Application", "Vendor")
}

func (s *ApplicationService) List(ctx context.Context, actor permission.Principal, params query.FilterParams) (*Page[models.Application], error) {
	return listScoped[models.Application](ctx, s.db, actor, params, applicationListSpec)
}

func (s *ApplicationService) Update(ctx context.Context, actor permission.Principal, id uuid.UUID, in ApplicationUpdate) (*models.Application, error) {
	name, criticality := trimPtr(in.Name), trimPtr(in.Criticality)

	errs := fieldErrors{}
	if name != nil {
		errs.check("name", auth.ValidateLength(*name, "name", 1, 255))
	}
	if criticality != nil && *criticality != "" {
		validateCriticality(errs, *criticality)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := findVisible[models.Application](ctx, tx, actor, id, "Application")
		if err != nil {
			return err
		}

		updates := map[string]interface{}{"updated_by_id": actor.UserID}
		if name != nil && *name != app.Name {
			if err := checkNameFree(tx, &models.Application{}, app.OrganizationID, "name", *name, app.ID, "Application"); err != nil {
				return err
			}
			updates["name"] = *name
		}
		if in.VendorID != nil {
			if err := checkReference(tx, &models.Vendor{}, in.VendorID, app.OrganizationID, "vendor id"); err != nil {
				return err
			}
			updates["vendor_id"] = *in.VendorID
		}
		if in.AppOwnerID != nil {
			if err := checkReference(tx, &models.User{}, in.AppOwnerID, app.OrganizationID, "app owner id"); err != nil {
				return err
			}
			updates["app_owner_id"] = *in.AppOwnerID
		}
		setString(updates, "description", in.Description)
		setString(updates, "application_type", in.ApplicationType)
		setString(updates, "hosting_environment", in.HostingEnvironment)
		setString(updates, "status", in.Status)
		setString(updates, "version", in.Version)
		setString(updates, "workarounds", in.Workarounds)
		setString(updates, "derived_rto", in.DerivedRTO)
		if criticality != nil {
			updates["criticality"] = *criticality
		}
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
		}
		return translateWriteError(tx.Model(app).Omit("Vendor").Updates(updates).Error, "Application name already exists in this organization")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Delete deactivates the application.
func (s *ApplicationService) Delete(ctx context.Context, actor permission.Principal, id uuid.UUID) error {
	app, err := findVisible[models.Application](ctx, s.db, actor, id, "Application")
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Model(app).Updates(map[string]interface{}{
		"is_active":     false,
		"updated_by_id": actor.UserID,
	}).Error
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"application_id": id, "actor_id": actor.UserID}).Info("application deactivated")
	return nil
}
