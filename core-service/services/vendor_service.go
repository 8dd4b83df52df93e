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

type VendorCreate struct {
	Name            string `json:"name" binding:"required"`
	ContactPerson   string `json:"contact_person"`
	ContactEmail    string `json:"contact_email"`
	ContactPhone    string `json:"contact_phone"`
	ServiceProvided string `json:"service_provided"`
	Criticality     string `json:"criticality"`
	IsActive        *bool  `json:"is_active"`
}

type VendorUpdate struct {
	Name            *string `json:"name"`
	ContactPerson   *string `json:"contact_person"`
	ContactEmail    *string `json:"contact_email"`
	ContactPhone    *string `json:"contact_phone"`
	ServiceProvided *string `json:"service_provided"`
	Criticality     *string `json:"criticality"`
	IsActive        *bool   `json:"is_active"`
}

var vendorListSpec = query.ListSpec{
	Filters: map[string]string{
		"is_active":   "is_active",
		"criticality": "criticality",
	},
	SortFields: map[string]string{
		"name":        "name",
		"criticality": "criticality",
		"created_at":  "created_at",
	},
	SearchFields: []string{"name", "contact_person", "service_provided"},
	DefaultSort:  "name ASC",
}

type VendorService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewVendorService(db *gorm.DB, log logrus.FieldLogger) *VendorService {
	return &VendorService{db: db, log: log}
}

func validateCriticality(errs fieldErrors, criticality string) {
	if !models.ValidCriticality(criticality) {
		errs.add("criticality", "criticality must be one of High, Medium, Low")
	}
}

func (s *VendorService) Create(ctx context.Context, actor permission.Principal, in VendorCreate) (*models.Vendor, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.ContactEmail)
	criticality := strings.TrimSpace(in.Criticality)
	if criticality == "" {
		criticality = models.CriticalityMedium
	}

	errs := fieldErrors{}
	errs.check("name", auth.ValidateLength(name, "name", 1, 255))
	if email != "" {
		errs.check("contact_email", auth.ValidateEmail(email))
	}
	errs.check("contact_phone", auth.ValidateLength(in.ContactPhone, "contact_phone", 0, 50))
	validateCriticality(errs, criticality)
	if err := errs.err(); err != nil {
		return nil, err
	}

	vendor := models.Vendor{
		OrganizationID:  actor.OrganizationID,
		Name:            name,
		ContactPerson:   strings.TrimSpace(in.ContactPerson),
		ContactEmail:    email,
		ContactPhone:    strings.TrimSpace(in.ContactPhone),
		ServiceProvided: strings.TrimSpace(in.ServiceProvided),
		Criticality:     criticality,
		IsActive:        in.IsActive == nil || *in.IsActive,
		CreatedByID:     actorRef(actor),
		UpdatedByID:     actorRef(actor),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkNameFree(tx, &models.Vendor{}, actor.OrganizationID, "name", name, uuid.Nil, "Vendor"); err != nil {
			return err
		}
		return translateWriteError(tx.Create(&vendor).Error, "Vendor with name '"+name+"' already exists in this organization")
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"vendor_id": vendor.ID, "actor_id": actor.UserID}).Info("vendor created")
	return &vendor, nil
}

func (s *VendorService) Get(ctx context.Context, actor permission.Principal, id uuid.UUID) (*models.Vendor, error) {
	return findVisible[models.Vendor](ctx, s.db, actor, id, "Vendor")
}

func (s *VendorService) List(ctx context.Context, actor permission.Principal, params query.FilterParams) (*Page[models.Vendor], error) {
	return listScoped[models.Vendor](ctx, s.db, actor, params, vendorListSpec)
}

func (s *VendorService) Update(ctx context.Context, actor permission.Principal, id uuid.UUID, in VendorUpdate) (*models.Vendor, error) {
	name, criticality := trimPtr(in.Name), trimPtr(in.Criticality)

	errs := fieldErrors{}
	if name != nil {
		errs.check("name", auth.ValidateLength(*name, "name", 1, 255))
	}
	var email string
	if in.ContactEmail != nil {
		email = normalizeEmail(*in.ContactEmail)
		if email != "" {
			errs.check("contact_email", auth.ValidateEmail(email))
		}
	}
	if criticality != nil {
		validateCriticality(errs, *criticality)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vendor, err := findVisible[models.Vendor](ctx, tx, actor, id, "Vendor")
		if err != nil {
			return err
		}

		updates := map[string]interface{}{"updated_by_id": actor.UserID}
		if name != nil && *name != vendor.Name {
			if err := checkNameFree(tx, &models.Vendor{}, vendor.OrganizationID, "name", *name, vendor.ID, "Vendor"); err != nil {
				return err
			}
			updates["name"] = *name
		}
		if in.ContactEmail != nil {
			updates["contact_email"] = email
		}
		setString(updates, "contact_person", in.ContactPerson)
		setString(updates, "contact_phone", in.ContactPhone)
		setString(updates, "service_provided", in.ServiceProvided)
		if criticality != nil {
			updates["criticality"] = *criticality
		}
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
		}
		return translateWriteError(tx.Model(vendor).Updates(updates).Error, "Vendor name already exists in this organization")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Delete deactivates the vendor. Applications keep their reference.
func (s *VendorService) Delete(ctx context.Context, actor permission.Principal, id uuid.UUID) error {
	vendor, err := findVisible[models.Vendor](ctx, s.db, actor, id, "Vendor")
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Model(vendor).Updates(map[string]interface{}{
		"is_active":     false,
		"updated_by_id": actor.UserID,
	}).Error
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"vendor_id": id, "actor_id": actor.UserID}).Info("vendor deactivated")
	return nil
}
