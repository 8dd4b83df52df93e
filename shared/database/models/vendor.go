package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CriticalityHigh   = "High"
	CriticalityMedium = "Medium"
	CriticalityLow    = "Low"
)

// ValidCriticality reports whether c is one of High, Medium or Low.
func ValidCriticality(c string) bool {
	return c == CriticalityHigh || c == CriticalityMedium || c == CriticalityLow
}

type Vendor struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID  uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:idx_vendors_org_name"`
	Name            string     `json:"name" gorm:"size:255;not null;uniqueIndex:idx_vendors_org_name"`
	ContactPerson   string     `json:"contact_person" gorm:"size:255"`
	ContactEmail    string     `json:"contact_email" gorm:"size:255"`
	ContactPhone    string     `json:"contact_phone" gorm:"size:50"`
	ServiceProvided string     `json:"service_provided" gorm:"type:text"`
	Criticality     string     `json:"criticality" gorm:"size:20;not null"`
	IsActive        bool       `json:"is_active" gorm:"not null"`
	CreatedByID     *uuid.UUID `json:"created_by_id" gorm:"type:uuid"`
	UpdatedByID     *uuid.UUID `json:"updated_by_id" gorm:"type:uuid"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (v *Vendor) BeforeCreate(tx *gorm.DB) error {
	v.ID = ensureID(v.ID)
	return nil
}

func (v Vendor) GetOrganizationID() uuid.UUID { return v.OrganizationID }

type Application struct {
	ID                 uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID     uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:idx_applications_org_name"`
	Name               string     `json:"name" gorm:"size:255;not null;uniqueIndex:idx_applications_org_name"`
	Description        string     `json:"description" gorm:"type:text"`
	ApplicationType    string     `json:"application_type" gorm:"size:100"`
	HostingEnvironment string     `json:"hosting_environment" gorm:"size:100"`
	Status             string     `json:"status" gorm:"size:50"`
	Version            string     `json:"version" gorm:"size:50"`
	VendorID           *uuid.UUID `json:"vendor_id" gorm:"type:uuid;index"`
	Criticality        string     `json:"criticality" gorm:"size:20"`
	Workarounds        string     `json:"workarounds" gorm:"type:text"`
	DerivedRTO         string     `json:"derived_rto" gorm:"size:100"`
	AppOwnerID         *uuid.UUID `json:"app_owner_id" gorm:"type:uuid;index"`
	IsActive           bool       `json:"is_active" gorm:"not null"`
	CreatedByID        *uuid.UUID `json:"created_by_id" gorm:"type:uuid"`
	UpdatedByID        *uuid.UUID `json:"updated_by_id" gorm:"type:uuid"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Relations
	Vendor *Vendor `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	a.ID = ensureID(a.ID)
	return nil
}

func (a Application) GetOrganizationID() uuid.UUID { return a.OrganizationID }
