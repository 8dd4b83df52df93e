package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Department struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID   uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:idx_departments_org_name"`
	Name             string     `json:"name" gorm:"size:255;not null;uniqueIndex:idx_departments_org_name"`
	Description      string     `json:"description" gorm:"size:1000"`
	DepartmentHeadID *uuid.UUID `json:"department_head_id" gorm:"type:uuid"`
	IsActive         bool       `json:"is_active" gorm:"not null"`
	CreatedByID      *uuid.UUID `json:"created_by_id" gorm:"type:uuid"`
	UpdatedByID      *uuid.UUID `json:"updated_by_id" gorm:"type:uuid"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Relations
	Locations []Location `json:"locations" gorm:"many2many:department_locations"`
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	d.ID = ensureID(d.ID)
	return nil
}

func (d Department) GetOrganizationID() uuid.UUID { return d.OrganizationID }

type Location struct {
	ID                  uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID      uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:idx_locations_org_name"`
	Name                string     `json:"name" gorm:"size:255;not null;uniqueIndex:idx_locations_org_name"`
	AddressLine1        string     `json:"address_line_1" gorm:"size:255"`
	AddressLine2        string     `json:"address_line_2" gorm:"size:255"`
	City                string     `json:"city" gorm:"size:100"`
	StateProvinceRegion string     `json:"state_province_region" gorm:"size:100"`
	PostalCode          string     `json:"postal_code" gorm:"size:20"`
	Country             string     `json:"country" gorm:"size:100"`
	Latitude            *float64   `json:"latitude"`
	Longitude           *float64   `json:"longitude"`
	IsActive            bool       `json:"is_active" gorm:"not null"`
	CreatedByID         *uuid.UUID `json:"created_by_id" gorm:"type:uuid"`
	UpdatedByID         *uuid.UUID `json:"updated_by_id" gorm:"type:uuid"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	l.ID = ensureID(l.ID)
	return nil
}

func (l Location) GetOrganizationID() uuid.UUID { return l.OrganizationID }
