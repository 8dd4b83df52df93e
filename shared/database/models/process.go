package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Process is a business process owned by one department.
// Names are unique within the department.
type Process struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID   uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;index"`
	DepartmentID     uuid.UUID  `json:"department_id" gorm:"type:uuid;not null;uniqueIndex:idx_processes_department_name"`
	Name             string     `json:"name" gorm:"size:255;not null;uniqueIndex:idx_processes_department_name"`
	Description      string     `json:"description" gorm:"type:text"`
	ProcessOwnerID   *uuid.UUID `json:"process_owner_id" gorm:"type:uuid;index"`
	SLA              string     `json:"sla" gorm:"size:255"`
	TAT              string     `json:"tat" gorm:"size:255"`
	Seasonality      string     `json:"seasonality" gorm:"size:255"`
	PeakTimes        string     `json:"peak_times" gorm:"size:255"`
	Frequency        string     `json:"frequency" gorm:"size:255"`
	NumTeamMembers   *int       `json:"num_team_members"`
	RTO              *float64   `json:"rto"`
	RPO              *float64   `json:"rpo"`
	CriticalityLevel string     `json:"criticality_level" gorm:"size:50"`
	IsActive         bool       `json:"is_active" gorm:"not null"`
	CreatedByID      *uuid.UUID `json:"created_by_id" gorm:"type:uuid"`
	UpdatedByID      *uuid.UUID `json:"updated_by_id" gorm:"type:uuid"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Relations
	Locations    []Location    `json:"locations" gorm:"many2many:process_locations"`
	Applications []Application `json:"applications" gorm:"many2many:process_applications"`
	Dependencies []Process     `json:"dependencies" gorm:"many2many:process_dependencies;joinForeignKey:DownstreamProcessID;joinReferences:UpstreamProcessID"`
}

func (p *Process) BeforeCreate(tx *gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}

func (p Process) GetOrganizationID() uuid.UUID { return p.OrganizationID }

// ProcessDependency records that the downstream process relies on the upstream one.
type ProcessDependency struct {
	DownstreamProcessID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UpstreamProcessID   uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (ProcessDependency) TableName() string { return "process_dependencies" }
