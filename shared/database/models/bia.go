package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RatingTypeQualitative  = "QUALITATIVE"
	RatingTypeQuantitative = "QUANTITATIVE"

	FormulaWeightedAverage = "WEIGHTED_AVERAGE"
)

type BIACategory struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:uq_bia_category_org_name"`
	Name           string     `json:"name" gorm:"size:255;not null;uniqueIndex:uq_bia_category_org_name"`
	Description    string     `json:"description" gorm:"type:text"`
	IsActive       bool       `json:"is_active" gorm:"not null"`
	CreatedByID    *uuid.UUID `json:"created_by_id" gorm:"type:uuid"`
	UpdatedByID    *uuid.UUID `json:"updated_by_id" gorm:"type:uuid"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (BIACategory) TableName() string { return "bia_categories" }

func (c *BIACategory) BeforeCreate(tx *gorm.DB) error {
	c.ID = ensureID(c.ID)
	return nil
}

func (c BIACategory) GetOrganizationID() uuid.UUID { return c.OrganizationID }

type BIAImpactCriterion struct {
	ID             uuid.UUID                 `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID                 `json:"organization_id" gorm:"type:uuid;not null;index"`
	BIACategoryID  uuid.UUID                 `json:"bia_category_id" gorm:"type:uuid;not null;index"`
	Name           string                    `json:"name" gorm:"size:255;not null"`
	Description    string                    `json:"description" gorm:"type:text"`
	RatingType     string                    `json:"rating_type" gorm:"size:20;not null"`
	IsActive       bool                      `json:"is_active" gorm:"not null"`
	CreatedByID    *uuid.UUID                `json:"created_by_id" gorm:"type:uuid"`
	UpdatedByID    *uuid.UUID                `json:"updated_by_id" gorm:"type:uuid"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
	Levels         []BIAImpactCriterionLevel `json:"levels" gorm:"foreignKey:CriterionID;constraint:OnDelete:CASCADE"`
}

func (BIAImpactCriterion) TableName() string { return "bia_impact_criteria" }

func (c *BIAImpactCriterion) BeforeCreate(tx *gorm.DB) error {
	c.ID = ensureID(c.ID)
	return nil
}

func (c BIAImpactCriterion) GetOrganizationID() uuid.UUID { return c.OrganizationID }

type BIAImpactCriterionLevel struct {
	ID                          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CriterionID                 uuid.UUID `json:"criterion_id" gorm:"type:uuid;not null;index"`
	LevelName                   string    `json:"level_name" gorm:"size:100;not null"`
	LevelValueMin               *float64  `json:"level_value_min"`
	LevelValueMax               *float64  `json:"level_value_max"`
	QuantitativeLevelDescriptor string    `json:"quantitative_level_descriptor" gorm:"size:255"`
	Score                       int       `json:"score" gorm:"not null"`
	SequenceOrder               int       `json:"sequence_order" gorm:"not null"`
}

func (BIAImpactCriterionLevel) TableName() string { return "bia_impact_criterion_levels" }

func (l *BIAImpactCriterionLevel) BeforeCreate(tx *gorm.DB) error {
	l.ID = ensureID(l.ID)
	return nil
}

type BIAFramework struct {
	ID             uuid.UUID               `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID               `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:uq_bia_framework_org_name"`
	Name           string                  `json:"name" gorm:"size:255;not null;uniqueIndex:uq_bia_framework_org_name"`
	Description    string                  `json:"description" gorm:"type:text"`
	Formula        string                  `json:"formula" gorm:"size:50;not null"`
	Threshold      *float64                `json:"threshold"`
	IsActive       bool                    `json:"is_active" gorm:"not null"`
	CreatedByID    *uuid.UUID              `json:"created_by_id" gorm:"type:uuid"`
	UpdatedByID    *uuid.UUID              `json:"updated_by_id" gorm:"type:uuid"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
	Parameters     []BIAFrameworkParameter `json:"parameters" gorm:"foreignKey:FrameworkID;constraint:OnDelete:CASCADE"`
	RTOs           []BIAFrameworkRTO       `json:"rtos" gorm:"foreignKey:FrameworkID;constraint:OnDelete:CASCADE"`
}

func (BIAFramework) TableName() string { return "bia_frameworks" }

func (f *BIAFramework) BeforeCreate(tx *gorm.DB) error {
	f.ID = ensureID(f.ID)
	return nil
}

func (f BIAFramework) GetOrganizationID() uuid.UUID { return f.OrganizationID }

type BIAFrameworkParameter struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	FrameworkID uuid.UUID `json:"framework_id" gorm:"type:uuid;not null;uniqueIndex:uq_framework_criterion"`
	CriterionID uuid.UUID `json:"criterion_id" gorm:"type:uuid;not null;uniqueIndex:uq_framework_criterion"`
	Weightage   float64   `json:"weightage" gorm:"not null"`
}

func (BIAFrameworkParameter) TableName() string { return "bia_framework_parameters" }

func (p *BIAFrameworkParameter) BeforeCreate(tx *gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}

type BIAFrameworkRTO struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	FrameworkID  uuid.UUID `json:"framework_id" gorm:"type:uuid;not null;index"`
	DisplayText  string    `json:"display_text" gorm:"size:100;not null"`
	ValueInHours int       `json:"value_in_hours" gorm:"not null"`
}

func (BIAFrameworkRTO) TableName() string { return "bia_framework_rtos" }

func (r *BIAFrameworkRTO) BeforeCreate(tx *gorm.DB) error {
	r.ID = ensureID(r.ID)
	return nil
}

type BIATimeframe struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:uq_bia_timeframe_org_name"`
	TimeframeName  string     `json:"timeframe_name" gorm:"size:100;not null;uniqueIndex:uq_bia_timeframe_org_name"`
	SequenceOrder  int        `json:"sequence_order" gorm:"not null"`
	Description    string     `json:"description" gorm:"type:text"`
	IsActive       bool       `json:"is_active" gorm:"not null"`
	CreatedByID    *uuid.UUID `json:"created_by_id" gorm:"type:uuid"`
	UpdatedByID    *uuid.UUID `json:"updated_by_id" gorm:"type:uuid"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (BIATimeframe) TableName() string { return "bia_timeframes" }

func (t *BIATimeframe) BeforeCreate(tx *gorm.DB) error {
	t.ID = ensureID(t.ID)
	return nil
}

func (t BIATimeframe) GetOrganizationID() uuid.UUID { return t.OrganizationID }
