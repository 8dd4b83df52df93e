package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog records one mutating API request.
type AuditLog struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty" gorm:"type:uuid;index"`
	UserID         *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`
	Method         string     `json:"method" gorm:"type:varchar(10);not null"`
	Path           string     `json:"path" gorm:"type:varchar(500);not null"`
	Route          string     `json:"route" gorm:"type:varchar(500)"`
	StatusCode     int        `json:"status_code" gorm:"not null;index"`
	IPAddress      string     `json:"ip_address" gorm:"type:varchar(45)"`
	UserAgent      string     `json:"user_agent" gorm:"type:text"`
	Duration       int64      `json:"duration_ms" gorm:"not null"`
	RequestID      string     `json:"request_id" gorm:"type:varchar(100);index"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	a.ID = ensureID(a.ID)
	return nil
}
