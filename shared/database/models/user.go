package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a person in an organization. Users are deactivated, never deleted.
type User struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:idx_users_org_email"`
	Email          string     `json:"email" gorm:"size:255;not null;uniqueIndex:idx_users_org_email"`
	PasswordHash   string     `json:"-" gorm:"size:255;not null"`
	FirstName      string     `json:"first_name" gorm:"size:100"`
	LastName       string     `json:"last_name" gorm:"size:100"`
	JobTitle       string     `json:"job_title" gorm:"size:255"`
	IsActive       bool       `json:"is_active" gorm:"not null"`
	DepartmentID   *uuid.UUID `json:"department_id" gorm:"type:uuid;index"`
	LocationID     *uuid.UUID `json:"location_id" gorm:"type:uuid;index"`
	LastLoginAt    *time.Time `json:"last_login_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Roles []Role `json:"roles" gorm:"many2many:user_roles"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.ID = ensureID(u.ID)
	return nil
}

func (u User) GetOrganizationID() uuid.UUID { return u.OrganizationID }

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
