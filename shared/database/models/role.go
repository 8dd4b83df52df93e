package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name           string    `json:"name" gorm:"size:100;not null;uniqueIndex:idx_roles_org_name"`
	Description    string    `json:"description" gorm:"size:255"`
	IsSystemRole   bool      `json:"is_system_role" gorm:"not null"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;uniqueIndex:idx_roles_org_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Permissions []Permission `json:"permissions" gorm:"many2many:role_permissions"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	r.ID = ensureID(r.ID)
	return nil
}

func (r Role) GetOrganizationID() uuid.UUID { return r.OrganizationID }

// PermissionNames returns the names of the loaded permissions.
func (r Role) PermissionNames() []string {
	names := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		names = append(names, p.Name)
	}
	return names
}
