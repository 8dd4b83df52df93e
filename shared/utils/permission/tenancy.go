package permission

import (
	"errors"

	"bcm-backend/shared/apperrors"

	"github.com/google/uuid"
)

// Scoped is implemented by every entity that belongs to exactly one organization.
type Scoped interface {
	GetOrganizationID() uuid.UUID
}

// AssertSameOrganization fails with *apperrors.TenancyError when the resource
// organization differs from the principal's.
func AssertSameOrganization(p Principal, resourceOrganizationID uuid.UUID) error {
	if resourceOrganizationID != p.OrganizationID {
		return &apperrors.TenancyError{
			PrincipalOrganizationID: p.OrganizationID,
			ResourceOrganizationID:  resourceOrganizationID,
		}
	}
	return nil
}

// CheckVisible applies the tenancy filter to a loaded row and masks a mismatch as
// not found, so cross-tenant rows are indistinguishable from missing ones.
func CheckVisible(p Principal, resource Scoped, name string) error {
	return apperrors.MaskTenancy(AssertSameOrganization(p, resource.GetOrganizationID()), name)
}

// Reason classifies err for metrics and logs. It returns "" for errors that are not denials.
func Reason(err error) apperrors.DenialReason {
	var authErr *apperrors.AuthorizationError
	if errors.As(err, &authErr) {
		return authErr.Reason
	}
	if errors.Is(err, apperrors.ErrTenancy) {
		return apperrors.TenancyMismatch
	}
	return ""
}
