package permission

import (
	"context"
	"errors"
	"testing"

	"bcm-backend/shared/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scopedRow struct {
	orgID uuid.UUID
}

func (r scopedRow) GetOrganizationID() uuid.UUID { return r.orgID }

func TestAssertSameOrganization(t *testing.T) {
	p := principalWith()

	assert.NoError(t, AssertSameOrganization(p, p.OrganizationID))

	err := AssertSameOrganization(p, uuid.New())
	var tenancyErr *apperrors.TenancyError
	require.ErrorAs(t, err, &tenancyErr)
	assert.Equal(t, p.OrganizationID, tenancyErr.PrincipalOrganizationID)
	assert.Equal(t, apperrors.TenancyMismatch, Reason(err))
}

func TestCheckVisibleMasksCrossTenantAsNotFound(t *testing.T) {
	p := principalWith()

	assert.NoError(t, CheckVisible(p, scopedRow{orgID: p.OrganizationID}, "Department"))

	err := CheckVisible(p, scopedRow{orgID: uuid.New()}, "Department")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.False(t, errors.Is(err, apperrors.ErrTenancy))
	assert.False(t, errors.Is(err, apperrors.ErrForbidden))
	assert.Equal(t, "Department not found", err.Error())
}

func TestPrincipalContext(t *testing.T) {
	p := principalWith(Role{Name: "Admin"})

	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	got, ok := FromContext(WithPrincipal(context.Background(), p))
	require.True(t, ok)
	assert.Equal(t, p.UserID, got.UserID)
}
