package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/database/dbtest"
	"bcm-backend/shared/database/models"
	"bcm-backend/shared/utils/permission"
	"bcm-backend/shared/utils/query"
)

// tenant is an organization with one acting user.
type tenant struct {
	org   models.Organization
	user  models.User
	actor permission.Principal
}

func newTenant(t *testing.T, db *gorm.DB, name string) tenant {
	t.Helper()
	org := dbtest.CreateOrganization(t, db, name)
	user := dbtest.CreateUser(t, db, org.ID, "admin@"+name+".test")
	return tenant{
		org:  org,
		user: user,
		actor: permission.Principal{
			UserID:         user.ID,
			OrganizationID: org.ID,
			Email:          user.Email,
			IsActive:       true,
		},
	}
}

func requireValidation(t *testing.T, err error) *apperrors.ValidationError {
	t.Helper()
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr
}

func requireNotFound(t *testing.T, err error, resource string) {
	t.Helper()
	var nf *apperrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, resource, nf.Resource)
}

func ids(values ...uuid.UUID) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func idList(values ...uuid.UUID) *[]uuid.UUID {
	list := append([]uuid.UUID{}, values...)
	return &list
}

// listByDefault returns first-page params that fall back to the list's default ordering.
func listByDefault() query.FilterParams {
	p := query.DefaultParams()
	p.Sort = query.SortParams{}
	return p
}
