package permission

import (
	"errors"
	"testing"

	"bcm-backend/shared/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func principalWith(roles ...Role) Principal {
	return Principal{
		UserID:         uuid.New(),
		OrganizationID: uuid.New(),
		IsActive:       true,
		Roles:          roles,
	}
}

func TestHasAnyRole(t *testing.T) {
	p := principalWith(Role{Name: "BCM Manager"}, Role{Name: "CISO"})

	assert.True(t, HasAnyRole(p, []string{"Admin", "CISO"}))
	assert.False(t, HasAnyRole(p, []string{"Admin"}))
	assert.False(t, HasAnyRole(p, nil), "empty allowed set never allows")
	assert.False(t, HasAnyRole(p, []string{}))
}

func TestHasAllPermissions(t *testing.T) {
	p := principalWith(
		Role{Name: "A", Permissions: []string{"role:read", "role:create"}},
		Role{Name: "B", Permissions: []string{"role:read", "vendor:read"}},
	)

	tests := []struct {
		name     string
		required []string
		want     bool
	}{
		{"empty requirement", nil, true},
		{"single from one role", []string{"role:create"}, true},
		{"union across roles", []string{"role:create", "vendor:read"}, true},
		{"duplicate names", []string{"role:read", "role:read"}, true},
		{"one missing", []string{"role:create", "role:delete"}, false},
		{"all missing", []string{"user:create"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasAllPermissions(p, tt.required))
		})
	}
}

func TestPrincipalWithoutRoles(t *testing.T) {
	p := principalWith()

	assert.False(t, HasAnyRole(p, []string{"Admin"}))
	assert.False(t, HasAllPermissions(p, []string{"role:read"}))
	assert.Empty(t, p.PermissionNames())

	err := Authorize(p, AnyRole("Admin"))
	var authErr *apperrors.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, apperrors.MissingRole, authErr.Reason)
	assert.Equal(t, "User has no assigned roles.", authErr.Error())
}

func TestAuthorizeMissingPermission(t *testing.T) {
	// BCM_MANAGER holds the permission, but the user only has USER.
	user := principalWith(Role{Name: "USER"})

	err := Authorize(user, AllPermissions("bia_frameworks:create"))

	var authErr *apperrors.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, apperrors.MissingPermission, authErr.Reason)
	assert.Equal(t, []string{"bia_frameworks:create"}, authErr.Missing)
	assert.Equal(t, "You do not have the required permission: 'bia_frameworks:create'", err.Error())
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestAuthorizeReportsOnlyMissingPermissionsSorted(t *testing.T) {
	p := principalWith(Role{Name: "X", Permissions: []string{"b:read"}})

	err := Authorize(p, AllPermissions("c:read", "b:read", "a:read"))

	var authErr *apperrors.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, []string{"a:read", "c:read"}, authErr.Missing)
	assert.Contains(t, err.Error(), "permissions: 'a:read', 'c:read'")
}

func TestAuthorizeAllows(t *testing.T) {
	p := principalWith(Role{Name: "Admin", Permissions: []string{"role:create"}})

	assert.NoError(t, Authorize(p, AnyRole("Admin", "BCM Manager")))
	assert.NoError(t, Authorize(p, AllPermissions("role:create")))
}

func TestAuthorizeMissingRoleMessage(t *testing.T) {
	p := principalWith(Role{Name: "Standard User"})

	err := Authorize(p, AnyRole("Admin", "BCM Manager"))

	require.Error(t, err)
	assert.Equal(t, "User does not have the required roles. Required: Admin, BCM Manager.", err.Error())
	assert.Equal(t, apperrors.MissingRole, Reason(err))
}

func TestAuthorizeEmptyRoleRequirementDenies(t *testing.T) {
	p := principalWith(Role{Name: "Admin"})

	assert.Error(t, Authorize(p, AnyRole()))
}

func TestRevocationVisibleOnNextPrincipal(t *testing.T) {
	before := principalWith(Role{Name: "Editor", Permissions: []string{"role:update"}})
	require.NoError(t, Authorize(before, AllPermissions("role:update")))

	// A principal rebuilt after the role lost the permission is denied immediately.
	after := before
	after.Roles = []Role{{Name: "Editor"}}
	assert.Error(t, Authorize(after, AllPermissions("role:update")))
}
