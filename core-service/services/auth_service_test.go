package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/database/dbtest"
	"bcm-backend/shared/database/models"
	"bcm-backend/shared/utils/auth"
	"bcm-backend/shared/utils/cache"
)

type authFixture struct {
	db       *gorm.DB
	auth     *AuthService
	identity *IdentityService
	tokens   *auth.TokenManager
	a        tenant
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	db, _ := dbtest.Seeded(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	blacklist := cache.NewTokenBlacklist(client)

	tokens := auth.NewTokenManager("test-secret", "bcm-backend", time.Hour)
	return authFixture{
		db:       db,
		auth:     NewAuthService(db, tokens, blacklist, dbtest.Logger()),
		identity: NewIdentityService(db, tokens, blacklist, dbtest.Logger()),
		tokens:   tokens,
		a:        newTenant(t, db, "alpha"),
	}
}

func (f authFixture) createUser(t *testing.T, orgID uuid.UUID, email, password string) models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	user := models.User{OrganizationID: orgID, Email: email, PasswordHash: hash, IsActive: true}
	require.NoError(t, f.db.Create(&user).Error)
	return user
}

func TestLoginIssuesTokenResolvableToPrincipal(t *testing.T) {
	f := newAuthFixture(t)
	role := dbtest.CreateRole(t, f.db, f.a.org.ID, "Vendor Reader", "vendor:read")
	user := f.createUser(t, f.a.org.ID, "jane@example.com", "password1")
	require.NoError(t, f.db.Create(&models.UserRole{UserID: user.ID, RoleID: role.ID}).Error)

	resp, err := f.auth.Login(context.Background(), LoginRequest{Email: "Jane@Example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, user.ID, resp.UserID)

	p, claims, err := f.identity.Resolve(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.UserID)
	assert.Equal(t, f.a.org.ID, p.OrganizationID)
	assert.Equal(t, []string{"Vendor Reader"}, p.RoleNames())
	assert.Equal(t, []string{"vendor:read"}, p.PermissionNames())
	assert.NotEmpty(t, claims.ID)

	var stored models.User
	require.NoError(t, f.db.First(&stored, "id = ?", user.ID).Error)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, f.a.org.ID, "jane@example.com", "password1")

	_, err := f.auth.Login(context.Background(), LoginRequest{Email: "jane@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = f.auth.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "password1"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestLoginInactiveUser(t *testing.T) {
	f := newAuthFixture(t)
	user := f.createUser(t, f.a.org.ID, "jane@example.com", "password1")
	require.NoError(t, f.db.Model(&user).Update("is_active", false).Error)

	_, err := f.auth.Login(context.Background(), LoginRequest{Email: "jane@example.com", Password: "password1"})
	var forbidden *apperrors.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, "Inactive user", forbidden.Message)
}

func TestLoginAmbiguousEmailNeedsOrganization(t *testing.T) {
	f := newAuthFixture(t)
	b := newTenant(t, f.db, "beta")
	c := newTenant(t, f.db, "gamma")
	f.createUser(t, f.a.org.ID, "jane@example.com", "password1")
	other := f.createUser(t, b.org.ID, "jane@example.com", "password2")
	f.createUser(t, c.org.ID, "jane@example.com", "password2")

	_, err := f.auth.Login(context.Background(), LoginRequest{Email: "jane@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated, "a wrong password does not reveal the address is in several tenants")

	resp, err := f.auth.Login(context.Background(), LoginRequest{Email: "jane@example.com", Password: "password1"})
	require.NoError(t, err, "a single password match is unambiguous")
	assert.Equal(t, f.a.org.ID, resp.OrganizationID)

	_, err = f.auth.Login(context.Background(), LoginRequest{Email: "jane@example.com", Password: "password2"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	resp, err = f.auth.Login(context.Background(), LoginRequest{Email: "jane@example.com", Password: "password2", OrganizationID: &b.org.ID})
	require.NoError(t, err)
	assert.Equal(t, other.ID, resp.UserID)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, f.a.org.ID, "jane@example.com", "password1")

	resp, err := f.auth.Login(context.Background(), LoginRequest{Email: "jane@example.com", Password: "password1"})
	require.NoError(t, err)

	_, claims, err := f.identity.Resolve(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	require.NoError(t, f.auth.Logout(context.Background(), claims))

	_, _, err = f.identity.Resolve(context.Background(), resp.AccessToken)
	var unauth *apperrors.UnauthenticatedError
	require.ErrorAs(t, err, &unauth)
	assert.Equal(t, "Token has been revoked", unauth.Message)
}

func TestResolveSeesRevocationsOnNextRequest(t *testing.T) {
	f := newAuthFixture(t)
	role := dbtest.CreateRole(t, f.db, f.a.org.ID, "Vendor Reader", "vendor:read")
	user := f.createUser(t, f.a.org.ID, "jane@example.com", "password1")
	require.NoError(t, f.db.Create(&models.UserRole{UserID: user.ID, RoleID: role.ID}).Error)

	issued, err := f.tokens.Generate(user.ID, user.OrganizationID, user.Email)
	require.NoError(t, err)

	p, _, err := f.identity.Resolve(context.Background(), issued.Token)
	require.NoError(t, err)
	assert.Contains(t, p.PermissionNames(), "vendor:read")

	require.NoError(t, f.db.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error)

	p, _, err = f.identity.Resolve(context.Background(), issued.Token)
	require.NoError(t, err)
	assert.Empty(t, p.PermissionNames())
}

func TestResolveRejectsInactiveAndInvalid(t *testing.T) {
	f := newAuthFixture(t)
	user := f.createUser(t, f.a.org.ID, "jane@example.com", "password1")

	issued, err := f.tokens.Generate(user.ID, user.OrganizationID, user.Email)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&user).Update("is_active", false).Error)

	_, _, err = f.identity.Resolve(context.Background(), issued.Token)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, _, err = f.identity.Resolve(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	b := newTenant(t, f.db, "beta")
	forged, err := f.tokens.Generate(user.ID, b.org.ID, user.Email)
	require.NoError(t, err)
	_, _, err = f.identity.Resolve(context.Background(), forged.Token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated, "token organization must match the user's")
}

func TestPrincipalIgnoresRolesOfOtherOrganizations(t *testing.T) {
	f := newAuthFixture(t)
	b := newTenant(t, f.db, "beta")
	foreign := dbtest.CreateRole(t, f.db, b.org.ID, "Foreign", "vendor:delete")
	own := dbtest.CreateRole(t, f.db, f.a.org.ID, "Own", "vendor:read")
	user := dbtest.CreateUser(t, f.db, f.a.org.ID, "jane@example.com", own, foreign)

	p, err := f.identity.LoadPrincipal(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Own"}, p.RoleNames())
	assert.Equal(t, []string{"vendor:read"}, p.PermissionNames())
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, f.a.org.ID, "jane@example.com", "password1")

	resp, err := f.auth.Login(context.Background(), LoginRequest{Email: "jane@example.com", Password: "password1"})
	require.NoError(t, err)
	p, claims, err := f.identity.Resolve(context.Background(), resp.AccessToken)
	require.NoError(t, err)

	err = f.auth.ChangePassword(context.Background(), p, claims, ChangePasswordRequest{CurrentPassword: "wrong-one", NewPassword: "password2"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	err = f.auth.ChangePassword(context.Background(), p, claims, ChangePasswordRequest{CurrentPassword: "password1", NewPassword: "short"})
	var invalid *apperrors.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Fields, "new_password")

	err = f.auth.ChangePassword(context.Background(), p, claims, ChangePasswordRequest{CurrentPassword: "password1", NewPassword: "password1"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	require.NoError(t, f.auth.ChangePassword(context.Background(), p, claims, ChangePasswordRequest{CurrentPassword: "password1", NewPassword: "password2"}))

	_, _, err = f.identity.Resolve(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated, "token used for the change is revoked")

	_, err = f.auth.Login(context.Background(), LoginRequest{Email: "jane@example.com", Password: "password1"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	_, err = f.auth.Login(context.Background(), LoginRequest{Email: "jane@example.com", Password: "password2"})
	assert.NoError(t, err)
}
