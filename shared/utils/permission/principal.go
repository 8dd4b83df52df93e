package permission

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

// Role is an assigned role with its materialized permission names.
type Role struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Permissions    []string  `json:"permissions"`
}

// Principal is the authenticated actor for one request. It is loaded once per request
// from the current role and permission assignments and never mutated afterwards.
type Principal struct {
	UserID         uuid.UUID `json:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Email          string    `json:"email"`
	IsActive       bool      `json:"is_active"`
	Roles          []Role    `json:"roles"`
}

// RoleNames returns the names of the assigned roles.
func (p Principal) RoleNames() []string {
	names := make([]string, 0, len(p.Roles))
	for _, r := range p.Roles {
		names = append(names, r.Name)
	}
	return names
}

// EffectivePermissions is the union of permissions over all assigned roles.
func (p Principal) EffectivePermissions() map[string]struct{} {
	set := make(map[string]struct{})
	for _, r := range p.Roles {
		for _, name := range r.Permissions {
			set[name] = struct{}{}
		}
	}
	return set
}

// PermissionNames returns the effective permission set sorted by name.
func (p Principal) PermissionNames() []string {
	set := p.EffectivePermissions()
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored in ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
