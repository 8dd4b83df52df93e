package permission

import (
	"sort"
	"strings"

	"bcm-backend/shared/apperrors"
)

// HasAnyRole reports whether any assigned role name is in allowed.
// An empty allowed set always denies.
func HasAnyRole(p Principal, allowed []string) bool {
	if len(allowed) == 0 {
		return false
	}
	want := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		want[name] = struct{}{}
	}
	for _, r := range p.Roles {
		if _, ok := want[r.Name]; ok {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether required is a subset of the effective permission set.
func HasAllPermissions(p Principal, required []string) bool {
	return len(MissingPermissions(p, required)) == 0
}

// MissingPermissions returns the required names absent from the effective set, sorted and deduplicated.
func MissingPermissions(p Principal, required []string) []string {
	if len(required) == 0 {
		return nil
	}
	have := p.EffectivePermissions()
	seen := make(map[string]struct{}, len(required))
	var missing []string
	for _, name := range required {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

type requirementKind int

const (
	anyRole requirementKind = iota
	allPermissions
)

// Requirement is the static access rule declared by a route: either a set of
// acceptable role names or a set of required permission names.
type Requirement struct {
	kind  requirementKind
	names []string
}

// AnyRole requires membership in at least one of the named roles.
func AnyRole(names ...string) Requirement {
	return Requirement{kind: anyRole, names: names}
}

// AllPermissions requires every named permission.
func AllPermissions(names ...string) Requirement {
	return Requirement{kind: allPermissions, names: names}
}

// Names returns the role or permission names of the requirement.
func (r Requirement) Names() []string {
	return append([]string(nil), r.names...)
}

func (r Requirement) String() string {
	if r.kind == anyRole {
		return "any role of [" + strings.Join(r.names, ", ") + "]"
	}
	return "all permissions of [" + strings.Join(r.names, ", ") + "]"
}

// Authorize returns nil when p satisfies req, otherwise an *apperrors.AuthorizationError
// naming what was missing.
func Authorize(p Principal, req Requirement) error {
	switch req.kind {
	case anyRole:
		if HasAnyRole(p, req.names) {
			return nil
		}
		return &apperrors.AuthorizationError{
			Reason:  apperrors.MissingRole,
			Missing: req.Names(),
			NoRoles: len(p.Roles) == 0,
		}
	default:
		missing := MissingPermissions(p, req.names)
		if len(missing) == 0 {
			return nil
		}
		return &apperrors.AuthorizationError{
			Reason:  apperrors.MissingPermission,
			Missing: missing,
		}
	}
}
