// Package apperrors defines the typed failures returned by services and mapped to
// HTTP responses by the handlers.
package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrTenancy         = errors.New("organization mismatch")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError reports malformed or referentially invalid input.
// InvalidIDs always lists every offending identifier, not only the first.
type ValidationError struct {
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
	InvalidIDs []string          `json:"invalid_ids,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.InvalidIDs) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.InvalidIDs, ", "))
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
		}
		return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validation returns a ValidationError with a formatted message.
func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// FieldErrors returns a ValidationError keyed by field name, or nil when fields is empty.
func FieldErrors(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Message: "invalid input", Fields: fields}
}

// InvalidReferences reports identifiers that did not resolve, e.g. unknown permission ids.
func InvalidReferences(what string, ids []uuid.UUID) *ValidationError {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return &ValidationError{Message: "invalid " + what, InvalidIDs: out}
}

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Message string `json:"message"`
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Unwrap() error { return ErrConflict }

// Conflict returns a ConflictError with a formatted message.
func Conflict(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an absent entity, including one masked because it belongs to another tenant.
type NotFoundError struct {
	Resource string `json:"resource"`
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound returns a NotFoundError for the named resource, e.g. "Role".
func NotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// DenialReason classifies why an authorization check failed.
type DenialReason string

const (
	MissingRole       DenialReason = "missing_role"
	MissingPermission DenialReason = "missing_permission"
	TenancyMismatch   DenialReason = "tenancy_mismatch"
)

// AuthorizationError reports a principal lacking a required role or permission.
// Missing holds the role names that were acceptable or the permission names that were absent.
type AuthorizationError struct {
	Reason  DenialReason `json:"reason"`
	Missing []string     `json:"missing"`
	NoRoles bool         `json:"-"`
}

func (e *AuthorizationError) Error() string {
	switch e.Reason {
	case MissingRole:
		if e.NoRoles {
			return "User has no assigned roles."
		}
		return fmt.Sprintf("User does not have the required roles. Required: %s.", strings.Join(e.Missing, ", "))
	case MissingPermission:
		quoted := make([]string, len(e.Missing))
		for i, name := range e.Missing {
			quoted[i] = "'" + name + "'"
		}
		noun := "permission"
		if len(quoted) > 1 {
			noun = "permissions"
		}
		return fmt.Sprintf("You do not have the required %s: %s", noun, strings.Join(quoted, ", "))
	default:
		return "Insufficient permissions"
	}
}

func (e *AuthorizationError) Unwrap() error { return ErrForbidden }

// TenancyError reports that a resource belongs to a different organization than the principal.
// Callers fold it into NotFoundError before it reaches a client.
type TenancyError struct {
	PrincipalOrganizationID uuid.UUID
	ResourceOrganizationID  uuid.UUID
}

func (e *TenancyError) Error() string {
	return fmt.Sprintf("resource organization %s does not match principal organization %s",
		e.ResourceOrganizationID, e.PrincipalOrganizationID)
}

func (e *TenancyError) Unwrap() error { return ErrTenancy }

// MaskTenancy converts a TenancyError into a NotFoundError for resource, leaving other errors intact.
func MaskTenancy(err error, resource string) error {
	var tenancyErr *TenancyError
	if errors.As(err, &tenancyErr) {
		return NotFound(resource)
	}
	return err
}

// UnauthenticatedError reports a missing, invalid or revoked credential.
type UnauthenticatedError struct {
	Message string
}

func (e *UnauthenticatedError) Error() string { return e.Message }

func (e *UnauthenticatedError) Unwrap() error { return ErrUnauthenticated }

// Unauthenticated returns an UnauthenticatedError with the given message.
func Unauthenticated(message string) *UnauthenticatedError {
	return &UnauthenticatedError{Message: message}
}

// ForbiddenError reports an authenticated principal that may not act at all, e.g. a deactivated user.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// Forbidden returns a ForbiddenError with the given message.
func Forbidden(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}
