// Package services holds the per-entity business operations. Every operation takes
// the acting principal and applies the tenancy filter before touching a row.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/utils/permission"
	"bcm-backend/shared/utils/query"
)

// Page is one page of list results.
type Page[T any] struct {
	Items      []T                      `json:"items"`
	Pagination query.PaginationResponse `json:"pagination"`
}

// findVisible loads a row by id and masks rows of other organizations as not found.
func findVisible[T permission.Scoped](ctx context.Context, db *gorm.DB, actor permission.Principal, id uuid.UUID, name string, preloads ...string) (*T, error) {
	var row T
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(name)
		}
		return nil, err
	}
	if err := permission.CheckVisible(actor, row, name); err != nil {
		return nil, err
	}
	return &row, nil
}

// listScoped loads one page of rows owned by the actor's organization.
func listScoped[T any](ctx context.Context, db *gorm.DB, actor permission.Principal, params query.FilterParams, spec query.ListSpec) (*Page[T], error) {
	var model T
	base := query.ScopeOrganization(db.WithContext(ctx).Model(&model), actor.OrganizationID)

	items := make([]T, 0)
	pagination, err := query.Paginate(base, params, spec, &items)
	if err != nil {
		return nil, err
	}
	return &Page[T]{Items: items, Pagination: pagination}, nil
}

// nameTaken reports whether another row of model in the organization already uses value in column.
func nameTaken(tx *gorm.DB, model any, organizationID uuid.UUID, column, value string, excludeID uuid.UUID) (bool, error) {
	var count int64
	q := tx.Model(model).Where("organization_id = ? AND "+column+" = ?", organizationID, value)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// missingIDs returns the ids without a matching row, in input order and without duplicates.
// When organizationID is set, rows of other organizations count as missing.
func missingIDs(tx *gorm.DB, model any, ids []uuid.UUID, organizationID *uuid.UUID) ([]uuid.UUID, error) {
	unique := uniqueIDs(ids)
	if len(unique) == 0 {
		return nil, nil
	}

	var found []uuid.UUID
	q := tx.Model(model).Where("id IN ?", unique)
	if organizationID != nil {
		q = q.Where("organization_id = ?", *organizationID)
	}
	if err := q.Pluck("id", &found).Error; err != nil {
		return nil, err
	}

	present := make(map[uuid.UUID]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	var missing []uuid.UUID
	for _, id := range unique {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// checkReference fails with a ValidationError when id does not name a row of model in the organization.
func checkReference(tx *gorm.DB, model any, id *uuid.UUID, organizationID uuid.UUID, what string) error {
	if id == nil {
		return nil
	}
	missing, err := missingIDs(tx, model, []uuid.UUID{*id}, &organizationID)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperrors.InvalidReferences(what, missing)
	}
	return nil
}

// OptionalUUID distinguishes an absent field (Set false) from an explicit null
// (Set true, Value nil) in update payloads.
type OptionalUUID struct {
	Set   bool
	Value *uuid.UUID
}

func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// SetOptionalUUID returns an OptionalUUID that sets the field to id, or to null when id is nil.
func SetOptionalUUID(id *uuid.UUID) OptionalUUID {
	return OptionalUUID{Set: true, Value: id}
}

// setReference stages column for update from an OptionalUUID, checking that a
// non-null id resolves within organizationID.
func setReference(tx *gorm.DB, updates map[string]interface{}, column string, opt OptionalUUID, model any, organizationID uuid.UUID, what string) error {
	if !opt.Set {
		return nil
	}
	if opt.Value == nil {
		updates[column] = nil
		return nil
	}
	if err := checkReference(tx, model, opt.Value, organizationID, what); err != nil {
		return err
	}
	updates[column] = *opt.Value
	return nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// translateWriteError maps a unique constraint violation raced past the pre-check to a ConflictError.
func translateWriteError(err error, conflictMessage string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict("%s", conflictMessage)
	}
	return err
}

func actorRef(actor permission.Principal) *uuid.UUID {
	id := actor.UserID
	return &id
}

// fieldErrors collects per-field validation messages.
type fieldErrors map[string]string

func (f fieldErrors) check(field string, err error) {
	if err != nil {
		if _, exists := f[field]; !exists {
			f[field] = err.Error()
		}
	}
}

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) err() error {
	return apperrors.FieldErrors(f)
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
