package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bcm-backend/shared/database/models"
	"bcm-backend/shared/utils/auth"
	"bcm-backend/shared/utils/permission"
	"bcm-backend/shared/utils/query"
)

type LocationCreate struct {
	Name                string   `json:"name" binding:"required"`
	AddressLine1        string   `json:"address_line_1"`
	AddressLine2        string   `json:"address_line_2"`
	City                string   `json:"city"`
	StateProvinceRegion string   `json:"state_province_region"`
	PostalCode          string   `json:"postal_code"`
	Country             string   `json:"country"`
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
	IsActive            *bool    `json:"is_active"`
}

type LocationUpdate struct {
	Name                *string  `json:"name"`
	AddressLine1        *string  `json:"address_line_1"`
	AddressLine2        *string  `json:"address_line_2"`
	City                *string  `json:"city"`
	StateProvinceRegion *string  `json:"state_province_region"`
	PostalCode          *string  `json:"postal_code"`
	Country             *string  `json:"country"`
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
	IsActive            *bool    `json:"is_active"`
}

var locationListSpec = query.ListSpec{
	Filters: map[string]string{
		"is_active": "is_active",
		"city":      "city",
		"country":   "country",
	},
	SortFields: map[string]string{
		"name":       "name",
		"city":       "city",
		"country":    "country",
		"created_at": "created_at",
	},
	SearchFields: []string{"name", "city", "country", "address_line_1"},
	DefaultSort:  "name ASC",
}

type LocationService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewLocationService(db *gorm.DB, log logrus.FieldLogger) *LocationService {
	return &LocationService{db: db, log: log}
}

func validateCoordinates(errs fieldErrors, lat, lng *float64) {
	if lat != nil && (*lat < -90 || *lat > 90) {
		errs.add("latitude", "latitude must be between -90 and 90")
	}
	if lng != nil && (*lng < -180 || *lng > 180) {
		errs.add("longitude", "longitude must be between -180 and 180")
	}
}

func (s *LocationService) Create(ctx context.Context, actor permission.Principal, in LocationCreate) (*models.Location, error) {
	name := strings.TrimSpace(in.Name)

	errs := fieldErrors{}
	errs.check("name", auth.ValidateLength(name, "name", 1, 255))
	errs.check("postal_code", auth.ValidateLength(in.PostalCode, "postal_code", 0, 20))
	validateCoordinates(errs, in.Latitude, in.Longitude)
	if err := errs.err(); err != nil {
		return nil, err
	}

	loc := models.Location{
		OrganizationID:      actor.OrganizationID,
		Name:                name,
		AddressLine1:        strings.TrimSpace(in.AddressLine1),
		AddressLine2:        strings.TrimSpace(in.AddressLine2),
		City:                strings.TrimSpace(in.City),
		StateProvinceRegion: strings.TrimSpace(in.StateProvinceRegion),
		PostalCode:          strings.TrimSpace(in.PostalCode),
		Country:             strings.TrimSpace(in.Country),
		Latitude:            in.Latitude,
		Longitude:           in.Longitude,
		IsActive:            in.IsActive == nil || *in.IsActive,
		CreatedByID:         actorRef(actor),
		UpdatedByID:         actorRef(actor),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkNameFree(tx, &models.Location{}, actor.OrganizationID, "name", name, uuid.Nil, "Location"); err != nil {
			return err
		}
		return translateWriteError(tx.Create(&loc).Error, "Location with name '"+name+"' already exists in this organization")
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"location_id": loc.ID, "actor_id": actor.UserID}).Info("location created")
	return &loc, nil
}

func (s *LocationService) Get(ctx context.Context, actor permission.Principal, id uuid.UUID) (*models.Location, error) {
	return findVisible[models.Location](ctx, s.db, actor, id, "Location")
}

func (s *LocationService) List(ctx context.Context, actor permission.Principal, params query.FilterParams) (*Page[models.Location], error) {
	return listScoped[models.Location](ctx, s.db, actor, params, locationListSpec)
}

func (s *LocationService) Update(ctx context.Context, actor permission.Principal, id uuid.UUID, in LocationUpdate) (*models.Location, error) {
	name := trimPtr(in.Name)

	errs := fieldErrors{}
	if name != nil {
		errs.check("name", auth.ValidateLength(*name, "name", 1, 255))
	}
	if in.PostalCode != nil {
		errs.check("postal_code", auth.ValidateLength(*in.PostalCode, "postal_code", 0, 20))
	}
	validateCoordinates(errs, in.Latitude, in.Longitude)
	if err := errs.err(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loc, err := findVisible[models.Location](ctx, tx, actor, id, "Location")
		if err != nil {
			return err
		}

		updates := map[string]interface{}{"updated_by_id": actor.UserID}
		if name != nil && *name != loc.Name {
			if err := checkNameFree(tx, &models.Location{}, loc.OrganizationID, "name", *name, loc.ID, "Location"); err != nil {
				return err
			}
			updates["name"] = *name
		}
		setString(updates, "address_line_1", in.AddressLine1)
		setString(updates, "address_line_2", in.AddressLine2)
		setString(updates, "city", in.City)
		setString(updates, "state_province_region", in.StateProvinceRegion)
		setString(updates, "postal_code", in.PostalCode)
		setString(updates, "country", in.Country)
		if in.Latitude != nil {
			updates["latitude"] = *in.Latitude
		}
		if in.Longitude != nil {
			updates["longitude"] = *in.Longitude
		}
		if in.IsActive != nil {
			updates["is_active"] = *in.IsActive
		}
		return translateWriteError(tx.Model(loc).Updates(updates).Error, "Location name already exists in this organization")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Delete deactivates the location.
func (s *LocationService) Delete(ctx context.Context, actor permission.Principal, id uuid.UUID) error {
	loc, err := findVisible[models.Location](ctx, s.db, actor, id, "Location")
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Model(loc).Updates(map[string]interface{}{
		"is_active":     false,
		"updated_by_id": actor.UserID,
	}).Error
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"location_id": id, "actor_id": actor.UserID}).Info("location deactivated")
	return nil
}

func setString(updates map[string]interface{}, column string, value *string) {
	if value != nil {
		updates[column] = strings.TrimSpace(*value)
	}
}
