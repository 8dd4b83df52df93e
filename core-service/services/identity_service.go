package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/database/models"
	"bcm-backend/shared/utils/auth"
	"bcm-backend/shared/utils/permission"
)

// RevocationStore records logged-out tokens.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// IdentityService turns a bearer token into a Principal. Roles and permissions are
// read from the database on every call so revocations apply to the next request.
type IdentityService struct {
	db      *gorm.DB
	tokens  *auth.TokenManager
	revoked RevocationStore
	log     logrus.FieldLogger
}

func NewIdentityService(db *gorm.DB, tokens *auth.TokenManager, revoked RevocationStore, log logrus.FieldLogger) *IdentityService {
	return &IdentityService{db: db, tokens: tokens, revoked: revoked, log: log}
}

// Resolve validates a token and loads the principal it names.
func (s *IdentityService) Resolve(ctx context.Context, token string) (permission.Principal, *auth.Claims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return permission.Principal{}, nil, apperrors.Unauthenticated("Could not validate credentials")
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return permission.Principal{}, nil, err
		}
		if revoked {
			return permission.Principal{}, nil, apperrors.Unauthenticated("Token has been revoked")
		}
	}

	userID, organizationID, err := claims.ParseIDs()
	if err != nil {
		return permission.Principal{}, nil, apperrors.Unauthenticated("Could not validate credentials")
	}

	p, err := s.LoadPrincipal(ctx, userID)
	if err != nil {
		return permission.Principal{}, nil, err
	}
	if p.OrganizationID != organizationID {
		return permission.Principal{}, nil, apperrors.Unauthenticated("Could not validate credentials")
	}
	if !p.IsActive {
		return permission.Principal{}, nil, apperrors.Forbidden("Inactive user")
	}
	return p, claims, nil
}

// LoadPrincipal materializes a user with roles and permissions.
// Roles from other organizations are ignored even if a join row exists.
func (s *IdentityService) LoadPrincipal(ctx context.Context, userID uuid.UUID) (permission.Principal, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Roles.Permissions").First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return permission.Principal{}, apperrors.Unauthenticated("User not found")
		}
		return permission.Principal{}, err
	}
	return PrincipalFromUser(user), nil
}

// PrincipalFromUser converts a user loaded with Roles.Permissions.
func PrincipalFromUser(user models.User) permission.Principal {
	p := permission.Principal{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Email:          user.Email,
		IsActive:       user.IsActive,
	}
	for _, r := range user.Roles {
		if r.OrganizationID != user.OrganizationID {
			continue
		}
		names := r.PermissionNames()
		sort.Strings(names)
		p.Roles = append(p.Roles, permission.Role{
			ID:             r.ID,
			Name:           r.Name,
			OrganizationID: r.OrganizationID,
			Permissions:    names,
		})
	}
	sort.Slice(p.Roles, func(i, j int) bool { return p.Roles[i].Name < p.Roles[j].Name })
	return p
}
