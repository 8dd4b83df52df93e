package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/database/models"
	"bcm-backend/shared/utils/auth"
	"bcm-backend/shared/utils/permission"
)

type LoginRequest struct {
	Email          string     `json:"email" binding:"required"`
	Password       string     `json:"password" binding:"required"`
	OrganizationID *uuid.UUID `json:"organization_id"`
}

type LoginResponse struct {
	AccessToken    string    `json:"access_token"`
	TokenType      string    `json:"token_type"`
	ExpiresAt      time.Time `json:"expires_at"`
	UserID         uuid.UUID `json:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

// Me describes the authenticated principal.
type Me struct {
	UserID         uuid.UUID `json:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Email          string    `json:"email"`
	Roles          []string  `json:"roles"`
	Permissions    []string  `json:"permissions"`
}

type AuthService struct {
	db      *gorm.DB
	tokens  *auth.TokenManager
	revoked RevocationStore
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewAuthService(db *gorm.DB, tokens *auth.TokenManager, revoked RevocationStore, log logrus.FieldLogger) *AuthService {
	return &AuthService{db: db, tokens: tokens, revoked: revoked, log: log, now: time.Now}
}

// Login checks credentials and issues an access token. Emails are unique only within
// an organization. Only an address whose password matches in several organizations
// requires organization_id.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := normalizeEmail(req.Email)

	q := s.db.WithContext(ctx).Where("email = ?", email)
	if req.OrganizationID != nil {
		q = q.Where("organization_id = ?", *req.OrganizationID)
	}
	var candidates []models.User
	if err := q.Find(&candidates).Error; err != nil {
		return nil, err
	}

	var matched []models.User
	for _, candidate := range candidates {
		if auth.CheckPasswordHash(req.Password, candidate.PasswordHash) {
			matched = append(matched, candidate)
		}
	}

	if len(matched) == 0 {
		if len(candidates) > 0 {
			s.log.WithField("email", email).Warn("failed login attempt")
		}
		return nil, apperrors.Unauthenticated("Invalid credentials")
	}
	if len(matched) > 1 {
		return nil, apperrors.Validation("organization_id is required: email is registered in several organizations")
	}

	user := matched[0]
	if !user.IsActive {
		return nil, apperrors.Forbidden("Inactive user")
	}

	issued, err := s.tokens.Generate(user.ID, user.OrganizationID, user.Email)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		s.log.WithError(err).Warn("failed to record last login")
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "organization_id": user.OrganizationID}).Info("user logged in")
	return &LoginResponse{
		AccessToken:    issued.Token,
		TokenType:      issued.TokenType,
		ExpiresAt:      issued.ExpiresAt,
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
	}, nil
}

// Logout revokes the token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return apperrors.Unauthenticated("Could not validate credentials")
	}
	if s.revoked == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.Remaining(s.now())); err != nil {
		return err
	}
	s.log.WithField("user_id", claims.UserID).Info("user logged out")
	return nil
}

// ChangePassword replaces the caller's password after verifying the current one.
// The presented token is revoked so the client has to log in again.
func (s *AuthService) ChangePassword(ctx context.Context, p permission.Principal, claims *auth.Claims, req ChangePasswordRequest) error {
	user, err := findVisible[models.User](ctx, s.db, p, p.UserID, "User")
	if err != nil {
		return err
	}
	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return apperrors.Unauthenticated("Current password is incorrect")
	}

	fields := fieldErrors{}
	fields.check("new_password", auth.ValidatePassword(req.NewPassword))
	if req.CurrentPassword == req.NewPassword {
		fields.add("new_password", "new password must be different from current password")
	}
	if err := fields.err(); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error; err != nil {
		return err
	}
	s.log.WithField("user_id", user.ID).Info("password changed")

	if claims != nil && s.revoked != nil {
		if err := s.revoked.Revoke(ctx, claims.ID, claims.Remaining(s.now())); err != nil {
			s.log.WithError(err).Warn("failed to revoke token after password change")
		}
	}
	return nil
}

// Describe returns the principal's roles and effective permissions.
func (s *AuthService) Describe(p permission.Principal) Me {
	return Me{
		UserID:         p.UserID,
		OrganizationID: p.OrganizationID,
		Email:          p.Email,
		Roles:          p.RoleNames(),
		Permissions:    p.PermissionNames(),
	}
}
