package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims identify the principal only. Roles and permissions are never embedded;
// they are loaded from the database on every request.
type Claims struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Email          string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 access tokens.
type TokenManager struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenManager returns a TokenManager. An empty secret falls back to a development key.
func NewTokenManager(secret, issuer string, lifetime time.Duration) *TokenManager {
	if secret == "" {
		secret = "fallback-secret-key-for-development"
	}
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &TokenManager{
		secret:   []byte(secret),
		issuer:   issuer,
		lifetime: lifetime,
		now:      time.Now,
	}
}

// IssuedToken is a signed token and its identifying metadata.
type IssuedToken struct {
	Token     string    `json:"access_token"`
	TokenType string    `json:"token_type"`
	ID        string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Generate signs a new access token for the user.
func (m *TokenManager) Generate(userID, organizationID uuid.UUID, email string) (*IssuedToken, error) {
	tokenID, err := GenerateRandomToken(16)
	if err != nil {
		return nil, err
	}

	now := m.now()
	expiresAt := now.Add(m.lifetime)
	claims := Claims{
		UserID:         userID.String(),
		OrganizationID: organizationID.String(),
		Email:          email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Issuer:    m.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{Token: signed, TokenType: "bearer", ID: tokenID, ExpiresAt: expiresAt}, nil
}

// Validate parses a token and verifies signature, issuer and expiry.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	options := []jwt.ParserOption{jwt.WithTimeFunc(m.now)}
	if m.issuer != "" {
		options = append(options, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return m.secret, nil
	}, options...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ID == "" {
		return nil, errors.New("token has no id")
	}
	return claims, nil
}

// ParseIDs returns the user and organization ids carried by the claims.
func (c *Claims) ParseIDs() (userID, organizationID uuid.UUID, err error) {
	if userID, err = uuid.Parse(c.UserID); err != nil {
		return uuid.Nil, uuid.Nil, errors.New("invalid user id in token")
	}
	if organizationID, err = uuid.Parse(c.OrganizationID); err != nil {
		return uuid.Nil, uuid.Nil, errors.New("invalid organization id in token")
	}
	return userID, organizationID, nil
}

// Remaining returns how long the token stays valid from now.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

type claimsKey struct{}

// WithClaims stores the validated token claims in ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored in ctx, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}
