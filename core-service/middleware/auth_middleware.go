package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/utils/auth"
	"bcm-backend/shared/utils/permission"
	"bcm-backend/shared/utils/response"
)

// Context keys set by AuthMiddleware.
const (
	PrincipalKey = "principal"
	UserIDKey    = "userID"
)

// TokenResolver turns a bearer token into the principal of the request.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (permission.Principal, *auth.Claims, error)
}

// AuthMiddleware resolves the bearer token into a principal loaded from the current
// role assignments and stores it in both the gin and the request context.
func AuthMiddleware(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ExtractTokenFromHeader(c.Request)
		if err != nil {
			response.Abort(c, err)
			return
		}

		principal, claims, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			response.Abort(c, err)
			return
		}

		ctx := auth.WithClaims(c.Request.Context(), claims)
		ctx = permission.WithPrincipal(ctx, principal)
		c.Request = c.Request.WithContext(ctx)

		c.Set(PrincipalKey, principal)
		c.Set(UserIDKey, principal.UserID)
		c.Next()
	}
}

// ExtractTokenFromHeader returns the token of an "Authorization: Bearer <token>" header.
func ExtractTokenFromHeader(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperrors.Unauthenticated("Authorization header is required")
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperrors.Unauthenticated("Invalid authorization format. Expected Bearer {token}")
	}
	return parts[1], nil
}

// CurrentPrincipal returns the principal stored by AuthMiddleware.
func CurrentPrincipal(c *gin.Context) (permission.Principal, bool) {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(permission.Principal); ok {
			return p, true
		}
	}
	return permission.FromContext(c.Request.Context())
}
