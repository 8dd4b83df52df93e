package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bcm-backend/shared/apperrors"
	"bcm-backend/shared/utils/permission"
	"bcm-backend/shared/utils/response"
)

// Gate builds route guards that evaluate a static requirement against the request principal.
type Gate struct {
	metrics *Metrics
	log     logrus.FieldLogger
}

func NewGate(metrics *Metrics, log logrus.FieldLogger) *Gate {
	return &Gate{metrics: metrics, log: log}
}

// Permissions requires every named permission.
func (g *Gate) Permissions(names ...string) gin.HandlerFunc {
	return g.Require(permission.AllPermissions(names...))
}

// Roles requires at least one of the named roles.
func (g *Gate) Roles(names ...string) gin.HandlerFunc {
	return g.Require(permission.AnyRole(names...))
}

// Require aborts with 403 unless the principal satisfies req. It must run after AuthMiddleware.
func (g *Gate) Require(req permission.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			response.Abort(c, apperrors.Unauthenticated("User not authenticated"))
			return
		}

		if err := permission.Authorize(principal, req); err != nil {
			reason := permission.Reason(err)
			g.metrics.RecordDenial(reason)
			g.log.WithFields(logrus.Fields{
				"user_id":     principal.UserID,
				"org_id":      principal.OrganizationID,
				"requirement": req.String(),
				"reason":      reason,
				"path":        c.FullPath(),
			}).Info("access denied")
			response.Abort(c, err)
			return
		}
		c.Next()
	}
}
