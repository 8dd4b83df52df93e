package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bcm-backend/shared/database/models"
	"bcm-backend/shared/utils/response"
)

// AuditRecorder persists one audit row per mutating request from a background worker.
type AuditRecorder struct {
	db      *gorm.DB
	log     logrus.FieldLogger
	entries chan models.AuditLog
}

func NewAuditRecorder(db *gorm.DB, log logrus.FieldLogger, buffer int) *AuditRecorder {
	if buffer <= 0 {
		buffer = 256
	}
	return &AuditRecorder{db: db, log: log, entries: make(chan models.AuditLog, buffer)}
}

// Middleware captures the request after the handler ran. Reads are not audited.
func (a *AuditRecorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}

		entry := models.AuditLog{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			Route:      c.FullPath(),
			StatusCode: c.Writer.Status(),
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			Duration:   time.Since(start).Milliseconds(),
			RequestID:  c.GetString(response.RequestIDKey),
		}
		if p, ok := CurrentPrincipal(c); ok {
			userID, orgID := p.UserID, p.OrganizationID
			entry.UserID = &userID
			entry.OrganizationID = &orgID
		}
		a.enqueue(entry)
	}
}

func (a *AuditRecorder) enqueue(entry models.AuditLog) {
	select {
	case a.entries <- entry:
	default:
		a.log.WithField("request_id", entry.RequestID).Warn("audit buffer full, dropping entry")
	}
}

// Run writes queued entries until ctx is done, then drains what is left.
func (a *AuditRecorder) Run(ctx context.Context) error {
	for {
		select {
		case entry := <-a.entries:
			a.save(entry)
		case <-ctx.Done():
			for {
				select {
				case entry := <-a.entries:
					a.save(entry)
				default:
					return nil
				}
			}
		}
	}
}

func (a *AuditRecorder) save(entry models.AuditLog) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := a.db.Create(&entry).Error; err != nil {
		a.log.WithError(err).WithField("request_id", entry.RequestID).Error("failed to save audit log")
	}
}
