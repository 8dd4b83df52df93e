// Package jobs runs the periodic maintenance tasks of the core service.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bcm-backend/shared/database/models"
)

// AuditRetention deletes audit log rows older than MaxAge.
type AuditRetention struct {
	db     *gorm.DB
	maxAge time.Duration
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewAuditRetention(db *gorm.DB, maxAge time.Duration, log logrus.FieldLogger) *AuditRetention {
	return &AuditRetention{db: db, maxAge: maxAge, log: log, now: time.Now}
}

// Purge removes expired rows and returns how many were deleted. A non-positive
// MaxAge keeps everything.
func (r *AuditRetention) Purge(ctx context.Context) (int64, error) {
	if r.maxAge <= 0 {
		return 0, nil
	}
	cutoff := r.now().Add(-r.maxAge)
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("purge audit logs: %w", result.Error)
	}
	r.log.WithFields(logrus.Fields{"deleted": result.RowsAffected, "cutoff": cutoff}).Info("audit logs purged")
	return result.RowsAffected, nil
}

// Scheduler runs registered jobs on cron schedules.
type Scheduler struct {
	cron *cron.Cron
	log  logrus.FieldLogger
	ctx  context.Context
}

func NewScheduler(log *logrus.Logger) *Scheduler {
	logger := cron.PrintfLogger(log)
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		log:  log,
		ctx:  context.Background(),
	}
}

// Add schedules job under spec, a standard five field cron expression.
func (s *Scheduler) Add(name, spec string, job func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := job(s.ctx); err != nil {
			s.log.WithError(err).WithField("job", name).Error("scheduled job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.log.WithFields(logrus.Fields{"job": name, "schedule": spec}).Info("job scheduled")
	return nil
}

// Run starts the scheduler and blocks until ctx is done and running jobs have finished.
func (s *Scheduler) Run(ctx context.Context) error {
	s.ctx = ctx
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}
