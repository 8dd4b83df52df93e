package jobs

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bcm-backend/shared/database/dbtest"
	"bcm-backend/shared/database/models"
)

func TestAuditRetentionPurgesExpiredRows(t *testing.T) {
	db := dbtest.New(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, age := range []time.Duration{100 * 24 * time.Hour, 91 * 24 * time.Hour, 10 * 24 * time.Hour} {
		entry := models.AuditLog{Method: "POST", Path: "/api/roles", StatusCode: 201}
		require.NoError(t, db.Create(&entry).Error)
		require.NoError(t, db.Model(&entry).UpdateColumn("created_at", now.Add(-age)).Error)
	}

	retention := NewAuditRetention(db, 90*24*time.Hour, dbtest.Logger())
	retention.now = func() time.Time { return now }

	deleted, err := retention.Purge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var remaining int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}

func TestAuditRetentionDisabled(t *testing.T) {
	retention := NewAuditRetention(nil, 0, dbtest.Logger())
	deleted, err := retention.Purge(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestAuditRetentionReportsDatabaseErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "audit_logs" WHERE created_at < $1`)).
		WillReturnError(errors.New("relation does not exist"))

	_, err = NewAuditRetention(db, time.Hour, dbtest.Logger()).Purge(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "purge audit logs")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchedulerRejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(dbtest.Logger())
	err := s.Add("broken", "not a schedule", func(context.Context) error { return nil })
	assert.Error(t, err)
	assert.NoError(t, s.Add("purge", "0 3 * * *", func(context.Context) error { return nil }))
}

func TestSchedulerStopsWithContext(t *testing.T) {
	s := NewScheduler(dbtest.Logger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
