package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bcm-backend/shared/config"
	"bcm-backend/shared/database/models"
)

var DB *gorm.DB

// getLogLevel returns appropriate log level based on environment
func getLogLevel(cfg *config.Config) logger.LogLevel {
	if cfg.IsLocalDatabase() {
		return logger.Warn
	}
	return logger.Error
}

// DSN builds the postgres connection string from configuration
func DSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
	)
}

// GormConfig returns the gorm settings shared by the service and the CLI tools.
// SQL warnings are routed through the logrus logger.
func GormConfig(cfg *config.Config, log *logrus.Logger) *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  getLogLevel(cfg),
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true,
	}
}

// Open connects to postgres and configures the connection pool
func Open(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), GormConfig(cfg, log))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established")
	return db, nil
}

// InitDatabase opens the global connection and runs migrations when enabled
func InitDatabase(cfg *config.Config, log *logrus.Logger) error {
	db, err := Open(cfg, log)
	if err != nil {
		return err
	}
	DB = db

	if err := SetupJoinTables(DB); err != nil {
		return err
	}
	if !cfg.DBAutoMigrate {
		log.Info("automatic migration disabled")
		return nil
	}
	if err := Migrate(DB, log); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// MigrationModels lists every model in creation order.
func MigrationModels() []interface{} {
	return []interface{}{
		&models.Organization{},
		&models.Permission{},
		&models.Role{},
		&models.RolePermission{},
		&models.Location{},
		&models.Department{},
		&models.User{},
		&models.UserRole{},
		&models.Vendor{},
		&models.Application{},
		&models.Process{},
		&models.ProcessDependency{},
		&models.BIACategory{},
		&models.BIAImpactCriterion{},
		&models.BIAImpactCriterionLevel{},
		&models.BIAFramework{},
		&models.BIAFrameworkParameter{},
		&models.BIAFrameworkRTO{},
		&models.BIATimeframe{},
		&models.AuditLog{},
	}
}

// SetupJoinTables binds the explicit join models to their many2many relations.
// It must run before migrations and before any association query.
func SetupJoinTables(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Role{}, "Permissions", &models.RolePermission{}); err != nil {
		return fmt.Errorf("setup role_permissions: %w", err)
	}
	if err := db.SetupJoinTable(&models.User{}, "Roles", &models.UserRole{}); err != nil {
		return fmt.Errorf("setup user_roles: %w", err)
	}
	if err := db.SetupJoinTable(&models.Process{}, "Dependencies", &models.ProcessDependency{}); err != nil {
		return fmt.Errorf("setup process_dependencies: %w", err)
	}
	return nil
}

// Migrate creates or updates every table
func Migrate(db *gorm.DB, log logrus.FieldLogger) error {
	log.Info("checking database schema")

	if err := SetupJoinTables(db); err != nil {
		return err
	}

	migrator := db.Migrator()
	created := 0
	for _, model := range MigrationModels() {
		if !migrator.HasTable(model) {
			log.WithField("model", fmt.Sprintf("%T", model)).Info("creating table")
			created++
		}

		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	log.WithField("tables_created", created).Info("database schema is up to date")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// CloseDatabase closes the database connection
func CloseDatabase() error {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
