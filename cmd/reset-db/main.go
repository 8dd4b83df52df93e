package main

import (
	"gorm.io/gorm"

	"bcm-backend/shared/config"
	"bcm-backend/shared/database"
	"bcm-backend/shared/logger"
)

func main() {
	cfg := config.LoadConfig()
	log := logger.Init(cfg.LogLevel, cfg.LogFormat)
	log.Info("starting database reset")

	db, err := database.Open(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if err := database.SetupJoinTables(db); err != nil {
		log.WithError(err).Fatal("failed to set up join tables")
	}

	for _, table := range []string{"process_applications", "process_locations", "department_locations"} {
		log.WithField("table", table).Info("dropping table")
		if err := db.Migrator().DropTable(table); err != nil {
			log.WithError(err).WithField("table", table).Fatal("failed to drop table")
		}
	}

	// Dependents first.
	tables := database.MigrationModels()
	for i := len(tables) - 1; i >= 0; i-- {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(tables[i]); err != nil {
			log.WithError(err).Fatal("failed to resolve table name")
		}
		log.WithField("table", stmt.Schema.Table).Info("dropping table")
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			log.WithError(err).WithField("table", stmt.Schema.Table).Fatal("failed to drop table")
		}
	}

	log.Info("database reset completed, run the seed command to recreate tables and data")
}
