package main

import (
	"bcm-backend/shared/config"
	"bcm-backend/shared/database"
	"bcm-backend/shared/logger"
)

func main() {
	cfg := config.LoadConfig()
	log := logger.Init(cfg.LogLevel, cfg.LogFormat)
	log.Info("starting database seeding")

	if err := database.InitDatabase(cfg, log); err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer database.CloseDatabase()

	catalog, err := database.LoadCatalog()
	if err != nil {
		log.WithError(err).Fatal("failed to load permission catalog")
	}

	if err := database.NewSeeder(database.GetDB(), catalog, log).SeedDatabase(cfg); err != nil {
		log.WithError(err).Fatal("failed to seed database")
	}

	log.WithField("super_admin", cfg.SuperAdminEmail).Info("database seeding completed")
}
