package main

import (
	"go.uber.org/zap"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/infrastructure/config"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/infrastructure/logger"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/infrastructure/persistence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	db, err := persistence.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	log.Info("Running migrations",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)
	if err := persistence.Migrate(db); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	log.Info("Migrations applied")
}
