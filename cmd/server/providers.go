// File: cmd/server/providers.go
package main

import (
	"log"

	"marketplace_backend/internal/assistant"
	"marketplace_backend/internal/config"
	"marketplace_backend/internal/filestorage"
	"marketplace_backend/internal/platform/breaker"
	"marketplace_backend/internal/platform/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// provideDatabase opens the GORM connection and applies the schema.
func provideDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewGORM(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// provideWriteBreaker builds the circuit breaker that guards listing writes.
func provideWriteBreaker(cfg *config.Config) breaker.Breaker {
	return breaker.New(cfg.BreakerFailureThreshold, cfg.BreakerCooldown)
}

func provideFileStorage(cfg *config.Config, logger *zap.Logger) (*filestorage.Service, error) {
	return filestorage.NewService(cfg.ImageStoragePath, logger.Named("FileStorage"))
}

// provideAssistantService returns a nil service when no API key is configured;
// the assistant handler skips route registration in that case.
func provideAssistantService(cfg *config.Config, logger *zap.Logger) (assistant.Service, error) {
	if cfg.GenAIAPIKey == "" {
		logger.Info("GENAI_API_KEY not set, description assistant disabled")
		return nil, nil
	}
	return assistant.NewService(cfg.GenAIAPIKey, cfg.GenAIModel, logger.Named("Assistant"))
}

func provideCleanup(logger *zap.Logger, db *gorm.DB) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
	}
}
