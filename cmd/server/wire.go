// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"marketplace_backend/internal/app"
	"marketplace_backend/internal/billing"
	"marketplace_backend/internal/category"
	"marketplace_backend/internal/city"
	"marketplace_backend/internal/config"
	"marketplace_backend/internal/fieldtemplate"
	"marketplace_backend/internal/firebase"
	"marketplace_backend/internal/jobs"
	"marketplace_backend/internal/listing"
	"marketplace_backend/internal/notification"
	"marketplace_backend/internal/platform/logger"
	"marketplace_backend/internal/user"

	"marketplace_backend/internal/assistant"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform layer
		logger.New,
		provideDatabase,
		provideWriteBreaker,
		provideFileStorage,
		provideCleanup,

		firebase.NewFirebaseService,

		// Repositories
		user.NewGORMRepository,
		city.NewGORMRepository,
		category.NewGORMRepository,
		fieldtemplate.NewGORMRepository,
		listing.NewGORMRepository,
		notification.NewGORMRepository,

		// Services
		user.NewService,
		category.NewService,
		fieldtemplate.NewService,
		billing.NewService,
		notification.NewService,
		provideAssistantService,
		listing.NewService,

		// Handlers
		user.NewHandler,
		city.NewHandler,
		category.NewHandler,
		fieldtemplate.NewHandler,
		listing.NewHandler,
		notification.NewHandler,
		assistant.NewHandler,

		// Background jobs
		jobs.NewListingExpiryJob,

		// Application layer
		app.NewServer,
	)
	return nil, nil, nil
}
