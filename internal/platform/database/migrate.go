// File: internal/platform/database/migrate.go
package database

import (
	"fmt"

	"marketplace_backend/internal/category"
	"marketplace_backend/internal/city"
	"marketplace_backend/internal/fieldtemplate"
	"marketplace_backend/internal/listing"
	"marketplace_backend/internal/notification"
	"marketplace_backend/internal/user"

	"gorm.io/gorm"
)

// Migrate applies the schema for every persisted model. Ordering matters for
// the foreign-key constraints.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&user.User{},
		&city.City{},
		&category.Category{},
		&fieldtemplate.FieldTemplate{},
		&listing.Listing{},
		&listing.ListingImage{},
		&listing.FieldValue{},
		&notification.Notification{},
	); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}
