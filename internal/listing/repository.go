// File: internal/listing/repository.go
package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for listing data operations.
type Repository interface {
	// Save persists the listing's core fields and replaces its field-value
	// rows with the given mapping in one transaction: readers observe the
	// old full set or the new full set, never a partial one.
	Save(ctx context.Context, listing *Listing, fieldValues map[string]string) error

	FindByID(ctx context.Context, id uuid.UUID, preloadAssociations bool) (*Listing, error)
	Search(ctx context.Context, filter SearchFilter) ([]Listing, *common.Pagination, error)
	FindByUser(ctx context.Context, userID uuid.UUID, query MyListingsQuery) ([]Listing, *common.Pagination, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddImages(ctx context.Context, images []ListingImage) error
	RemoveImages(ctx context.Context, listingID uuid.UUID, imageIDs []uuid.UUID) ([]ListingImage, error)
	DeactivateExpired(ctx context.Context, now time.Time) ([]Listing, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM listing repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) preloader(query *gorm.DB) *gorm.DB {
	return query.Preload("User").
		Preload("Category").
		Preload("SubCategory").
		Preload("City").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("listing_images.sort_order ASC")
		}).
		Preload("FieldValues")
}

func (r *gormRepository) Save(ctx context.Context, listing *Listing, fieldValues map[string]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Images", "FieldValues", "User", "Category", "SubCategory", "City").
			Save(listing).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
				return common.ErrConflict.WithDetails("The listing conflicts with an existing record.")
			}
			return fmt.Errorf("failed to save listing: %w", err)
		}

		// Full replacement: no partial patch of field values exists.
		if err := tx.Where("listing_id = ?", listing.ID).Delete(&FieldValue{}).Error; err != nil {
			return fmt.Errorf("failed to clear field values: %w", err)
		}
		if len(fieldValues) > 0 {
			rows := make([]FieldValue, 0, len(fieldValues))
			for key, value := range fieldValues {
				if strings.TrimSpace(value) == "" {
					continue
				}
				rows = append(rows, FieldValue{ListingID: listing.ID, Key: key, Value: value})
			}
			if len(rows) > 0 {
				if err := tx.Create(&rows).Error; err != nil {
					return fmt.Errorf("failed to insert field values: %w", err)
				}
			}
		}
		return nil
	})
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID, preloadAssociations bool) (*Listing, error) {
	var listing Listing
	query := r.db.WithContext(ctx)
	if preloadAssociations {
		query = r.preloader(query)
	}
	err := query.First(&listing, "listings.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Listing not found.")
		}
		return nil, err
	}
	return &listing, nil
}

// Search returns publicly visible listings matching the filter. Only ACTIVE
// listings appear on the browse page.
func (r *gormRepository) Search(ctx context.Context, filter SearchFilter) ([]Listing, *common.Pagination, error) {
	var listings []Listing
	var totalItems int64

	dbQuery := r.db.WithContext(ctx).Model(&Listing{}).
		Where("listings.status = ?", StatusActive)
	dbQuery = applySearchFilter(dbQuery, filter)

	if err := dbQuery.Count(&totalItems).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count listings: %w", err)
	}

	pagination := common.NewPagination(totalItems, filter.Page, filter.PageSize)
	err := r.preloader(dbQuery).
		Order(orderClause(filter.Sort)).
		Offset((pagination.CurrentPage - 1) * pagination.PageSize).
		Limit(pagination.PageSize).
		Find(&listings).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search listings: %w", err)
	}
	return listings, pagination, nil
}

func (r *gormRepository) FindByUser(ctx context.Context, userID uuid.UUID, query MyListingsQuery) ([]Listing, *common.Pagination, error) {
	var listings []Listing
	var totalItems int64

	dbQuery := r.db.WithContext(ctx).Model(&Listing{}).Where("listings.user_id = ?", userID)
	if query.Status != nil {
		dbQuery = dbQuery.Where("listings.status = ?", *query.Status)
	}

	if err := dbQuery.Count(&totalItems).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count user listings: %w", err)
	}

	pagination := common.NewPagination(totalItems, query.Page, query.PageSize)
	err := r.preloader(dbQuery).
		Order("listings.created_at DESC").
		Offset((pagination.CurrentPage - 1) * pagination.PageSize).
		Limit(pagination.PageSize).
		Find(&listings).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch user listings: %w", err)
	}
	return listings, pagination, nil
}

func (r *gormRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	result := r.db.WithContext(ctx).Model(&Listing{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Listing not found.")
	}
	return nil
}

// Delete removes the listing with its field values and image rows in one
// transaction. Stored image files are the caller's concern.
func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Delete(&FieldValue{}).Error; err != nil {
			return fmt.Errorf("failed to delete field values: %w", err)
		}
		if err := tx.Where("listing_id = ?", id).Delete(&ListingImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete listing images: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&Listing{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return common.ErrNotFound.WithDetails("Listing not found.")
		}
		return nil
	})
}

func (r *gormRepository) AddImages(ctx context.Context, images []ListingImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&images).Error
}

// RemoveImages deletes the given image rows of a listing and returns what was
// deleted so the caller can clean up the stored files.
func (r *gormRepository) RemoveImages(ctx context.Context, listingID uuid.UUID, imageIDs []uuid.UUID) ([]ListingImage, error) {
	if len(imageIDs) == 0 {
		return nil, nil
	}
	var images []ListingImage
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND id IN ?", listingID, imageIDs).
		Find(&images).Error
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, nil
	}
	err = r.db.WithContext(ctx).
		Where("listing_id = ? AND id IN ?", listingID, imageIDs).
		Delete(&ListingImage{}).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}

// DeactivateExpired flips ACTIVE listings whose active-until has passed to
// INACTIVE and returns them for notification.
func (r *gormRepository) DeactivateExpired(ctx context.Context, now time.Time) ([]Listing, error) {
	var expired []Listing
	err := r.db.WithContext(ctx).
		Where("status = ? AND active_until IS NOT NULL AND active_until <= ?", StatusActive, now).
		Find(&expired).Error
	if err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(expired))
	for i, l := range expired {
		ids[i] = l.ID
	}
	err = r.db.WithContext(ctx).Model(&Listing{}).
		Where("id IN ?", ids).
		Update("status", StatusInactive).Error
	if err != nil {
		return nil, err
	}
	for i := range expired {
		expired[i].Status = StatusInactive
	}
	return expired, nil
}
