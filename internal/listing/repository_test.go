// File: internal/listing/repository_test.go
package listing_test

import (
	"context"
	"testing"
	"time"

	"marketplace_backend/internal/category"
	"marketplace_backend/internal/city"
	"marketplace_backend/internal/fieldtemplate"
	"marketplace_backend/internal/listing"
	"marketplace_backend/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type repoFixture struct {
	db       *gorm.DB
	repo     listing.Repository
	seller   *user.User
	city     *city.City
	category *category.Category
}

func setupRepo(t *testing.T) *repoFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&city.City{},
		&category.Category{},
		&fieldtemplate.FieldTemplate{},
		&listing.Listing{},
		&listing.ListingImage{},
		&listing.FieldValue{},
	))

	seller := &user.User{FirebaseUID: "test-uid", Role: "user", Plan: user.PlanPayPerListing}
	require.NoError(t, db.Create(seller).Error)

	testCity := &city.City{Name: "Springfield", Slug: "springfield"}
	require.NoError(t, db.Create(testCity).Error)

	vehicles := &category.Category{Name: "Vehicles", Slug: "vehicles", IsActive: true}
	require.NoError(t, db.Create(vehicles).Error)

	return &repoFixture{
		db:       db,
		repo:     listing.NewGORMRepository(db),
		seller:   seller,
		city:     testCity,
		category: vehicles,
	}
}

func (f *repoFixture) newListing(title string, priceCents int64, status listing.Status) *listing.Listing {
	return &listing.Listing{
		UserID:     f.seller.ID,
		CategoryID: f.category.ID,
		CityID:     f.city.ID,
		Title:      title,
		PriceCents: priceCents,
		Currency:   "EUR",
		Condition:  listing.ConditionUsed,
		Status:     status,
	}
}

func (f *repoFixture) fieldValues(t *testing.T, listingID uuid.UUID) map[string]string {
	t.Helper()
	var rows []listing.FieldValue
	require.NoError(t, f.db.Where("listing_id = ?", listingID).Find(&rows).Error)
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values
}

func TestSave_ReplacesFieldValuesAtomically(t *testing.T) {
	f := setupRepo(t)
	ctx := context.Background()

	l := f.newListing("Used Golf 7 sale", 350000, listing.StatusDraft)
	require.NoError(t, f.repo.Save(ctx, l, map[string]string{"a": "1", "b": "2"}))
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, f.fieldValues(t, l.ID))

	require.NoError(t, f.repo.Save(ctx, l, map[string]string{"a": "3"}))

	values := f.fieldValues(t, l.ID)
	assert.Equal(t, map[string]string{"a": "3"}, values)
	assert.Len(t, values, 1)
}

func TestSave_DropsEmptyValues(t *testing.T) {
	f := setupRepo(t)
	ctx := context.Background()

	l := f.newListing("Used Golf 7 sale", 350000, listing.StatusDraft)
	require.NoError(t, f.repo.Save(ctx, l, map[string]string{"km": "124000", "vin": "   "}))

	assert.Equal(t, map[string]string{"km": "124000"}, f.fieldValues(t, l.ID))
}

func TestSave_EmptySubmissionClearsValues(t *testing.T) {
	f := setupRepo(t)
	ctx := context.Background()

	l := f.newListing("Used Golf 7 sale", 350000, listing.StatusDraft)
	require.NoError(t, f.repo.Save(ctx, l, map[string]string{"km": "124000"}))
	require.NoError(t, f.repo.Save(ctx, l, map[string]string{}))

	assert.Empty(t, f.fieldValues(t, l.ID))
}

func TestDelete_RemovesFieldValueRows(t *testing.T) {
	f := setupRepo(t)
	ctx := context.Background()

	l := f.newListing("Used Golf 7 sale", 350000, listing.StatusDraft)
	require.NoError(t, f.repo.Save(ctx, l, map[string]string{"km": "124000"}))

	require.NoError(t, f.repo.Delete(ctx, l.ID))

	assert.Empty(t, f.fieldValues(t, l.ID))
	_, err := f.repo.FindByID(ctx, l.ID, false)
	require.Error(t, err)
}

func TestDelete_NotFound(t *testing.T) {
	f := setupRepo(t)

	err := f.repo.Delete(context.Background(), uuid.New())

	require.Error(t, err)
}

func TestFindByID_NotFound(t *testing.T) {
	f := setupRepo(t)

	_, err := f.repo.FindByID(context.Background(), uuid.New(), false)

	require.Error(t, err)
}

func TestSearch_OnlyActiveListings(t *testing.T) {
	f := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, f.repo.Save(ctx, f.newListing("Active bike", 10000, listing.StatusActive), nil))
	require.NoError(t, f.repo.Save(ctx, f.newListing("Draft bike", 10000, listing.StatusDraft), nil))
	require.NoError(t, f.repo.Save(ctx, f.newListing("Removed bike", 10000, listing.StatusRemoved), nil))

	results, pagination, err := f.repo.Search(ctx, listing.SearchFilter{})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Active bike", results[0].Title)
	assert.Equal(t, int64(1), pagination.TotalItems)
}

func TestSearch_PriceBoundsInclusive(t *testing.T) {
	f := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, f.repo.Save(ctx, f.newListing("Cheap", 999, listing.StatusActive), nil))
	require.NoError(t, f.repo.Save(ctx, f.newListing("Boundary", 1000, listing.StatusActive), nil))
	require.NoError(t, f.repo.Save(ctx, f.newListing("Expensive", 1001, listing.StatusActive), nil))

	maxCents := int64(1000)
	results, _, err := f.repo.Search(ctx, listing.SearchFilter{PriceMaxCents: &maxCents})

	require.NoError(t, err)
	titles := make([]string, len(results))
	for i, l := range results {
		titles[i] = l.Title
	}
	assert.ElementsMatch(t, []string{"Cheap", "Boundary"}, titles)
}

func TestSearch_DynamicFieldFilter(t *testing.T) {
	f := setupRepo(t)
	ctx := context.Background()

	golf := f.newListing("Golf", 350000, listing.StatusActive)
	require.NoError(t, f.repo.Save(ctx, golf, map[string]string{"brand": "VW"}))
	polo := f.newListing("Polo", 250000, listing.StatusActive)
	require.NoError(t, f.repo.Save(ctx, polo, map[string]string{"brand": "Toyota"}))

	results, _, err := f.repo.Search(ctx, listing.SearchFilter{
		Fields: map[string]string{"brand": "VW"},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Golf", results[0].Title)
}

func TestSearch_SortByPrice(t *testing.T) {
	f := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, f.repo.Save(ctx, f.newListing("Mid", 2000, listing.StatusActive), nil))
	require.NoError(t, f.repo.Save(ctx, f.newListing("Low", 1000, listing.StatusActive), nil))
	require.NoError(t, f.repo.Save(ctx, f.newListing("High", 3000, listing.StatusActive), nil))

	results, _, err := f.repo.Search(ctx, listing.SearchFilter{Sort: listing.SortPriceAsc})

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []int64{1000, 2000, 3000}, []int64{results[0].PriceCents, results[1].PriceCents, results[2].PriceCents})
}

func TestDeactivateExpired(t *testing.T) {
	f := setupRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired := f.newListing("Expired", 1000, listing.StatusActive)
	expired.ActiveUntil = &past
	require.NoError(t, f.repo.Save(ctx, expired, nil))

	current := f.newListing("Current", 1000, listing.StatusActive)
	current.ActiveUntil = &future
	require.NoError(t, f.repo.Save(ctx, current, nil))

	forever := f.newListing("Forever", 1000, listing.StatusActive)
	require.NoError(t, f.repo.Save(ctx, forever, nil))

	flipped, err := f.repo.DeactivateExpired(ctx, now)

	require.NoError(t, err)
	require.Len(t, flipped, 1)
	assert.Equal(t, "Expired", flipped[0].Title)
	assert.Equal(t, listing.StatusInactive, flipped[0].Status)

	reloaded, err := f.repo.FindByID(ctx, current.ID, false)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusActive, reloaded.Status)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	f := setupRepo(t)

	err := f.repo.UpdateStatus(context.Background(), uuid.New(), listing.StatusRemoved)

	require.Error(t, err)
}
