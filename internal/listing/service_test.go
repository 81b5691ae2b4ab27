// File: internal/listing/service_test.go
package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace_backend/internal/category"
	"marketplace_backend/internal/common"
	"marketplace_backend/internal/config"
	"marketplace_backend/internal/fieldtemplate"
	"marketplace_backend/internal/filestorage"
	"marketplace_backend/internal/notification"
	"marketplace_backend/internal/user"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, l *Listing, fieldValues map[string]string) error {
	args := m.Called(ctx, l, fieldValues)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID, preload bool) (*Listing, error) {
	args := m.Called(ctx, id, preload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Listing), args.Error(1)
}

func (m *MockRepository) Search(ctx context.Context, filter SearchFilter) ([]Listing, *common.Pagination, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]Listing), args.Get(1).(*common.Pagination), args.Error(2)
}

func (m *MockRepository) FindByUser(ctx context.Context, userID uuid.UUID, query MyListingsQuery) ([]Listing, *common.Pagination, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]Listing), args.Get(1).(*common.Pagination), args.Error(2)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) AddImages(ctx context.Context, images []ListingImage) error {
	args := m.Called(ctx, images)
	return args.Error(0)
}

func (m *MockRepository) RemoveImages(ctx context.Context, listingID uuid.UUID, imageIDs []uuid.UUID) ([]ListingImage, error) {
	args := m.Called(ctx, listingID, imageIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ListingImage), args.Error(1)
}

func (m *MockRepository) DeactivateExpired(ctx context.Context, now time.Time) ([]Listing, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Listing), args.Error(1)
}

type MockTemplateService struct {
	mock.Mock
}

func (m *MockTemplateService) ListActiveTemplates(ctx context.Context, categoryID uuid.UUID) ([]fieldtemplate.FieldTemplate, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fieldtemplate.FieldTemplate), args.Error(1)
}

func (m *MockTemplateService) ListAllTemplates(ctx context.Context, categoryID uuid.UUID) ([]fieldtemplate.FieldTemplate, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fieldtemplate.FieldTemplate), args.Error(1)
}

func (m *MockTemplateService) CreateTemplate(ctx context.Context, categoryID uuid.UUID, req fieldtemplate.AdminCreateTemplateRequest) (*fieldtemplate.FieldTemplate, error) {
	args := m.Called(ctx, categoryID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fieldtemplate.FieldTemplate), args.Error(1)
}

func (m *MockTemplateService) UpdateTemplate(ctx context.Context, id uuid.UUID, req fieldtemplate.AdminUpdateTemplateRequest) (*fieldtemplate.FieldTemplate, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fieldtemplate.FieldTemplate), args.Error(1)
}

func (m *MockTemplateService) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTemplateService) ListOrphanedKeys(ctx context.Context, categoryID uuid.UUID) ([]fieldtemplate.OrphanedKey, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fieldtemplate.OrphanedKey), args.Error(1)
}

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) AdminCreateCategory(ctx context.Context, req category.AdminCreateCategoryRequest) (*category.Category, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryService) AdminUpdateCategory(ctx context.Context, id uuid.UUID, req category.AdminUpdateCategoryRequest) (*category.Category, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryService) AdminDeleteCategory(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryService) GetCategoryByID(ctx context.Context, id uuid.UUID, preloadChildren bool) (*category.Category, error) {
	args := m.Called(ctx, id, preloadChildren)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryService) GetCategoryBySlug(ctx context.Context, slug string, preloadChildren bool) (*category.Category, error) {
	args := m.Called(ctx, slug, preloadChildren)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryService) GetCategoryTree(ctx context.Context, onlyActive bool) ([]category.Category, error) {
	args := m.Called(ctx, onlyActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]category.Category), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) GetOrCreateFromFirebaseToken(ctx context.Context, token *firebaseauth.Token) (*user.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id uuid.UUID, req user.UpdateProfileRequest) (*user.User, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) ResolveActiveUntil(u *user.User, now time.Time) *time.Time {
	args := m.Called(u, now)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*time.Time)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Notify(ctx context.Context, userID uuid.UUID, notifType notification.Type, message string, listingID *uuid.UUID) {
	m.Called(ctx, userID, notifType, message, listingID)
}

func (m *MockNotificationService) ListForUser(ctx context.Context, userID uuid.UUID, pq common.PaginationQuery) ([]notification.Notification, *common.Pagination, error) {
	args := m.Called(ctx, userID, pq)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]notification.Notification), args.Get(1).(*common.Pagination), args.Error(2)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockNotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// stubBreaker records interactions without any real state machine.
type stubBreaker struct {
	open      bool
	successes int
	failures  int
}

func (b *stubBreaker) IsOpen() bool    { return b.open }
func (b *stubBreaker) RecordSuccess() { b.successes++ }
func (b *stubBreaker) RecordFailure() { b.failures++ }

// --- Fixture ---

type serviceFixture struct {
	repo       *MockRepository
	templates  *MockTemplateService
	categories *MockCategoryService
	users      *MockUserService
	billing    *MockBillingService
	notifier   *MockNotificationService
	brk        *stubBreaker
	svc        Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	storage, err := filestorage.NewService(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	f := &serviceFixture{
		repo:       new(MockRepository),
		templates:  new(MockTemplateService),
		categories: new(MockCategoryService),
		users:      new(MockUserService),
		billing:    new(MockBillingService),
		notifier:   new(MockNotificationService),
		brk:        &stubBreaker{},
	}
	f.svc = NewService(
		f.repo, f.templates, f.categories, f.billing, f.users, f.notifier,
		storage, f.brk,
		&config.Config{DefaultCurrency: "EUR", PaidListingActiveDays: 30},
		zap.NewNop(),
	)
	return f
}

func topLevelCategory(id uuid.UUID) *category.Category {
	cat := &category.Category{Name: "Vehicles", Slug: "vehicles", IsActive: true}
	cat.ID = id
	return cat
}

// --- CreateListing ---

func TestCreateListing_PublishInvalid_NothingWritten(t *testing.T) {
	f := newServiceFixture(t)
	userID := uuid.New()
	categoryID := uuid.New()

	f.categories.On("GetCategoryByID", mock.Anything, categoryID, false).
		Return(topLevelCategory(categoryID), nil).Once()
	f.templates.On("ListActiveTemplates", mock.Anything, categoryID).
		Return([]fieldtemplate.FieldTemplate{{
			Key: "km", Label: "Kilometers", Type: fieldtemplate.TypeNumber, Required: true, IsActive: true,
		}}, nil).Once()

	_, err := f.svc.CreateListing(context.Background(), userID, CreateListingRequest{
		CategoryID: categoryID,
		CityID:     uuid.New(),
		Title:      "Used Golf 7 sale",
		Price:      "3500",
		Intent:     IntentPublish,
	}, map[string]string{"km": ""}, nil)

	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Contains(t, apiErr.Details, "Kilometers is required to publish.")
	f.repo.AssertNotCalled(t, "Save")
	assert.Zero(t, f.brk.failures)
}

func TestCreateListing_PublishValid(t *testing.T) {
	f := newServiceFixture(t)
	userID := uuid.New()
	categoryID := uuid.New()
	activeUntil := time.Now().UTC().Add(30 * 24 * time.Hour)
	seller := &user.User{Plan: user.PlanPayPerListing}
	seller.ID = userID

	f.categories.On("GetCategoryByID", mock.Anything, categoryID, false).
		Return(topLevelCategory(categoryID), nil).Once()
	f.templates.On("ListActiveTemplates", mock.Anything, categoryID).
		Return([]fieldtemplate.FieldTemplate{{
			Key: "km", Label: "Kilometers", Type: fieldtemplate.TypeNumber, Required: true, IsActive: true,
		}}, nil).Once()
	f.users.On("GetUserByID", mock.Anything, userID).Return(seller, nil).Once()
	f.billing.On("ResolveActiveUntil", seller, mock.Anything).Return(&activeUntil).Once()
	f.repo.On("Save", mock.Anything, mock.AnythingOfType("*listing.Listing"), map[string]string{"km": "124000"}).
		Run(func(args mock.Arguments) {
			args.Get(1).(*Listing).ID = uuid.New()
		}).Return(nil).Once()
	f.notifier.On("Notify", mock.Anything, userID, notification.TypeListingPublished, mock.Anything, mock.Anything).Once()
	f.repo.On("FindByID", mock.Anything, mock.Anything, true).
		Return(&Listing{Status: StatusActive}, nil).Once()

	_, err := f.svc.CreateListing(context.Background(), userID, CreateListingRequest{
		CategoryID: categoryID,
		CityID:     uuid.New(),
		Title:      "Used Golf 7 sale",
		Price:      "3500",
		Intent:     IntentPublish,
	}, map[string]string{"km": "124000"}, nil)

	require.NoError(t, err)
	savedCall := f.repo.Calls[0]
	saved := savedCall.Arguments.Get(1).(*Listing)
	assert.Equal(t, StatusActive, saved.Status)
	assert.Equal(t, int64(350000), saved.PriceCents)
	assert.Equal(t, "EUR", saved.Currency)
	require.NotNil(t, saved.ActiveUntil)
	assert.Equal(t, activeUntil, *saved.ActiveUntil)
	assert.Equal(t, 1, f.brk.successes)
	f.repo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestCreateListing_SaveIntentSkipsValidation(t *testing.T) {
	f := newServiceFixture(t)
	userID := uuid.New()
	categoryID := uuid.New()

	f.categories.On("GetCategoryByID", mock.Anything, categoryID, false).
		Return(topLevelCategory(categoryID), nil).Once()
	f.repo.On("Save", mock.Anything, mock.AnythingOfType("*listing.Listing"), mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*Listing).ID = uuid.New()
		}).Return(nil).Once()
	f.repo.On("FindByID", mock.Anything, mock.Anything, true).
		Return(&Listing{Status: StatusDraft}, nil).Once()

	// Title too short and no price: a draft save must still succeed.
	result, err := f.svc.CreateListing(context.Background(), userID, CreateListingRequest{
		CategoryID: categoryID,
		CityID:     uuid.New(),
		Title:      "Hi",
	}, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, StatusDraft, result.Status)
	f.templates.AssertNotCalled(t, "ListActiveTemplates")
	f.notifier.AssertNotCalled(t, "Notify")
}

func TestCreateListing_MalformedPriceRejected(t *testing.T) {
	f := newServiceFixture(t)
	categoryID := uuid.New()

	f.categories.On("GetCategoryByID", mock.Anything, categoryID, false).
		Return(topLevelCategory(categoryID), nil).Once()

	_, err := f.svc.CreateListing(context.Background(), uuid.New(), CreateListingRequest{
		CategoryID: categoryID,
		CityID:     uuid.New(),
		Title:      "Nice chair",
		Price:      "abc",
	}, nil, nil)

	require.Error(t, err)
	f.repo.AssertNotCalled(t, "Save")
}

func TestCreateListing_BreakerOpen(t *testing.T) {
	f := newServiceFixture(t)
	categoryID := uuid.New()
	f.brk.open = true

	f.categories.On("GetCategoryByID", mock.Anything, categoryID, false).
		Return(topLevelCategory(categoryID), nil).Once()

	_, err := f.svc.CreateListing(context.Background(), uuid.New(), CreateListingRequest{
		CategoryID: categoryID,
		CityID:     uuid.New(),
		Title:      "Nice chair",
	}, nil, nil)

	assert.ErrorIs(t, err, common.ErrServiceUnavailable)
	f.repo.AssertNotCalled(t, "Save")
}

func TestCreateListing_TransientStoreFailure(t *testing.T) {
	f := newServiceFixture(t)
	categoryID := uuid.New()

	f.categories.On("GetCategoryByID", mock.Anything, categoryID, false).
		Return(topLevelCategory(categoryID), nil).Once()
	f.repo.On("Save", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection refused")).Once()

	_, err := f.svc.CreateListing(context.Background(), uuid.New(), CreateListingRequest{
		CategoryID: categoryID,
		CityID:     uuid.New(),
		Title:      "Nice chair",
	}, nil, nil)

	assert.ErrorIs(t, err, common.ErrServiceUnavailable)
	assert.Equal(t, 1, f.brk.failures)
}

// --- UpdateListing ---

func TestUpdateListing_NonOwnerSeesNotFound(t *testing.T) {
	f := newServiceFixture(t)
	listingID := uuid.New()

	existing := &Listing{UserID: uuid.New(), Status: StatusActive}
	existing.ID = listingID
	f.repo.On("FindByID", mock.Anything, listingID, true).Return(existing, nil).Once()

	_, err := f.svc.UpdateListing(context.Background(), uuid.New(), common.RoleUser, listingID, UpdateListingRequest{}, nil, nil)

	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrNotFound.Code, apiErr.Code)
	f.repo.AssertNotCalled(t, "Save")
}

func TestUpdateListing_RemovedIsTerminal(t *testing.T) {
	f := newServiceFixture(t)
	listingID := uuid.New()
	ownerID := uuid.New()

	existing := &Listing{UserID: ownerID, Status: StatusRemoved}
	existing.ID = listingID
	f.repo.On("FindByID", mock.Anything, listingID, true).Return(existing, nil).Once()

	_, err := f.svc.UpdateListing(context.Background(), ownerID, common.RoleUser, listingID, UpdateListingRequest{}, nil, nil)

	require.Error(t, err)
	f.repo.AssertNotCalled(t, "Save")
}

// --- GetListing ---

func TestGetListing_HidesDraftsFromStrangers(t *testing.T) {
	f := newServiceFixture(t)
	listingID := uuid.New()

	draft := &Listing{UserID: uuid.New(), Status: StatusDraft}
	draft.ID = listingID
	f.repo.On("FindByID", mock.Anything, listingID, true).Return(draft, nil).Twice()

	_, err := f.svc.GetListing(context.Background(), listingID, uuid.Nil, "")
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrNotFound.Code, apiErr.Code)

	// The owner still sees it.
	got, err := f.svc.GetListing(context.Background(), listingID, draft.UserID, common.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, listingID, got.ID)
}

// --- DeleteListing ---

func TestDeleteListing_OwnerDeletes(t *testing.T) {
	f := newServiceFixture(t)
	listingID := uuid.New()
	ownerID := uuid.New()

	existing := &Listing{UserID: ownerID, Status: StatusDraft}
	existing.ID = listingID
	f.repo.On("FindByID", mock.Anything, listingID, true).Return(existing, nil).Once()
	f.repo.On("Delete", mock.Anything, listingID).Return(nil).Once()

	err := f.svc.DeleteListing(context.Background(), ownerID, common.RoleUser, listingID)

	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestDeleteListing_NonOwnerSeesNotFound(t *testing.T) {
	f := newServiceFixture(t)
	listingID := uuid.New()

	existing := &Listing{UserID: uuid.New(), Status: StatusActive}
	existing.ID = listingID
	f.repo.On("FindByID", mock.Anything, listingID, true).Return(existing, nil).Once()

	err := f.svc.DeleteListing(context.Background(), uuid.New(), common.RoleUser, listingID)

	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrNotFound.Code, apiErr.Code)
	f.repo.AssertNotCalled(t, "Delete")
}

// --- Browse ---

func TestBrowse_ScopesDynamicFiltersToCategoryTemplates(t *testing.T) {
	f := newServiceFixture(t)
	electronics := topLevelCategory(uuid.New())
	electronics.Slug = "electronics"

	f.categories.On("GetCategoryBySlug", mock.Anything, "electronics", false).
		Return(electronics, nil).Once()
	f.templates.On("ListActiveTemplates", mock.Anything, electronics.ID).
		Return([]fieldtemplate.FieldTemplate{{Key: "screen_size"}}, nil).Once()
	f.repo.On("Search", mock.Anything, mock.MatchedBy(func(filter SearchFilter) bool {
		_, hasBrand := filter.Fields["brand"]
		return !hasBrand && filter.CategoryID != nil && *filter.CategoryID == electronics.ID
	})).Return([]Listing{}, common.NewPagination(0, 1, 20), nil).Once()

	_, _, err := f.svc.Browse(context.Background(), BrowseQuery{
		CategorySlug: "electronics",
		Fields:       map[string]string{"brand": "Samsung"},
	})

	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestBrowse_NoCategoryMeansNoDynamicFilters(t *testing.T) {
	f := newServiceFixture(t)

	f.repo.On("Search", mock.Anything, mock.MatchedBy(func(filter SearchFilter) bool {
		return len(filter.Fields) == 0
	})).Return([]Listing{}, common.NewPagination(0, 1, 20), nil).Once()

	_, _, err := f.svc.Browse(context.Background(), BrowseQuery{
		Fields: map[string]string{"brand": "Samsung"},
	})

	require.NoError(t, err)
	f.templates.AssertNotCalled(t, "ListActiveTemplates")
}

// --- Expiry sweep ---

func TestDeactivateExpired_NotifiesSellers(t *testing.T) {
	f := newServiceFixture(t)
	now := time.Now().UTC()
	sellerID := uuid.New()

	expired := Listing{UserID: sellerID, Title: "Old couch", Status: StatusInactive}
	expired.ID = uuid.New()
	f.repo.On("DeactivateExpired", mock.Anything, now).Return([]Listing{expired}, nil).Once()
	f.notifier.On("Notify", mock.Anything, sellerID, notification.TypeListingExpired, mock.Anything, mock.Anything).Once()

	count, err := f.svc.DeactivateExpired(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	f.notifier.AssertExpectations(t)
}
