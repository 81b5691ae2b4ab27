// File: internal/notification/service_test.go
package notification

import (
	"context"
	"errors"
	"testing"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, notification *Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockRepository) FindByUserID(ctx context.Context, userID uuid.UUID, pq common.PaginationQuery) ([]Notification, *common.Pagination, error) {
	args := m.Called(ctx, userID, pq)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]Notification), args.Get(1).(*common.Pagination), args.Error(2)
}

func (m *MockRepository) MarkAsRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func TestNotify_RecordsNotification(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo, zap.NewNop())
	userID := uuid.New()
	listingID := uuid.New()

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *Notification) bool {
		return n.UserID == userID &&
			n.Type == TypeListingPublished &&
			n.RelatedListingID != nil && *n.RelatedListingID == listingID
	})).Return(nil).Once()

	svc.Notify(context.Background(), userID, TypeListingPublished, "Your listing is live.", &listingID)

	mockRepo.AssertExpectations(t)
}

func TestNotify_SwallowsRepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo, zap.NewNop())

	mockRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	// Must not panic or propagate; the triggering operation already succeeded.
	svc.Notify(context.Background(), uuid.New(), TypeListingExpired, "Your listing expired.", nil)

	mockRepo.AssertExpectations(t)
}

func TestMarkAllAsRead_ReturnsCount(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo, zap.NewNop())
	userID := uuid.New()

	mockRepo.On("MarkAllAsRead", mock.Anything, userID).Return(int64(3), nil).Once()

	count, err := svc.MarkAllAsRead(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
