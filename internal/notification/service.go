// File: internal/notification/service.go
package notification

import (
	"context"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for notification business logic.
type Service interface {
	// Notify records a notification for a user. Failures are logged and
	// swallowed: a missed notification must never fail the operation that
	// triggered it.
	Notify(ctx context.Context, userID uuid.UUID, notifType Type, message string, listingID *uuid.UUID)

	ListForUser(ctx context.Context, userID uuid.UUID, pq common.PaginationQuery) ([]Notification, *common.Pagination, error)
	MarkAsRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) Notify(ctx context.Context, userID uuid.UUID, notifType Type, message string, listingID *uuid.UUID) {
	notification := &Notification{
		UserID:           userID,
		Type:             notifType,
		Message:          message,
		RelatedListingID: listingID,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		s.logger.Error("Failed to record notification",
			zap.Error(err),
			zap.String("userID", userID.String()),
			zap.String("type", string(notifType)))
	}
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, pq common.PaginationQuery) ([]Notification, *common.Pagination, error) {
	return s.repo.FindByUserID(ctx, userID, pq)
}

func (s *service) MarkAsRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}
