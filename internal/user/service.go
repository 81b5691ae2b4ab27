// File: internal/user/service.go
package user

import (
	"context"
	"time"

	"marketplace_backend/internal/common"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for user-related business logic.
type Service interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetOrCreateFromFirebaseToken(ctx context.Context, token *firebaseauth.Token) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*User, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// GetOrCreateFromFirebaseToken resolves the local user for a verified
// Firebase token, provisioning one on first sight.
func (s *service) GetOrCreateFromFirebaseToken(ctx context.Context, token *firebaseauth.Token) (*User, error) {
	existing, err := s.repo.FindByFirebaseUID(ctx, token.UID)
	if err == nil {
		now := time.Now()
		existing.LastLoginAt = &now
		if updErr := s.repo.Update(ctx, existing); updErr != nil {
			s.logger.Warn("Failed to record last login", zap.Error(updErr), zap.String("userID", existing.ID.String()))
		}
		return existing, nil
	}
	if apiErr, ok := common.IsAPIError(err); !ok || apiErr.Code != common.ErrNotFound.Code {
		return nil, err
	}

	newUser := &User{
		FirebaseUID: token.UID,
		Role:        common.RoleUser,
		Plan:        PlanPayPerListing,
	}
	if email, ok := token.Claims["email"].(string); ok && email != "" {
		newUser.Email = &email
	}
	if name, ok := token.Claims["name"].(string); ok && name != "" {
		newUser.DisplayName = &name
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		s.logger.Error("Failed to provision user from Firebase token", zap.Error(err), zap.String("uid", token.UID))
		return nil, err
	}
	s.logger.Info("Provisioned new user from Firebase identity", zap.String("userID", newUser.ID.String()))
	return newUser, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.DisplayName != nil {
		u.DisplayName = req.DisplayName
	}
	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Error("Failed to update user profile", zap.Error(err), zap.String("userID", id.String()))
		return nil, err
	}
	return u, nil
}
