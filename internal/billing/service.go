// File: internal/billing/service.go

// Package billing resolves how long a published listing stays active based on
// the seller's plan. Payment collection itself happens outside this service.
package billing

import (
	"time"

	"marketplace_backend/internal/config"
	"marketplace_backend/internal/user"

	"go.uber.org/zap"
)

// Service decides publication lifetimes per billing plan.
type Service interface {
	// ResolveActiveUntil returns the expiry timestamp a fresh publication
	// gets, or nil when the plan keeps listings active indefinitely.
	ResolveActiveUntil(u *user.User, now time.Time) *time.Time
}

type service struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewService creates a new billing service.
func NewService(cfg *config.Config, logger *zap.Logger) Service {
	return &service{cfg: cfg, logger: logger}
}

func (s *service) ResolveActiveUntil(u *user.User, now time.Time) *time.Time {
	switch u.Plan {
	case user.PlanSubscription:
		// Subscription sellers are billed for the whole account, not per
		// listing, so individual listings never expire on their own.
		return nil
	case user.PlanPayPerListing:
		until := now.Add(time.Duration(s.cfg.PaidListingActiveDays) * 24 * time.Hour)
		return &until
	default:
		s.logger.Warn("Unknown billing plan, defaulting to pay-per-listing expiry",
			zap.String("plan", string(u.Plan)), zap.String("userID", u.ID.String()))
		until := now.Add(time.Duration(s.cfg.PaidListingActiveDays) * 24 * time.Hour)
		return &until
	}
}
