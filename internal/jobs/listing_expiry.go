// File: internal/jobs/listing_expiry.go

// Package jobs hosts the scheduled background work: the listing expiry
// sweep that takes paid listings offline once their active window ends.
package jobs

import (
	"context"
	"fmt"
	"time"

	"marketplace_backend/internal/config"
	"marketplace_backend/internal/listing"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ListingExpiryJob periodically deactivates listings whose active-until has
// passed.
type ListingExpiryJob struct {
	listingService listing.Service
	logger         *zap.Logger
	cfg            *config.Config
	scheduler      *cron.Cron
}

// NewListingExpiryJob creates a new ListingExpiryJob.
func NewListingExpiryJob(listingService listing.Service, logger *zap.Logger, cfg *config.Config) *ListingExpiryJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))
	return &ListingExpiryJob{
		listingService: listingService,
		logger:         logger.Named("ListingExpiryJob"),
		cfg:            cfg,
		scheduler:      scheduler,
	}
}

// SetupAndStart schedules and starts the cron job. An empty schedule disables
// the job without failing startup.
func (j *ListingExpiryJob) SetupAndStart() error {
	spec := j.cfg.ListingExpiryJobSchedule
	if spec == "" {
		j.logger.Warn("Listing expiry job schedule not defined, job will not run.")
		return nil
	}

	if _, err := j.scheduler.AddFunc(spec, j.run); err != nil {
		j.logger.Error("Failed to schedule listing expiry job", zap.String("spec", spec), zap.Error(err))
		return err
	}

	j.logger.Info("Listing expiry job scheduled", zap.String("spec", spec))
	j.scheduler.Start()
	return nil
}

func (j *ListingExpiryJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	count, err := j.listingService.DeactivateExpired(ctx, time.Now().UTC())
	if err != nil {
		j.logger.Error("Listing expiry sweep failed", zap.Error(err))
		return
	}
	j.logger.Info("Listing expiry sweep completed", zap.Int("listings_deactivated", count))
}

// Stop gracefully stops the cron scheduler.
func (j *ListingExpiryJob) Stop() {
	if j.scheduler == nil {
		return
	}
	stopCtx := j.scheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Listing expiry job scheduler stopped.")
	case <-time.After(10 * time.Second):
		j.logger.Warn("Listing expiry job scheduler stop timed out.")
	}
}

// --- Cron logger adapter ---

type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger adapts a zap logger to the cron.Logger interface.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Info(msg, cl.fields(keysAndValues...)...)
}

func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	cl.zl.Error(msg, append(cl.fields(keysAndValues...), zap.Error(err))...)
}

func (cl *cronLogger) fields(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
	}
	return fields
}
