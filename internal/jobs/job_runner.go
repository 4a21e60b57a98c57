package jobs

import (
	"context"
	"time"

	"rentshare-backend/internal/config"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/repository"
	"rentshare-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	repos    *Repositories
	services *Services
	config   *config.Config
	clock    service.Clock
}

// Repositories holds the read paths the jobs scan
type Repositories struct {
	Booking repository.BookingRepository
	Listing repository.ListingRepository
	User    repository.UserRepository
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Email   service.EmailService
	Booking service.BookingService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(repos *Repositories, services *Services, cfg *config.Config, clock service.Clock) *JobRunner {
	return &JobRunner{
		repos:    repos,
		services: services,
		config:   cfg,
		clock:    clock,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	start := time.Now()
	jobFunc(context.Background())
	logger.Info("Job completed", "job", jobName, "duration", time.Since(start))
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ExpireUnpaidBookings()
	jr.SendPickupReminders()
	jr.SendReturnReminders()
}

// today is the current calendar date in the booking time zone
func (jr *JobRunner) today() time.Time {
	y, m, d := jr.clock.Now().In(jr.config.Location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
