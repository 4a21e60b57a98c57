package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"rentshare-backend/internal/config"
	"rentshare-backend/internal/jobs"
	"rentshare-backend/internal/logger"
)

// Runner is the set of jobs the scheduler triggers
type Runner interface {
	Config() *config.Config
	SendPickupReminders()
	SendReturnReminders()
	ExpireUnpaidBookings()
}

var _ Runner = (*jobs.JobRunner)(nil)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs Runner
}

// NewScheduler creates a new scheduler with the provided job runner. It
// fails when any configured schedule cannot be parsed.
func NewScheduler(jobRunner Runner) (*Scheduler, error) {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() error {
	cfg := s.jobs.Config().Scheduler

	entries := []struct {
		name     string
		schedule string
		job      func()
	}{
		{"ExpireUnpaidBookings", cfg.ExpireUnpaidBookings, s.jobs.ExpireUnpaidBookings},
		{"SendPickupReminders", cfg.SendPickupReminders, s.jobs.SendPickupReminders},
		{"SendReturnReminders", cfg.SendReturnReminders, s.jobs.SendReturnReminders},
	}

	for _, e := range entries {
		if _, err := s.cron.AddFunc(e.schedule, e.job); err != nil {
			logger.Error("Failed to register job", "job", e.name, "schedule", e.schedule, "error", err)
			return fmt.Errorf("register %s: %w", e.name, err)
		}
		logger.Debug("Registered job", "job", e.name, "schedule", e.schedule)
	}

	logger.Info("All cron jobs registered successfully", "count", len(entries))
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning returns true if the scheduler has registered jobs
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}

// NextRuns reports the next activation time of every registered job
func (s *Scheduler) NextRuns() []time.Time {
	entries := s.cron.Entries()
	next := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		next = append(next, e.Schedule.Next(time.Now()))
	}
	return next
}
