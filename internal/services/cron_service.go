package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages scheduled background jobs
type CronService struct {
	cron        *cron.Cron
	assignments AssignmentStore
	sessions    SessionStore
	rateLimit   *RateLimitService
	clock       Clock
	expirySpec  string
	logger      *logrus.Logger
}

// NewCronService creates a new CronService. expirySpec is a six-field cron
// expression (seconds first) for the assignment expiry job.
func NewCronService(assignments AssignmentStore, sessions SessionStore, rateLimit *RateLimitService, clock Clock, expirySpec string, logger *logrus.Logger) *CronService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	opts := []cron.Option{cron.WithSeconds()}
	if clock.Location != nil {
		opts = append(opts, cron.WithLocation(clock.Location))
	}

	return &CronService{
		cron:        cron.New(opts...),
		assignments: assignments,
		sessions:    sessions,
		rateLimit:   rateLimit,
		clock:       clock,
		expirySpec:  expirySpec,
		logger:      logger,
	}
}

// Start schedules all jobs and starts the scheduler
func (s *CronService) Start() error {
	s.logger.Info("Starting cron service...")

	if _, err := s.cron.AddFunc(s.expirySpec, s.expireAssignmentsJob); err != nil {
		return fmt.Errorf("failed to schedule assignment expiry job: %w", err)
	}
	s.logger.WithField("spec", s.expirySpec).Info("Scheduled: Expire routine assignments")

	// "0 30 * * * *" = at minute 30 of every hour
	if _, err := s.cron.AddFunc("0 30 * * * *", s.cleanupJob); err != nil {
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}
	s.logger.Info("Scheduled: Cleanup expired sessions and login attempts (hourly)")

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

// ExpireAssignments deactivates assignments whose end date has passed
func (s *CronService) ExpireAssignments(ctx context.Context) (int64, error) {
	return s.assignments.DeactivateExpired(ctx, s.clock.Today())
}

// Cleanup deletes expired sessions and stale login attempts
func (s *CronService) Cleanup(ctx context.Context) (sessions, attempts int64, err error) {
	sessions, err = s.sessions.DeleteExpired(ctx, s.clock.Current())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	if s.rateLimit != nil {
		attempts, err = s.rateLimit.CleanupExpired(ctx)
		if err != nil {
			return sessions, 0, err
		}
	}
	return sessions, attempts, nil
}

func (s *CronService) expireAssignmentsJob() {
	startTime := time.Now()

	deactivated, err := s.ExpireAssignments(context.Background())
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Failed to expire routine assignments")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"deactivated": deactivated,
		"duration":    time.Since(startTime).String(),
	}).Info("[CRON] Expired routine assignments")
}

func (s *CronService) cleanupJob() {
	sessions, attempts, err := s.Cleanup(context.Background())
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Cleanup failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"sessions": sessions,
		"attempts": attempts,
	}).Info("[CRON] Cleanup finished")
}
