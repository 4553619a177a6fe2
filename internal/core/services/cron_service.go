package services

import (
	"context"
	"fmt"

	"libapp/internal/adapters/persistence/repositories"
	"libapp/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled maintenance jobs
type CronService struct {
	cron             *cron.Cron
	refreshTokenRepo repositories.RefreshTokenRepository
	log              *logger.Logger
}

// NewCronService creates a cron service that purges expired refresh tokens on schedule
func NewCronService(refreshTokenRepo repositories.RefreshTokenRepository, schedule string, log *logger.Logger) (*CronService, error) {
	s := &CronService{
		cron:             cron.New(),
		refreshTokenRepo: refreshTokenRepo,
		log:              log,
	}

	if _, err := s.cron.AddFunc(schedule, func() {
		_, _ = s.PurgeExpiredTokens(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start starts the scheduler in its own goroutine
func (s *CronService) Start() {
	s.cron.Start()
	s.log.Info(context.Background(), "cron service started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info(context.Background(), "cron service stopped")
}

// PurgeExpiredTokens deletes refresh tokens past their expiry
func (s *CronService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	deleted, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		s.log.Error(ctx, "purging expired refresh tokens failed", err)
		return 0, err
	}
	s.log.Info(s.log.WithField(ctx, "deleted", deleted), "expired refresh tokens purged")
	return deleted, nil
}
