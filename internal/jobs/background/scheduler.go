// Package background runs maintenance jobs on the administrative pool:
// expired API key sweeps and audit retention. Nothing here serves tenant
// business data.
package background

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"supportdesk/internal/repositories"
)

const auditRetention = 180 * 24 * time.Hour

// Scheduler manages the periodic maintenance jobs.
type Scheduler struct {
	scheduler gocron.Scheduler
	apiKeys   repositories.APIKeyRepository
	audits    repositories.TicketAuditRepository
	log       *zap.Logger
}

// NewScheduler builds the scheduler and registers the jobs.
func NewScheduler(apiKeys repositories.APIKeyRepository, audits repositories.TicketAuditRepository, log *zap.Logger) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		scheduler: scheduler,
		apiKeys:   apiKeys,
		audits:    audits,
		log:       log,
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) registerJobs() error {
	if _, err := s.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(s.sweepExpiredAPIKeys),
		gocron.WithName("api-key-expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return err
	}

	if _, err := s.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(s.pruneOldAudits),
		gocron.WithName("audit-retention"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return err
	}

	return nil
}

// Start starts the job scheduler.
func (s *Scheduler) Start() {
	s.log.Info("starting background job scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Scheduler) sweepExpiredAPIKeys() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.apiKeys.DeleteExpired(ctx)
	if err != nil {
		s.log.Error("API key expiry sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.log.Info("removed expired API keys", zap.Int64("count", deleted))
	}
}

func (s *Scheduler) pruneOldAudits() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deleted, err := s.audits.DeleteOlderThan(ctx, time.Now().Add(-auditRetention))
	if err != nil {
		s.log.Error("audit retention prune failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.log.Info("pruned old ticket audits", zap.Int64("count", deleted))
	}
}
