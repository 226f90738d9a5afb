package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/linesmerrill/police-case-api/config"
	"github.com/linesmerrill/police-case-api/logging"
)

const sweepJob = "payment_sweep"

// Sweeper fails payment attempts that never came back from the gateway
type Sweeper interface {
	SweepAbandoned(ctx context.Context, olderThan time.Duration) (int, error)
}

// Locker keeps a job to one instance at a time
type Locker interface {
	TryLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, name, owner string) error
}

// Scheduler handles periodic background jobs
type Scheduler struct {
	cron       *cron.Cron
	payments   Sweeper
	locker     Locker
	spec       string
	attemptTTL time.Duration
	instanceID string
	log        *zap.SugaredLogger
}

// NewScheduler creates a new scheduler instance. A nil locker runs every job
// locally.
func NewScheduler(conf config.SchedulerConfig, payments Sweeper, locker Locker) *Scheduler {
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		payments:   payments,
		locker:     locker,
		spec:       conf.PaymentSweepSpec,
		attemptTTL: conf.PaymentAttemptTTL,
		instanceID: instanceID,
		log:        logging.New("scheduler").With("instance", instanceID),
	}
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start() error {
	if s.spec == "" || s.attemptTTL <= 0 {
		s.log.Info("payment sweep disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, s.sweepPayments); err != nil {
		return fmt.Errorf("failed to register payment sweep job: %w", err)
	}

	s.cron.Start()
	s.log.Infow("scheduler started", "paymentSweep", s.spec)
	return nil
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) sweepPayments() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if _, err := s.SweepPayments(ctx); err != nil {
		s.log.Errorw("payment sweep failed", "error", err)
	}
}

// SweepPayments runs one sweep unless another instance holds the job lock
func (s *Scheduler) SweepPayments(ctx context.Context) (int, error) {
	if s.locker != nil {
		acquired, err := s.locker.TryLock(ctx, sweepJob, s.instanceID, 10*time.Minute)
		if err != nil {
			return 0, fmt.Errorf("failed to acquire lock for %s: %w", sweepJob, err)
		}
		if !acquired {
			s.log.Debug("payment sweep already running on another instance, skipping")
			return 0, nil
		}
		defer func() {
			if err := s.locker.Unlock(context.Background(), sweepJob, s.instanceID); err != nil {
				s.log.Warnw("failed to release job lock", "job", sweepJob, "error", err)
			}
		}()
	}

	return s.payments.SweepAbandoned(ctx, s.attemptTTL)
}
