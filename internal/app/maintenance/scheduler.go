package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/romyseb/wedding/internal/models"
	"github.com/romyseb/wedding/internal/monitoring"
	"github.com/romyseb/wedding/pkg/logger"
	"github.com/romyseb/wedding/pkg/metrics"
)

const (
	defaultStatsSpec = "@every 5m"
	defaultPurgeSpec = "@hourly"

	JobMemberStats = "member_stats"
	JobCachePurge  = "cache_purge"
)

// StatusCounter reports invitation members per status.
type StatusCounter interface {
	CountMembersByStatus(ctx context.Context) (map[models.MemberStatus]int64, error)
}

// CachePurger removes expired cache entries.
type CachePurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Scheduler runs periodic housekeeping: refreshing the member status gauge and purging
// expired rate limit counters.
type Scheduler struct {
	counter StatusCounter
	purger  CachePurger
	tracker *monitoring.JobTracker
	cron    *cron.Cron
	log     *zap.Logger

	statsSchedule string
	purgeSchedule string
}

// Option customises the Scheduler.
type Option func(*Scheduler)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithStatsSchedule overrides the cron expression for the member statistics job.
func WithStatsSchedule(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.statsSchedule = spec
		}
	}
}

// WithCachePurgeSchedule overrides the cron expression for the cache purge job.
func WithCachePurgeSchedule(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.purgeSchedule = spec
		}
	}
}

// WithTracker records job outcomes for the maintenance health check.
func WithTracker(tracker *monitoring.JobTracker) Option {
	return func(s *Scheduler) {
		if tracker != nil {
			s.tracker = tracker
		}
	}
}

// NewScheduler constructs a Scheduler. A nil dependency disables its job.
func NewScheduler(counter StatusCounter, purger CachePurger, opts ...Option) *Scheduler {
	scheduler := &Scheduler{
		counter:       counter,
		purger:        purger,
		tracker:       monitoring.NewJobTracker(),
		statsSchedule: defaultStatsSpec,
		purgeSchedule: defaultPurgeSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(scheduler)
	}

	if scheduler.cron == nil {
		scheduler.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return scheduler
}

// Tracker exposes the job tracker fed by this scheduler.
func (s *Scheduler) Tracker() *monitoring.JobTracker {
	return s.tracker
}

// Start registers the enabled jobs and launches the scheduler.
func (s *Scheduler) Start() error {
	if s.counter == nil && s.purger == nil {
		return nil
	}

	if s.counter != nil {
		s.tracker.Register(JobMemberStats)
		if _, err := s.cron.AddFunc(s.statsSchedule, func() {
			_ = s.RefreshMemberStats(context.Background())
		}); err != nil {
			return fmt.Errorf("maintenance: schedule %s: %w", JobMemberStats, err)
		}
	}

	if s.purger != nil {
		s.tracker.Register(JobCachePurge)
		if _, err := s.cron.AddFunc(s.purgeSchedule, func() {
			_ = s.PurgeCache(context.Background())
		}); err != nil {
			return fmt.Errorf("maintenance: schedule %s: %w", JobCachePurge, err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce executes every enabled job sequentially and returns the combined error.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	var errs error
	if s.counter != nil {
		errs = multierr.Append(errs, s.RefreshMemberStats(ctx))
	}
	if s.purger != nil {
		errs = multierr.Append(errs, s.PurgeCache(ctx))
	}
	return errs
}

// RefreshMemberStats sets the member gauge from the current status counts.
func (s *Scheduler) RefreshMemberStats(ctx context.Context) error {
	return s.run(JobMemberStats, func() error {
		counts, err := s.counter.CountMembersByStatus(ctx)
		if err != nil {
			return err
		}
		for status, total := range counts {
			metrics.MembersByStatus.WithLabelValues(string(status)).Set(float64(total))
		}
		return nil
	})
}

// PurgeCache deletes expired cache entries.
func (s *Scheduler) PurgeCache(ctx context.Context) error {
	return s.run(JobCachePurge, func() error {
		removed, err := s.purger.PurgeExpired(ctx)
		if err != nil {
			return err
		}
		if removed > 0 {
			s.log.Debug("expired cache entries purged", zap.Int64("removed", removed))
		}
		return nil
	})
}

func (s *Scheduler) run(job string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.tracker.RecordRun(job, err, time.Since(start))
	if err != nil {
		s.log.Warn("maintenance job failed", zap.String("job", job), zap.Error(err))
		return fmt.Errorf("maintenance: %s: %w", job, err)
	}
	return nil
}
