package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"

	"github.com/romyseb/wedding/internal/cache"
	dbtestutil "github.com/romyseb/wedding/internal/database/testutil"
	"github.com/romyseb/wedding/internal/models"
	"github.com/romyseb/wedding/pkg/metrics"
)

type staticCounter struct {
	counts map[models.MemberStatus]int64
	err    error
}

func (s staticCounter) CountMembersByStatus(context.Context) (map[models.MemberStatus]int64, error) {
	return s.counts, s.err
}

type failingPurger struct{}

func (failingPurger) PurgeExpired(context.Context) (int64, error) {
	return 0, errors.New("database is locked")
}

func TestRefreshMemberStatsSetsGauge(t *testing.T) {
	scheduler := NewScheduler(staticCounter{counts: map[models.MemberStatus]int64{
		models.StatusSent:      4,
		models.StatusConfirmed: 2,
	}}, nil)

	require.NoError(t, scheduler.RefreshMemberStats(context.Background()))
	require.Equal(t, float64(4), testutil.ToFloat64(metrics.MembersByStatus.WithLabelValues("sent")))
	require.Equal(t, float64(2), testutil.ToFloat64(metrics.MembersByStatus.WithLabelValues("confirmed")))

	jobs := scheduler.Tracker().Snapshot()
	require.Len(t, jobs, 1)
	require.Equal(t, JobMemberStats, jobs[0].Job)
	require.Equal(t, "success", jobs[0].LastStatus)
}

func TestPurgeCacheRemovesExpiredEntries(t *testing.T) {
	db := dbtestutil.MustOpenTestDB(t, dbtestutil.WithAutoMigrate())
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	store := cache.NewDatabaseStore(db).WithClock(func() time.Time { return now })

	_, _, err := store.IncrementWithTTL(context.Background(), "old", time.Minute)
	require.NoError(t, err)

	now = now.Add(time.Hour)
	_, _, err = store.IncrementWithTTL(context.Background(), "fresh", time.Minute)
	require.NoError(t, err)

	scheduler := NewScheduler(nil, store)
	require.NoError(t, scheduler.PurgeCache(context.Background()))

	var remaining []models.CacheEntry
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Equal(t, "fresh", remaining[0].Key)
}

func TestRunOnceCombinesErrors(t *testing.T) {
	scheduler := NewScheduler(staticCounter{err: errors.New("no such table")}, failingPurger{})

	err := scheduler.RunOnce(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), JobMemberStats)
	require.Contains(t, err.Error(), JobCachePurge)

	for _, job := range scheduler.Tracker().Snapshot() {
		require.EqualValues(t, 1, job.ConsecutiveFailures, job.Job)
	}
}

func TestStartRegistersJobs(t *testing.T) {
	c := cron.New(cron.WithLogger(cron.DiscardLogger))
	scheduler := NewScheduler(staticCounter{}, failingPurger{}, WithCron(c),
		WithStatsSchedule("@every 1h"),
		WithCachePurgeSchedule("@every 2h"),
	)

	require.NoError(t, scheduler.Start())
	defer scheduler.Stop()

	require.Len(t, c.Entries(), 2)
	require.Len(t, scheduler.Tracker().Snapshot(), 2)
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	scheduler := NewScheduler(staticCounter{}, nil, WithStatsSchedule("not a schedule"))
	require.Error(t, scheduler.Start())
}

func TestStartWithoutJobsIsNoop(t *testing.T) {
	scheduler := NewScheduler(nil, nil)
	require.NoError(t, scheduler.Start())
	require.NoError(t, scheduler.RunOnce(context.Background()))
}
