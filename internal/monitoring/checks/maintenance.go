package checks

import (
	"context"
	"strings"
	"time"

	"github.com/romyseb/wedding/internal/monitoring"
)

const defaultMaintenanceMaxAge = 6 * time.Hour

// Maintenance verifies that background jobs run successfully within the expected interval.
// When maxAge is zero, a six hour window is used.
func Maintenance(tracker *monitoring.JobTracker, maxAge time.Duration) monitoring.Check {
	if maxAge <= 0 {
		maxAge = defaultMaintenanceMaxAge
	}

	return monitoring.NewCheck("maintenance", func(context.Context) monitoring.ProbeResult {
		if tracker == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "maintenance disabled"}
		}

		jobs := tracker.Snapshot()
		if len(jobs) == 0 {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "no maintenance jobs registered"}
		}

		now := time.Now()
		status := monitoring.StatusUp
		var problems []string

		for _, job := range jobs {
			switch {
			case job.TotalRuns == 0:
				problems = append(problems, job.Job+": pending first run")
			case job.ConsecutiveFailures > 0:
				status = monitoring.StatusDegraded
				problems = append(problems, job.Job+": "+job.LastError)
			case now.Sub(job.LastSuccessAt) > maxAge:
				status = monitoring.StatusDegraded
				problems = append(problems, job.Job+": stale run "+job.LastRunAt.UTC().Format(time.RFC3339))
			}
		}

		return monitoring.ProbeResult{Status: status, Details: strings.Join(problems, "; ")}
	})
}
