package monitoring

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/romyseb/wedding/pkg/metrics"
)

// JobSummary is the last known state of a background job.
type JobSummary struct {
	Job                 string        `json:"job"`
	LastStatus          string        `json:"lastStatus"`
	LastRunAt           time.Time     `json:"lastRunAt"`
	LastDuration        time.Duration `json:"lastDuration"`
	LastError           string        `json:"lastError,omitempty"`
	LastSuccessAt       time.Time     `json:"lastSuccessAt"`
	ConsecutiveFailures uint64        `json:"consecutiveFailures"`
	TotalRuns           uint64        `json:"totalRuns"`
}

// JobTracker records background job runs for health checks and metrics.
type JobTracker struct {
	mu   sync.Mutex
	jobs map[string]*JobSummary
	now  func() time.Time
}

// NewJobTracker constructs an empty tracker.
func NewJobTracker() *JobTracker {
	return &JobTracker{jobs: make(map[string]*JobSummary), now: time.Now}
}

// Register makes a job visible before its first run.
func (t *JobTracker) Register(job string) {
	job = strings.TrimSpace(job)
	if job == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entry(job)
}

// RecordRun stores the outcome of one run. A nil err is a success.
func (t *JobTracker) RecordRun(job string, err error, duration time.Duration) {
	job = strings.TrimSpace(job)
	if job == "" {
		job = "unknown"
	}
	if duration < 0 {
		duration = 0
	}

	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.MaintenanceRuns.WithLabelValues(job, result).Inc()

	t.mu.Lock()
	defer t.mu.Unlock()

	entry := t.entry(job)
	now := t.now()
	entry.LastStatus = result
	entry.LastRunAt = now
	entry.LastDuration = duration
	entry.TotalRuns++
	if err != nil {
		entry.LastError = err.Error()
		entry.ConsecutiveFailures++
		return
	}
	entry.LastError = ""
	entry.LastSuccessAt = now
	entry.ConsecutiveFailures = 0
}

// Snapshot returns every job sorted by name.
func (t *JobTracker) Snapshot() []JobSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]JobSummary, 0, len(t.jobs))
	for _, entry := range t.jobs {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Job < out[j].Job })
	return out
}

func (t *JobTracker) entry(job string) *JobSummary {
	entry, ok := t.jobs[job]
	if !ok {
		entry = &JobSummary{Job: job}
		t.jobs[job] = entry
	}
	return entry
}
