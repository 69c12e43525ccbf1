package checks

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/romyseb/wedding/internal/monitoring"
)

const defaultDatabaseTimeout = 2 * time.Second

// Database pings the invitation database. A ping slower than half of timeout reports
// degraded so slow storage shows up before guest requests start timing out.
func Database(db *gorm.DB, timeout time.Duration) monitoring.Check {
	if timeout <= 0 {
		timeout = defaultDatabaseTimeout
	}

	return monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		if db == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "database not configured"}
		}

		start := time.Now()
		sqlDB, err := db.DB()
		if err != nil {
			return monitoring.ResultFromError("database", err, time.Since(start))
		}

		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := sqlDB.PingContext(probeCtx); err != nil {
			return monitoring.ResultFromError("database", err, time.Since(start))
		}

		elapsed := time.Since(start)
		stats := sqlDB.Stats()
		result := monitoring.ProbeResult{
			Status:   monitoring.StatusUp,
			Details:  fmt.Sprintf("%s open=%d in_use=%d idle=%d", db.Dialector.Name(), stats.OpenConnections, stats.InUse, stats.Idle),
			Duration: elapsed,
		}
		if elapsed > timeout/2 {
			result.Status = monitoring.StatusDegraded
		}
		return result
	})
}
