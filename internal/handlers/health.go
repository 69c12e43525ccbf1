package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/romyseb/wedding/internal/monitoring"
)

// Health reports readiness from the registered probes. Without a manager it only
// confirms the process is serving.
func Health(manager *monitoring.HealthManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager == nil {
			c.JSON(http.StatusOK, gin.H{"success": true, "status": monitoring.StatusUp})
			return
		}
		writeHealthReport(c, manager.EvaluateReadiness(requestContext(c)))
	}
}

// Liveness reports the liveness probes.
func Liveness(manager *monitoring.HealthManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager == nil {
			c.JSON(http.StatusOK, gin.H{"success": true, "status": monitoring.StatusUp})
			return
		}
		writeHealthReport(c, manager.EvaluateLiveness(requestContext(c)))
	}
}

func writeHealthReport(c *gin.Context, report monitoring.HealthReport) {
	status := http.StatusOK
	if !report.Success {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"success":   report.Success,
		"status":    report.Status,
		"checks":    report.Checks,
		"checkedAt": time.Now().UTC(),
	})
}
