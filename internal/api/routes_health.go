package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/romyseb/wedding/internal/app"
	"github.com/romyseb/wedding/internal/handlers"
	"github.com/romyseb/wedding/internal/monitoring"
)

func registerHealthRoutes(r *gin.Engine, cfg *app.Config, manager *monitoring.HealthManager) {
	registerHealthEndpoints(r, manager)
	registerHealthEndpoints(r.Group("/api"), manager)

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}
}

func registerHealthEndpoints(router gin.IRouter, manager *monitoring.HealthManager) {
	router.GET("/health", handlers.Health(manager))
	router.GET("/health/live", handlers.Liveness(manager))
	router.GET("/health/ready", handlers.Health(manager))
}
