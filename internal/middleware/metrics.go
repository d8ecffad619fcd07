package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opsdesk_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// ApprovalSubmissions counts submit attempts by result
	// (created, duplicate, invalid, error).
	ApprovalSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opsdesk_approval_submissions_total",
		Help: "Total number of approval submissions by result",
	}, []string{"result"})

	// ApprovalResolutions counts resolve attempts by outcome and result.
	ApprovalResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opsdesk_approval_resolutions_total",
		Help: "Total number of approval resolutions by outcome and result",
	}, []string{"outcome", "result"})
)

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the request-metrics handler for the app.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
