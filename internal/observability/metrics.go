// Package observability provides metrics and tracing for the application.
package observability

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "missnotes_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// NotificationDispatchFailures counts notification deliveries that were
	// swallowed instead of failing their triggering operation.
	NotificationDispatchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "missnotes_notification_dispatch_failures_total",
		Help: "Total number of failed notification dispatches by stage",
	}, []string{"stage"})

	// CascadeStepFailures counts failed steps of the user-deletion fan-out.
	CascadeStepFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "missnotes_cascade_step_failures_total",
		Help: "Total number of failed user-deletion cascade steps",
	}, []string{"step"})
)

// InitMetrics creates the Prometheus middleware for the Fiber app.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}
