package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// EntriesCreated counts journal entries created since process start.
	EntriesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_entries_created_total",
		Help: "Total number of journal entries created",
	})

	// EntriesDeleted counts journal entries deleted since process start.
	EntriesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_entries_deleted_total",
		Help: "Total number of journal entries deleted",
	})

	// MigrationsApplied counts schema migration steps applied at startup.
	MigrationsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_migrations_applied_total",
		Help: "Total number of schema migration steps applied, by step name",
	}, []string{"name"})
)

// InitMetrics creates the Prometheus middleware for HTTP request metrics.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}
