package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace for all USLY metrics
const namespace = "usly"

// Registry is the global Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// Handler exposes the registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// AuditWriteFailures counts audit records that could not be persisted.
// Audit writes are best-effort and never fail the triggering operation,
// so this counter is the only place those failures surface.
var AuditWriteFailures = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_failures_total",
		Help:      "Total number of audit log entries that failed to persist",
	},
	[]string{"action"},
)

// LoginAttempts counts login attempts by outcome.
var LoginAttempts = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts by outcome",
	},
	[]string{"outcome"},
)

// EventSignups counts signup ledger operations by outcome.
var EventSignups = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_signups_total",
		Help:      "Total number of event join/leave operations by outcome",
	},
	[]string{"operation", "outcome"},
)
