// Package metrics defines and registers the custom Prometheus metrics of the
// portal. It is the single source of truth for metric names, labels, and help
// strings.
//
// Metrics are registered with the default registry through promauto when the
// package is loaded.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/unidet/portal/internal/core/domain"
)

const namespace = "portal"

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts calls made to the REST backend.
// Labels:
//   - scope: "public", "user" or "admin"
//   - method: HTTP method
//   - status: response status, "0" when no response arrived
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the REST backend.",
	},
	[]string{"scope", "method", "status"},
)

// BackendRequestDuration measures backend round-trips, body read included.
// Label:
//   - scope: "public", "user" or "admin"
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of REST backend requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"scope"},
)

// AuthRequiredTotal counts administrator calls that ended the session.
// Label:
//   - status: "401", "403", or "0" when no token was stored
var AuthRequiredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_required_total",
		Help:      "Total number of administrator requests that required a new login.",
	},
	[]string{"status"},
)

// ── Panel metrics ─────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard verdicts.
// Label:
//   - decision: "allow", "redirect_login" or "redirect_landing"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by outcome.",
	},
	[]string{"decision"},
)

// SubmitLockRejectionsTotal counts submits refused because the same form was
// still in flight.
var SubmitLockRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submit_lock_rejections_total",
		Help:      "Total number of duplicate submits rejected while the first was in flight.",
	},
)

// ObserveBackend matches backend.Options.Observe.
func ObserveBackend(scope domain.Scope, method string, status int, elapsed time.Duration) {
	BackendRequestsTotal.WithLabelValues(string(scope), method, strconv.Itoa(status)).Inc()
	BackendRequestDuration.WithLabelValues(string(scope)).Observe(elapsed.Seconds())
}

// AuthRequired matches backend.Options.OnAuthRequired.
func AuthRequired(_ context.Context, status int) {
	AuthRequiredTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}
