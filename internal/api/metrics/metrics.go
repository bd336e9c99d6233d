// Package metrics defines all custom Prometheus collectors for the virtual
// pets API. Collectors are registered with the default registry on import
// through promauto and exposed on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "virtualpets"

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestDuration measures request latency.
// Labels:
//   - method: HTTP verb
//   - route: the registered route pattern (e.g. "/pets/:id"), never the raw path
//   - status: response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

// RateLimitedTotal counts requests rejected by the auth rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected with 429.",
	},
)

// ── Identity metrics ──────────────────────────────────────────────────────────

// AuthAttemptsTotal counts registration and login attempts.
// Labels:
//   - operation: "register" or "login"
//   - result: "success", "duplicate", "invalid_credentials" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts by operation and result.",
	},
	[]string{"operation", "result"},
)

// AccessDecisionsTotal counts access control outcomes.
// Labels:
//   - category: endpoint category (e.g. "owned_resource")
//   - decision: "allow" or "deny"
var AccessDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Total number of access control decisions.",
	},
	[]string{"category", "decision"},
)

// ── Pet metrics ───────────────────────────────────────────────────────────────

// PetsCreatedTotal counts newly created pets.
// Label:
//   - type: "MOLE", "MAGPIE" or "TOAD"
var PetsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pets_created_total",
		Help:      "Total number of pets created, by type.",
	},
	[]string{"type"},
)

// PetInteractionsTotal counts successful interactions.
// Label:
//   - action: "feed", "play" or "rest"
var PetInteractionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pet_interactions_total",
		Help:      "Total number of pet interactions, by action.",
	},
	[]string{"action"},
)
