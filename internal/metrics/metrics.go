// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors register with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stockpredict"

// Result label values
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

// HTTPRequestsTotal counts handled requests.
// Labels:
//   - method: HTTP method
//   - route: the matched route pattern, "unmatched" when none
//   - status: response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures handler latency.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP request handling.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// AuthEventsTotal counts authentication outcomes.
// Labels:
//   - event: "register", "login" or "resolve"
//   - result: "success", "failure" (caller's fault) or "error" (server fault)
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of authentication events by outcome.",
	},
	[]string{"event", "result"},
)

// WatchlistMutationsTotal counts watchlist add/remove attempts.
var WatchlistMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "watchlist_mutations_total",
		Help:      "Total number of watchlist mutations by operation and outcome.",
	},
	[]string{"op", "result"},
)

// RateLimitedTotal counts requests rejected by the rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
)

// DependencyUp is 1 while a backing service answers pings, 0 otherwise.
// Labels:
//   - dependency: "database" or "redis"
var DependencyUp = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dependency_up",
		Help:      "Whether a backing service answered its last health probe.",
	},
	[]string{"dependency"},
)
