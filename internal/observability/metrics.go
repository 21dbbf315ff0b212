package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "safety"

// HTTPRequestsTotal counts completed requests by method, matched route and status.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures handler latency by method and matched route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// HTTPErrorsTotal counts error responses by taxonomy code (e.g. "NOT_FOUND").
var HTTPErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_errors_total",
		Help:      "Total number of error responses, by error code.",
	},
	[]string{"code"},
)

// SuggestionsCreatedTotal counts submitted suggestions by department ("Unassigned" when empty).
var SuggestionsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "suggestions_created_total",
		Help:      "Total number of suggestions submitted, by department.",
	},
	[]string{"department"},
)

// SuggestionStatusChangesTotal counts admin status updates by the new status.
var SuggestionStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "suggestion_status_changes_total",
		Help:      "Total number of suggestion status changes, by new status.",
	},
	[]string{"status"},
)

// CommentsCreatedTotal counts comments added to suggestions.
var CommentsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comments_created_total",
		Help:      "Total number of comments added.",
	},
)

// AnalyticsCacheTotal counts analytics cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var AnalyticsCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analytics_cache_total",
		Help:      "Total number of analytics cache lookups, by result.",
	},
	[]string{"result"},
)

// RecordRequest observes one finished request.
func RecordRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError increments the error counter for code.
func RecordError(code string) {
	HTTPErrorsTotal.WithLabelValues(code).Inc()
}
