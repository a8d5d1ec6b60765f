package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds every errexplain collector plus the Go runtime ones.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errexplain_http_requests_total",
			Help: "HTTP requests by route and status class",
		},
		[]string{"method", "route", "status"},
	)

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "errexplain_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "errexplain_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"route"},
	)

	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errexplain_analyses_total",
			Help: "Stored analyses by extraction outcome",
		},
		[]string{"outcome"},
	)

	quotaDenied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "errexplain_quota_denied_total",
			Help: "Analyses refused because the daily quota was spent",
		},
	)

	upstreamFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errexplain_upstream_failures_total",
			Help: "Requests aborted by completion or persistence failures",
		},
		[]string{"route"},
	)

	votesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errexplain_votes_total",
			Help: "Solution votes by type",
		},
		[]string{"vote_type"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests, httpInFlight, httpDuration,
		analysesTotal, quotaDenied, upstreamFailures, votesTotal,
	)
}

// RecordAnalysis counts a stored analysis; outcome is "parsed" or "fallback".
func RecordAnalysis(outcome string) { analysesTotal.WithLabelValues(outcome).Inc() }

// RecordQuotaDenied counts a refused analysis.
func RecordQuotaDenied() { quotaDenied.Inc() }

// RecordUpstreamFailure counts an aborted request.
func RecordUpstreamFailure(route string) { upstreamFailures.WithLabelValues(route).Inc() }

// RecordVote counts an accepted vote.
func RecordVote(voteType string) { votesTotal.WithLabelValues(voteType).Inc() }

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		start := time.Now()
		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		route := routePattern(r)
		httpRequests.WithLabelValues(r.Method, route, statusClass(wrapped.statusCode)).Inc()
		httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// MetricsHandler serves the Prometheus exposition format.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// routePattern keeps label cardinality bounded: ids never become labels.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
