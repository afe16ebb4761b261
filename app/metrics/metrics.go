package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint", "status"},
	)

	usersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "directory_users_created_total",
			Help: "Total number of users created (single and bulk)",
		},
	)

	usersDeactivatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "directory_users_deactivated_total",
			Help: "Total number of users soft-deleted",
		},
	)

	userSearchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "directory_user_searches_total",
			Help: "Total number of filtered user searches executed",
		},
	)
)

// RecordHTTPRequest records per-request HTTP metrics.
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordUsersCreated adds n to the creation counter.
func RecordUsersCreated(n int) {
	usersCreatedTotal.Add(float64(n))
}

// RecordUserDeactivated increments the soft-delete counter.
func RecordUserDeactivated() {
	usersDeactivatedTotal.Inc()
}

// RecordUserSearch increments the search counter.
func RecordUserSearch() {
	userSearchesTotal.Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
