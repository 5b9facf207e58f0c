package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const prefix = "sitecms"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Admin register/login attempts by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	LeadsSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_leads_submitted_total",
			Help: "Total number of stored lead submissions",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_notifications_total",
			Help: "Lead notifications by delivery status",
		},
		[]string{"status"},
	)

	CollectionOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_collection_operations_total",
			Help: "Collection store operations",
		},
		[]string{"operation"},
	)
)

// Middleware records request count and latency per route template.
func Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		status := strconv.Itoa(c.Response().Status)
		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request().Method

		HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		return nil
	}
}

func RecordAuthAttempt(action string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	AuthAttemptsTotal.WithLabelValues(action, outcome).Inc()
}

func RecordNotification(status string) {
	NotificationsTotal.WithLabelValues(status).Inc()
}

func RecordCollectionOperation(operation string) {
	CollectionOperationsTotal.WithLabelValues(operation).Inc()
}
