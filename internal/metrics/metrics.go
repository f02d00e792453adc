package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visitlog_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "visitlog_http_request_duration_seconds",
		Help:    "Time spent handling HTTP requests",
		Buckets: prometheus.ExponentialBuckets(0.001, 2.0, 12),
	}, []string{"method"})

	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visitlog_login_attempts_total",
		Help: "Login attempts by outcome",
	}, []string{"result"})

	LogEntriesWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visitlog_log_entries_written_total",
		Help: "Log entries recorded per domain",
	}, []string{"domain"})

	GeoLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visitlog_geo_lookups_total",
		Help: "Outbound geolocation lookups by outcome",
	}, []string{"status"})
)
