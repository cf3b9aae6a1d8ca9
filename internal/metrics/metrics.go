package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyquota_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dailyquota_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	QuotaDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyquota_quota_decisions_total",
			Help: "Quota decisions by outcome (accepted, daily_limit_exceeded, monthly_limit_exceeded).",
		},
		[]string{"outcome"},
	)

	UsageAppendsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dailyquota_usage_appends_total",
			Help: "Total number of usage log entries appended.",
		},
	)

	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailyquota_store_errors_total",
			Help: "Usage store failures by operation.",
		},
		[]string{"op"},
	)

	EventPublishFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dailyquota_event_publish_failures_total",
			Help: "Usage events that could not be published.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		QuotaDecisionsTotal,
		UsageAppendsTotal,
		StoreErrorsTotal,
		EventPublishFailuresTotal,
	)
}
