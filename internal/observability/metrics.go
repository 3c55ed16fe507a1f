package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_service", Name: "quotes_total", Help: "Quote computations by distance source"},
		[]string{"source"}, // authoritative, cache, estimated
	)
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_service", Name: "transitions_total", Help: "Ride status transitions by target status"},
		[]string{"status"},
	)
	TransitionsRejected = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_service", Name: "transitions_rejected_total", Help: "Transitions rejected by validation"})
	SMSFailures         = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_service", Name: "sms_failures_total", Help: "SMS sends that failed"})
	WSClients           = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "ride_service", Name: "ws_clients", Help: "Connected dashboard/driver websocket sessions"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_service", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ride_service",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
