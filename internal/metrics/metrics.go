package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChatTurns считает обработанные реплики: status = success | error.
	ChatTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_turns_total",
		Help: "The total number of chat turns sent to the inference service",
	}, []string{"status"})

	// ChatTurnDuration время одного обращения к inference сервису.
	ChatTurnDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chat_turn_duration_seconds",
		Help:    "Time taken by one blocking chat completion call",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80, 160},
	}, []string{"status"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "The total number of HTTP requests served",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)
