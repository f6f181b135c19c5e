package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bfj_requests_total",
		Help: "Total requests by endpoint and dispatch result (hit, miss, closed)",
	}, []string{"endpoint", "result"})

	requestsCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bfj_requests_cancelled_total",
		Help: "Queued requests dropped without fetching because a shutdown deadline passed",
	}, []string{"endpoint"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bfj_fetch_duration_seconds",
		Help:    "Fetch duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bfj_errors_total",
		Help: "Total fetch errors by class",
	}, []string{"class"})

	httpResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bfj_http_responses_total",
		Help: "Total HTTP responses by endpoint and status code",
	}, []string{"endpoint", "status"})

	exceptionHandlerPanics = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bfj_exception_handler_panics_total",
		Help: "Total panics recovered from the exception handler",
	})

	shutdownsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bfj_shutdowns_total",
		Help: "Total client shutdowns by result (graceful, forced)",
	}, []string{"result"})
)
