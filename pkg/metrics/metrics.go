// Package metrics exposes the Prometheus registry shared by the client
// packages. Collectors are declared next to the code that updates them
// (pkg/client, pkg/cache, pkg/workerpool) and registered via promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all bfj collectors are registered with.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer Handler serves from.
var Gatherer = prometheus.DefaultGatherer

// Handler returns an HTTP handler exposing all registered metrics in the
// Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics
//
// Requests (pkg/client):
//   - bfj_requests_total{endpoint, result} (Counter): hit, miss or closed
//   - bfj_requests_cancelled_total{endpoint} (Counter): queued requests dropped at a forced shutdown
//   - bfj_fetch_duration_seconds{endpoint} (Histogram): fetch-and-parse time on a worker
//   - bfj_errors_total{class} (Counter): fetch failures by class (client, server, network, parse, panic)
//   - bfj_http_responses_total{endpoint, status} (Counter): API responses by status code
//   - bfj_exception_handler_panics_total (Counter): panics recovered from the exception handler
//   - bfj_shutdowns_total{result} (Counter): graceful or forced
//
// Cache (pkg/cache):
//   - bfj_cache_hits_total{outcome} (Counter): fresh entries served, by success/failure
//   - bfj_cache_misses_total (Counter): absent or expired lookups
//   - bfj_cache_evictions_total (Counter): expired entries removed on read
//   - bfj_cache_stores_total{outcome} (Counter): outcomes written
//   - bfj_cache_entries (Gauge): entries currently held
//
// Worker pool (pkg/workerpool):
//   - bfj_pool_queue_depth (Gauge): tasks waiting for a worker
//   - bfj_pool_active_workers (Gauge): workers currently running a task
//   - bfj_pool_tasks_total{result} (Counter): completed, panic or rejected
//   - bfj_pool_task_duration_seconds (Histogram)
//
// Example queries:
//
//   # Cache hit rate
//   sum(rate(bfj_cache_hits_total[5m])) /
//   (sum(rate(bfj_cache_hits_total[5m])) + sum(rate(bfj_cache_misses_total[5m])))
//
//   # Fetch error rate by class
//   sum by (class) (rate(bfj_errors_total[5m]))
//
//   # P95 fetch latency
//   histogram_quantile(0.95, rate(bfj_fetch_duration_seconds_bucket[5m]))
//
//   # Backlog
//   bfj_pool_queue_depth > 100
