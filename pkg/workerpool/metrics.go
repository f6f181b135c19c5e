package workerpool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for worker pools.
var (
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bfj_pool_queue_depth",
		Help: "Number of tasks waiting for a worker",
	})

	activeWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bfj_pool_active_workers",
		Help: "Number of workers currently executing a task",
	})

	tasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bfj_pool_tasks_total",
		Help: "Total tasks by result (completed, panic, rejected)",
	}, []string{"result"})

	taskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bfj_pool_task_duration_seconds",
		Help:    "Task execution time in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	})
)
