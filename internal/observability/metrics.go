// Package observability provides structured logging and Prometheus metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// StoreOpLatency records MongoDB operation latency by operation and collection.
	StoreOpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quill_store_op_latency_seconds",
		Help:    "MongoDB operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "collection"})

	// LikeToggles counts like toggles by resulting action.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_like_toggles_total",
		Help: "Total number of like toggles by action",
	}, []string{"action"})

	// UploadFailures counts failed image-host uploads.
	UploadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_upload_failures_total",
		Help: "Total number of failed image uploads",
	})
)

// ObserveStoreOp records the latency of a store operation started at t.
func ObserveStoreOp(operation, collection string, t time.Time) {
	StoreOpLatency.WithLabelValues(operation, collection).Observe(time.Since(t).Seconds())
}
