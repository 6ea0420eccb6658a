package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resource-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edu",
			Subsystem: "resource_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edu",
			Subsystem: "resource_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Upload counters
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edu",
			Subsystem: "resource_api",
			Name:      "uploads_total",
			Help:      "Total resource uploads",
		},
		[]string{"resource_type", "status"},
	)

	// Upload bytes counter
	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edu",
			Subsystem: "resource_api",
			Name:      "upload_bytes_total",
			Help:      "Total bytes uploaded",
		},
		[]string{"resource_type"},
	)

	// Storage operations counter
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edu",
			Subsystem: "resource_api",
			Name:      "storage_operations_total",
			Help:      "Total storage backend operations",
		},
		[]string{"provider", "operation", "status"},
	)

	// Storage operation duration
	StorageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edu",
			Subsystem: "resource_api",
			Name:      "storage_duration_seconds",
			Help:      "Storage backend operation duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"provider", "operation"},
	)

	// Presign URL duration
	PresignDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "edu",
			Subsystem: "resource_api",
			Name:      "presign_duration_seconds",
			Help:      "Presigned URL generation duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1},
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records a resource upload
func RecordUpload(resourceType, status string, bytes int64) {
	UploadsTotal.WithLabelValues(resourceType, status).Inc()
	if status == "success" {
		UploadBytesTotal.WithLabelValues(resourceType).Add(float64(bytes))
	}
}

// RecordStorageOperation records a storage backend operation
func RecordStorageOperation(provider, operation string, err error, durationSec float64) {
	status := "success"
	if err != nil {
		status = "error"
	}
	StorageOperationsTotal.WithLabelValues(provider, operation, status).Inc()
	StorageDuration.WithLabelValues(provider, operation).Observe(durationSec)
}

// RecordPresign records presigned URL generation
func RecordPresign(durationSec float64) {
	PresignDuration.Observe(durationSec)
}
