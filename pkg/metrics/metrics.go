package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the dedicated registry exposed on /api/metrics. A dedicated
// registry keeps default Go collector noise out of the scrape.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Custom histogram buckets optimized for API response times ranging from milliseconds to 30+ seconds
	// This provides better granularity for monitoring payment gateway calls and cache refresh operations
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Payment Gateway Metrics
	GatewayRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_gateway_operation_duration_seconds",
			Help:    "Payment gateway operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	GatewayRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_gateway_operation_total",
			Help: "Total number of payment gateway operations",
		},
		[]string{"operation", "status"},
	)

	// Database Metrics
	DatabaseRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	DatabaseRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_operation_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "status"},
	)

	// Cache Metrics
	CacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	CacheSize = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Number of entries in cache",
		},
		[]string{"cache_name"},
	)

	// Business Metrics
	EnquirySubmissions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfs_enquiry_submissions_total",
			Help: "Total number of enquiry submissions",
		},
		[]string{"mode", "status"},
	)

	EnquiryDraftsOpened = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfs_enquiry_drafts_opened_total",
			Help: "Total number of enquiry drafts opened",
		},
		[]string{"mode"},
	)

	OrdersCreated = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfs_payment_orders_created_total",
			Help: "Total number of payment orders created",
		},
		[]string{"status"},
	)

	PaymentVerifications = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfs_payment_verifications_total",
			Help: "Total number of payment signature verifications",
		},
		[]string{"status"},
	)

	WebhookEvents = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfs_payment_webhook_events_total",
			Help: "Total number of payment webhook events received",
		},
		[]string{"event", "status"},
	)

	FeedComputations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sfs_upcoming_feed_computations_total",
			Help: "Upcoming sessions feed computations, split by memoization outcome",
		},
		[]string{"outcome"}, // "computed" or "memoized"
	)

	// Infrastructure Metrics
	GoRoutines = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)

	serviceInfo = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "service_info",
			Help: "Static service identification labels",
		},
		[]string{"service_name"},
	)
)

// Init records static service identification labels
func Init(serviceName string) {
	serviceInfo.WithLabelValues(serviceName).Set(1)
}

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
