package prometheus

import (
	"strconv"
	"time"

	"inventory-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Company context metrics
	CompanyContextMissingCounter prometheus.Counter

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Catalog metrics
	CatalogOperationsCounter prometheus.CounterVec

	// Ledger metrics
	LedgerOperationsCounter  prometheus.CounterVec
	InsufficientStockCounter prometheus.Counter
	ProductStockGauge        prometheus.GaugeVec
	SaleTotalAmountHistogram prometheus.Histogram
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Authentication metrics
	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
	)

	// Company context metrics
	CompanyContextMissingCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_company_context_missing_total",
			Help: "Total number of requests without company context",
		},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Catalog metrics
	CatalogOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_catalog_operations_total",
			Help: "Total number of catalog operations",
		},
		[]string{"entity", "operation"},
	)

	// Ledger metrics
	LedgerOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_ledger_operations_total",
			Help: "Total number of ledger transactions",
		},
		[]string{"operation"},
	)

	InsufficientStockCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_insufficient_stock_total",
			Help: "Total number of sales rejected for insufficient stock",
		},
	)

	ProductStockGauge = *promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_product_stock",
			Help: "Current stock level for products",
		},
		[]string{"product_id", "title"},
	)

	SaleTotalAmountHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    prefix + "_sale_total_amount",
			Help:    "Distribution of sale total amounts",
			Buckets: prometheus.ExponentialBuckets(1, 10, 8),
		},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordCatalogOperation increments the counter for catalog operations
func RecordCatalogOperation(entity, operation string) {
	CatalogOperationsCounter.WithLabelValues(entity, operation).Inc()
}

// RecordLedgerOperation increments the counter for ledger transactions
func RecordLedgerOperation(operation string) {
	LedgerOperationsCounter.WithLabelValues(operation).Inc()
}

// UpdateProductStock updates the stock gauge for a product
func UpdateProductStock(productID uint, title string, quantity int64) {
	ProductStockGauge.WithLabelValues(strconv.FormatUint(uint64(productID), 10), title).Set(float64(quantity))
}
