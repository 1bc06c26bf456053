package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mint_layer",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mint_layer",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mint_layer",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	mintAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mint_layer",
			Subsystem: "minter",
			Name:      "mints_total",
			Help:      "Total number of mint attempts by outcome.",
		},
		[]string{"status"},
	)

	tokensMinted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mint_layer",
			Subsystem: "minter",
			Name:      "tokens_minted_total",
			Help:      "Total number of token identifiers issued.",
		},
	)

	mintDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mint_layer",
			Subsystem: "minter",
			Name:      "mint_duration_seconds",
			Help:      "Duration of mint operations including registry attachment.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	withdrawals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mint_layer",
			Subsystem: "treasury",
			Name:      "withdrawals_total",
			Help:      "Total number of withdrawal attempts by outcome.",
		},
		[]string{"status"},
	)

	supplyMinted = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mint_layer",
			Subsystem: "collections",
			Name:      "total_minted",
			Help:      "Issued supply per collection.",
		},
		[]string{"collection_id"},
	)

	proceedsHeld = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mint_layer",
			Subsystem: "treasury",
			Name:      "proceeds_held",
			Help:      "Withdrawable proceeds per collection, in base units.",
		},
		[]string{"collection_id"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		mintAttempts,
		tokensMinted,
		mintDuration,
		withdrawals,
		supplyMinted,
		proceedsHeld,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordMint records the outcome of one mint attempt.
func RecordMint(status string, count uint64, duration time.Duration) {
	mintAttempts.WithLabelValues(status).Inc()
	if status == "completed" {
		tokensMinted.Add(float64(count))
	}
	if duration <= 0 {
		duration = time.Millisecond
	}
	mintDuration.Observe(duration.Seconds())
}

// RecordWithdrawal records the outcome of one withdrawal attempt.
func RecordWithdrawal(status string) {
	withdrawals.WithLabelValues(status).Inc()
}

// SetSupply publishes the issued-supply gauge for a collection.
func SetSupply(collectionID string, totalMinted uint64) {
	supplyMinted.WithLabelValues(collectionID).Set(float64(totalMinted))
}

// SetProceeds publishes the withdrawable-proceeds gauge for a collection.
func SetProceeds(collectionID string, proceeds uint64) {
	proceedsHeld.WithLabelValues(collectionID).Set(float64(proceeds))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func canonicalPath(raw string) string {
	if raw == "" || raw == "/" {
		return "/"
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "collections" {
		return "/" + parts[0]
	}
	if len(parts) == 1 {
		return "/collections"
	}
	if len(parts) == 2 {
		return "/collections/:collection"
	}
	return "/collections/:collection/" + parts[2]
}
