package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation on a private registry.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec

	sweeperRuns          *prometheus.CounterVec
	sweeperExpired       prometheus.Counter
	realtimeConnections  prometheus.Gauge
	realtimeEvents       *prometheus.CounterVec
	realtimeDropped      *prometheus.CounterVec
	notificationsPurged  prometheus.Counter
	notificationFailures prometheus.Counter

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	sweeperRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sweeper_runs_total",
		Help: "Pickup expiry sweeps by result",
	}, []string{"result"})

	sweeperExpired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sweeper_expired_total",
		Help: "Document requests moved to unclaimed by the sweeper",
	})

	realtimeConnections := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_connections",
		Help: "Open realtime sockets on this instance",
	})

	realtimeEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_events_total",
		Help: "Realtime frames queued to sockets",
	}, []string{"event"})

	realtimeDropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_dropped_total",
		Help: "Realtime frames dropped because a socket buffer was full",
	}, []string{"event"})

	notificationsPurged := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifications_purged_total",
		Help: "Read notifications removed by the retention janitor",
	})

	notificationFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_delivery_failures_total",
		Help: "Notification jobs that failed to persist",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses, dbQueryDuration,
		sweeperRuns, sweeperExpired, realtimeConnections, realtimeEvents, realtimeDropped,
		notificationsPurged, notificationFailures, goroutines,
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:             registry,
		handler:              handler,
		requestDuration:      requestDuration,
		requestTotal:         requestTotal,
		cacheLatency:         cacheLatency,
		cacheWrite:           cacheWrite,
		cacheHitRatio:        cacheHitRatio,
		cacheHits:            cacheHits,
		cacheMisses:          cacheMisses,
		dbQueryDuration:      dbQueryDuration,
		sweeperRuns:          sweeperRuns,
		sweeperExpired:       sweeperExpired,
		realtimeConnections:  realtimeConnections,
		realtimeEvents:       realtimeEvents,
		realtimeDropped:      realtimeDropped,
		notificationsPurged:  notificationsPurged,
		notificationFailures: notificationFailures,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the private registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordSweep counts one sweeper tick. result is "ok", "error" or "skipped".
func (m *MetricsService) RecordSweep(result string, expired int) {
	if m == nil {
		return
	}
	m.sweeperRuns.WithLabelValues(result).Inc()
	if expired > 0 {
		m.sweeperExpired.Add(float64(expired))
	}
}

// RecordPurge counts notifications removed by the retention janitor.
func (m *MetricsService) RecordPurge(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.notificationsPurged.Add(float64(n))
}

// RecordNotificationFailure counts a notification job that exhausted its retries.
func (m *MetricsService) RecordNotificationFailure() {
	if m == nil {
		return
	}
	m.notificationFailures.Inc()
}

// SocketOpened implements realtime.Metrics.
func (m *MetricsService) SocketOpened() {
	if m == nil {
		return
	}
	m.realtimeConnections.Inc()
}

// SocketClosed implements realtime.Metrics.
func (m *MetricsService) SocketClosed() {
	if m == nil {
		return
	}
	m.realtimeConnections.Dec()
}

// EventSent implements realtime.Metrics.
func (m *MetricsService) EventSent(event string) {
	if m == nil {
		return
	}
	m.realtimeEvents.WithLabelValues(event).Inc()
}

// EventDropped implements realtime.Metrics.
func (m *MetricsService) EventDropped(event string) {
	if m == nil {
		return
	}
	m.realtimeDropped.WithLabelValues(event).Inc()
}
