package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API
// and the scheduling engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	placements      *prometheus.CounterVec
	conflicts       *prometheus.GaugeVec
	sessions        prometheus.Gauge
	saveDuration    prometheus.Histogram
	undoDepth       prometheus.Histogram
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

	placements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_placements_total",
		Help: "Total timetable mutations by action and outcome",
	}, []string{"action", "outcome"})

	conflicts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "timetable_conflicts",
		Help: "Current running conflict count per open timetable",
	}, []string{"timetable"})

	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_open_sessions",
		Help: "Number of timetable sessions held in memory",
	})

	saveDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_save_duration_seconds",
		Help:    "Duration of snapshot persistence operations",
		Buckets: prometheus.DefBuckets,
	})

	undoDepth := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_history_depth",
		Help:    "History depth observed at undo/redo time",
		Buckets: []float64{1, 2, 5, 10, 20, 50},
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, placements, conflicts, sessions, saveDuration, undoDepth, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		placements:      placements,
		conflicts:       conflicts,
		sessions:        sessions,
		saveDuration:    saveDuration,
		undoDepth:       undoDepth,
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObservePlacement counts a timetable mutation.
func (m *MetricsService) ObservePlacement(action string, committed bool) {
	if m == nil {
		return
	}
	outcome := "committed"
	if !committed {
		outcome = "blocked"
	}
	m.placements.WithLabelValues(action, outcome).Inc()
}

// SetConflicts publishes the running conflict count for a timetable.
func (m *MetricsService) SetConflicts(timetable string, count int) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(timetable).Set(float64(count))
}

// SetOpenSessions publishes the in-memory session count.
func (m *MetricsService) SetOpenSessions(count int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(count))
}

// ObserveSave records snapshot persistence timing.
func (m *MetricsService) ObserveSave(duration time.Duration) {
	if m == nil {
		return
	}
	m.saveDuration.Observe(duration.Seconds())
}

// ObserveHistoryDepth records history depth at undo/redo time.
func (m *MetricsService) ObserveHistoryDepth(depth int) {
	if m == nil {
		return
	}
	m.undoDepth.Observe(float64(depth))
}
