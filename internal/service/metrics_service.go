package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic, the
// cache and project lifecycle events.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheLookups    *prometheus.CounterVec
	groupsCreated   prometheus.Counter
	groupsAssigned  prometheus.Counter
	tasksSubmitted  prometheus.Counter
	tasksReviewed   *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	chatCalls       *prometheus.CounterVec
}

// NewMetricsService registers the collectors on a private registry.
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
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	groupsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fyp_groups_created_total",
		Help: "Project groups formed by students",
	})

	groupsAssigned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fyp_groups_assigned_total",
		Help: "Project groups accepted by a guide",
	})

	tasksSubmitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fyp_task_submissions_total",
		Help: "Files submitted against tasks",
	})

	tasksReviewed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fyp_task_reviews_total",
		Help: "Task reviews by resulting status",
	}, []string{"status"})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fyp_notification_deliveries_total",
		Help: "Notification inbox entries by outcome",
	}, []string{"outcome"})

	chatCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fyp_chat_requests_total",
		Help: "Chat completions forwarded to the provider",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheLookups,
		groupsCreated, groupsAssigned, tasksSubmitted, tasksReviewed, notifications, chatCalls, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheLookups:    cacheLookups,
		groupsCreated:   groupsCreated,
		groupsAssigned:  groupsAssigned,
		tasksSubmitted:  tasksSubmitted,
		tasksReviewed:   tasksReviewed,
		notifications:   notifications,
		chatCalls:       chatCalls,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// RecordCacheOperation records a cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// GroupCreated counts a newly formed group.
func (m *MetricsService) GroupCreated() {
	if m == nil {
		return
	}
	m.groupsCreated.Inc()
}

// GroupAssigned counts a guide assignment.
func (m *MetricsService) GroupAssigned() {
	if m == nil {
		return
	}
	m.groupsAssigned.Inc()
}

// TaskSubmitted counts a file submission.
func (m *MetricsService) TaskSubmitted() {
	if m == nil {
		return
	}
	m.tasksSubmitted.Inc()
}

// TaskReviewed counts a review by the status it set.
func (m *MetricsService) TaskReviewed(status string) {
	if m == nil {
		return
	}
	m.tasksReviewed.WithLabelValues(status).Inc()
}

// NotificationsDelivered adds n inbox entries.
func (m *MetricsService) NotificationsDelivered(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.notifications.WithLabelValues("delivered").Add(float64(n))
}

// NotificationDeferred counts a fan-out handed to the retry queue.
func (m *MetricsService) NotificationDeferred() {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues("deferred").Inc()
}

// ChatCompleted counts a provider call.
func (m *MetricsService) ChatCompleted(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.chatCalls.WithLabelValues(result).Inc()
}
