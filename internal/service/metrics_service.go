package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/student-profile-api/internal/models"
)

// MetricsService owns the Prometheus registry of the API and keeps a few
// running totals for the JSON system metrics view.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler
	started  time.Time

	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	streamDuration    *prometheus.HistogramVec
	streamSubscribers prometheus.Gauge
	cacheLatency      prometheus.Histogram
	cacheWrite        prometheus.Histogram
	cacheLookups      *prometheus.CounterVec
	cacheHitRatio     prometheus.Gauge
	subjectsCreated   *prometheus.CounterVec
	authOutcomes      *prometheus.CounterVec
	transcripts       *prometheus.CounterVec

	totals struct {
		requests     atomic.Uint64
		requestNanos atomic.Uint64
		cacheHits    atomic.Uint64
		cacheMisses  atomic.Uint64
		subjects     atomic.Uint64
		transcripts  atomic.Uint64
		authRejected atomic.Uint64
		openStreams  atomic.Int64
	}
}

// NewMetricsService registers the API collectors plus the Go runtime and process collectors.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		streamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "subject_stream_duration_seconds",
			Help:    "Lifetime of live subject streams in seconds",
			Buckets: []float64{1, 10, 30, 60, 300, 900, 1800, 3600},
		}, []string{"path"}),
		streamSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "subject_stream_subscribers",
			Help: "Open live subject streams",
		}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "grade_summary_cache_read_seconds",
			Help:    "Latency of GPA summary cache reads",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "grade_summary_cache_write_seconds",
			Help:    "Latency of GPA summary cache writes",
			Buckets: prometheus.DefBuckets,
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grade_summary_cache_lookups_total",
			Help: "GPA summary cache lookups by result",
		}, []string{"result"}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "grade_summary_cache_hit_ratio",
			Help: "Ratio of GPA summary cache hits to lookups",
		}),
		subjectsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subjects_created_total",
			Help: "Subject records created, by status",
		}, []string{"status"}),
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Authentication attempts by action and outcome code",
		}, []string{"action", "outcome"}),
		transcripts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transcripts_rendered_total",
			Help: "Rendered transcripts by format",
		}, []string{"format"}),
	}

	m.registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.streamDuration, m.streamSubscribers,
		m.cacheLatency, m.cacheWrite, m.cacheLookups, m.cacheHitRatio,
		m.subjectsCreated, m.authOutcomes, m.transcripts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one completed request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
	m.totals.requests.Add(1)
	m.totals.requestNanos.Add(uint64(duration.Nanoseconds()))
}

// ObserveStream records how long a server-sent event stream stayed open.
func (m *MetricsService) ObserveStream(path string, duration time.Duration) {
	if m == nil {
		return
	}
	m.streamDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordCacheOperation records a GPA summary cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		m.totals.cacheHits.Add(1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		m.totals.cacheMisses.Add(1)
	}
	m.cacheHitRatio.Set(ratio(m.totals.cacheHits.Load(), m.totals.cacheMisses.Load()))
}

// ObserveCacheWrite records a GPA summary cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordSubjectCreated counts a persisted subject record.
func (m *MetricsService) RecordSubjectCreated(status models.SubjectStatus) {
	if m == nil {
		return
	}
	m.subjectsCreated.WithLabelValues(string(status)).Inc()
	m.totals.subjects.Add(1)
}

// RecordAuth counts an authentication attempt. outcome is "ok" or an error code.
func (m *MetricsService) RecordAuth(action, outcome string) {
	if m == nil {
		return
	}
	m.authOutcomes.WithLabelValues(action, outcome).Inc()
	if outcome != "ok" {
		m.totals.authRejected.Add(1)
	}
}

// RecordTranscript counts a rendered transcript.
func (m *MetricsService) RecordTranscript(format string) {
	if m == nil {
		return
	}
	m.transcripts.WithLabelValues(format).Inc()
	m.totals.transcripts.Add(1)
}

// StreamOpened tracks a newly opened live subject stream.
func (m *MetricsService) StreamOpened() {
	if m == nil {
		return
	}
	m.streamSubscribers.Inc()
	m.totals.openStreams.Add(1)
}

// StreamClosed tracks a closed live subject stream.
func (m *MetricsService) StreamClosed() {
	if m == nil {
		return
	}
	m.streamSubscribers.Dec()
	m.totals.openStreams.Add(-1)
}

// Snapshot returns the running totals for the system metrics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits, misses := m.totals.cacheHits.Load(), m.totals.cacheMisses.Load()
	requests := m.totals.requests.Load()

	var avgMs float64
	if requests > 0 {
		avgMs = float64(m.totals.requestNanos.Load()) / float64(requests) / float64(time.Millisecond)
	}

	now := time.Now()
	return models.SystemMetrics{
		CacheHitRatio:            ratio(hits, misses),
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgMs,
		SubjectsCreated:          m.totals.subjects.Load(),
		TranscriptsRendered:      m.totals.transcripts.Load(),
		AuthRejected:             m.totals.authRejected.Load(),
		OpenStreams:              m.totals.openStreams.Load(),
		Goroutines:               runtime.NumGoroutine(),
		UptimeSeconds:            int64(now.Sub(m.started).Seconds()),
		GeneratedAt:              now.UTC(),
	}
}

func ratio(hits, misses uint64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}
