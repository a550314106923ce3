// Package metrics provides Prometheus metrics for the mentor service.
package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Engine
	comparisons        prometheus.Counter
	comparisonLatency  prometheus.Histogram
	matchRequests      prometheus.Counter
	matchEmpty         prometheus.Counter
	feedbackItems      *prometheus.CounterVec
	recommendations    *prometheus.CounterVec
	recommendLatency   prometheus.Histogram
	classifications    prometheus.Counter
	suggestions        *prometheus.CounterVec
	analysesProcessed  prometheus.Counter
	analysesDuplicate  prometheus.Counter
	normalizationError prometheus.Counter

	// Live sessions
	sessionsActive  prometheus.Gauge
	sessionsStarted prometheus.Counter
	sessionsEnded   *prometheus.CounterVec
	chunksProcessed prometheus.Counter
	chunksRejected  prometheus.Counter
	chunkLatency    prometheus.Histogram

	// Queue
	queueEnqueue       prometheus.Counter
	queueDequeue       prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Repository
	repositoryRecords       prometheus.Gauge
	repositoryLearners      prometheus.Gauge
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     prometheus.Counter

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemGoroutines  prometheus.Gauge
	systemMemoryBytes prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide collectors

// customRegistry keeps the default Go collectors out of the exposition.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "mentor",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.comparisons = m.counter("comparisons_total", "Total number of learner/expert comparisons computed")
	m.comparisonLatency = m.histogram("comparison_latency_milliseconds", "Latency of a single weighted comparison")
	m.matchRequests = m.counter("match_requests_total", "Total number of best-match searches")
	m.matchEmpty = m.counter("match_empty_total", "Best-match searches that returned no experts")
	m.feedbackItems = m.counterVec("feedback_items_total", "Feedback items generated by kind", "kind")
	m.recommendations = m.counterVec("recommendations_total", "Recommendation candidates returned by strategy", "strategy")
	m.recommendLatency = m.histogram("recommendation_latency_milliseconds", "Latency of a personalized recommendation request")
	m.classifications = m.counter("classifications_total", "Total number of threshold classifications")
	m.suggestions = m.counterVec("suggestions_total", "Real-time suggestions emitted by priority", "priority")
	m.analysesProcessed = m.counter("analyses_processed_total", "Analyses normalized, matched and recorded")
	m.analysesDuplicate = m.counter("analyses_duplicate_total", "Analyses rejected as already processed")
	m.normalizationError = m.counter("normalization_errors_total", "Raw analyses rejected as malformed")

	m.sessionsActive = m.gauge("sessions_active", "Live sessions currently accepting chunks")
	m.sessionsStarted = m.counter("sessions_started_total", "Live sessions started")
	m.sessionsEnded = m.counterVec("sessions_ended_total", "Live sessions ended by reason", "reason")
	m.chunksProcessed = m.counter("chunks_processed_total", "Session chunks classified")
	m.chunksRejected = m.counter("chunks_rejected_total", "Session chunks rejected because the session queue was full or closed")
	m.chunkLatency = m.histogram("chunk_latency_milliseconds", "Time from chunk arrival to suggestions emitted")

	m.queueEnqueue = m.counter("queue_enqueue_total", "Items enqueued")
	m.queueDequeue = m.counter("queue_dequeue_total", "Items dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Enqueue attempts rejected")

	m.repositoryRecords = m.gauge("repository_comparison_records", "Comparison records retained in the history store")
	m.repositoryLearners = m.gauge("repository_learners", "Distinct learners with recorded comparisons")
	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds", "History store write latency")
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds", "History store read latency")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRateLimited = m.counter("http_rate_limited_total", "Requests rejected by the rate limiter")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint, method and type", "endpoint", "method", "error_type")

	m.systemGoroutines = m.gauge("system_goroutines", "Number of goroutines")
	m.systemMemoryBytes = m.gauge("system_memory_bytes", "Heap bytes in use")
}

// RecordComparison counts one comparison and its latency.
func RecordComparison(latencyMs float64) {
	globalManager.comparisons.Inc()
	globalManager.comparisonLatency.Observe(latencyMs)
}

// RecordMatchRequest counts a best-match search and whether it came back empty.
func RecordMatchRequest(results int) {
	globalManager.matchRequests.Inc()
	if results == 0 {
		globalManager.matchEmpty.Inc()
	}
}

// RecordFeedbackItems adds n feedback items of the given kind.
func RecordFeedbackItems(kind string, n int) {
	if n > 0 {
		globalManager.feedbackItems.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordRecommendation counts one returned candidate for strategy.
func RecordRecommendation(strategy string) {
	globalManager.recommendations.WithLabelValues(strategy).Inc()
}

// RecordRecommendationLatency records the latency of a recommendation request.
func RecordRecommendationLatency(latencyMs float64) {
	globalManager.recommendLatency.Observe(latencyMs)
}

// RecordClassification counts a classification and its suggestions by priority.
func RecordClassification(priorities ...string) {
	globalManager.classifications.Inc()
	for _, p := range priorities {
		globalManager.suggestions.WithLabelValues(p).Inc()
	}
}

// RecordAnalysisProcessed increments the processed analyses counter.
func RecordAnalysisProcessed() { globalManager.analysesProcessed.Inc() }

// RecordAnalysisDuplicate increments the duplicate analyses counter.
func RecordAnalysisDuplicate() { globalManager.analysesDuplicate.Inc() }

// RecordNormalizationError increments the malformed analyses counter.
func RecordNormalizationError() { globalManager.normalizationError.Inc() }

// RecordSessionStarted marks a new live session.
func RecordSessionStarted() {
	globalManager.sessionsStarted.Inc()
	globalManager.sessionsActive.Inc()
}

// RecordSessionEnded marks a live session as finished for reason.
func RecordSessionEnded(reason string) {
	globalManager.sessionsEnded.WithLabelValues(reason).Inc()
	globalManager.sessionsActive.Dec()
}

// RecordChunkProcessed records a classified chunk and its end-to-end latency.
func RecordChunkProcessed(latencyMs float64) {
	globalManager.chunksProcessed.Inc()
	globalManager.chunkLatency.Observe(latencyMs)
}

// RecordChunkRejected increments the rejected chunks counter.
func RecordChunkRejected() { globalManager.chunksRejected.Inc() }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueue.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeue.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateRepositorySize sets the record and learner gauges.
func UpdateRepositorySize(records, learners int) {
	globalManager.repositoryRecords.Set(float64(records))
	globalManager.repositoryLearners.Set(float64(learners))
}

// RecordRepositoryUpdateLatency records history store write latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records history store read latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited increments the rate limited requests counter.
func RecordRateLimited() { globalManager.httpRateLimited.Inc() }

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method and type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMetrics samples goroutine count and heap usage.
func UpdateSystemMetrics() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemGoroutines.Set(float64(runtime.NumGoroutine()))
	globalManager.systemMemoryBytes.Set(float64(ms.HeapInuse))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
