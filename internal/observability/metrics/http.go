package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerMetrics carries the api process's metrics on a dedicated
// registry, so tests and the worker never collide with it.
type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	uploadStageTotal      *prometheus.CounterVec
	modelAttemptsTotal    *prometheus.CounterVec
	cascadeExhaustedTotal *prometheus.CounterVec
	analysisFallbackTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ss",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ss",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ss",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	uploadStageTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ss",
			Subsystem: "upload",
			Name:      "stage_total",
			Help:      "Upload jobs reaching each terminal stage.",
		},
		[]string{"service", "stage"},
	)
	modelAttemptsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ss",
			Subsystem: "model",
			Name:      "attempts_total",
			Help:      "Model candidate attempts by outcome.",
		},
		[]string{"service", "model", "status"},
	)
	cascadeExhaustedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ss",
			Subsystem: "model",
			Name:      "cascade_exhausted_total",
			Help:      "Invocations where every candidate failed.",
		},
		[]string{"service"},
	)
	analysisFallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ss",
			Subsystem: "upload",
			Name:      "analysis_fallback_total",
			Help:      "Uploads persisted with placeholder content after an analysis failure.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		uploadStageTotal,
		modelAttemptsTotal,
		cascadeExhaustedTotal,
		analysisFallbackTotal,
	)

	return &HTTPServerMetrics{
		registry:              registry,
		requestTotal:          requestTotal,
		requestDuration:       requestDuration,
		requestInFlight:       requestInFlight,
		uploadStageTotal:      uploadStageTotal,
		modelAttemptsTotal:    modelAttemptsTotal,
		cascadeExhaustedTotal: cascadeExhaustedTotal,
		analysisFallbackTotal: analysisFallbackTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordUploadStage(service, stage string) {
	m.uploadStageTotal.WithLabelValues(service, stage).Inc()
}

func (m *HTTPServerMetrics) RecordModelAttempt(service, model string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.modelAttemptsTotal.WithLabelValues(service, model, status).Inc()
}

func (m *HTTPServerMetrics) RecordCascadeExhausted(service string) {
	m.cascadeExhaustedTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordAnalysisFallback(service string) {
	m.analysisFallbackTotal.WithLabelValues(service).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
