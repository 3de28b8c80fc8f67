package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generator outcomes recorded by RecordGenerator.
const (
	OutcomeOK          = "ok"
	OutcomeNoRows      = "no_rows"
	OutcomeQueryFailed = "query_failed"
)

// MetricsService owns the Prometheus registry of the dashboard API.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	inFlight          prometheus.Gauge
	generatorDuration *prometheus.HistogramVec
	generatorTotal    *prometheus.CounterVec
	configMutations   *prometheus.CounterVec
	logins            *prometheus.CounterVec
}

// NewMetricsService registers the HTTP, generator and admin collectors.
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

	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Requests currently being served",
	})

	generatorDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "attendance_generator_duration_seconds",
		Help:    "Duration of attendance metric queries per generator",
		Buckets: prometheus.DefBuckets,
	}, []string{"generator"})

	generatorTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_generator_total",
		Help: "Attendance generator runs by outcome",
	}, []string{"generator", "outcome"})

	configMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_config_mutations_total",
		Help: "Admin configuration mutations by type and result",
	}, []string{"type", "result"})

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_logins_total",
		Help: "Admin login attempts by result",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, inFlight, generatorDuration, generatorTotal, configMutations, logins, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		inFlight:          inFlight,
		generatorDuration: generatorDuration,
		generatorTotal:    generatorTotal,
		configMutations:   configMutations,
		logins:            logins,
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

// Registry is exposed for tests that gather collected values.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records latency and count for one finished request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// TrackInFlight moves the in-flight gauge by delta.
func (m *MetricsService) TrackInFlight(delta int) {
	if m == nil {
		return
	}
	m.inFlight.Add(float64(delta))
}

// RecordGenerator counts one generator run and its query latency.
func (m *MetricsService) RecordGenerator(generator, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.generatorDuration.WithLabelValues(generator).Observe(duration.Seconds())
	m.generatorTotal.WithLabelValues(generator, outcome).Inc()
}

// RecordConfigMutation counts one admin mutation by type and result.
func (m *MetricsService) RecordConfigMutation(mutationType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.configMutations.WithLabelValues(mutationType, result).Inc()
}

// RecordLogin counts a login attempt.
func (m *MetricsService) RecordLogin(success bool) {
	if m == nil {
		return
	}
	result := "rejected"
	if success {
		result = "accepted"
	}
	m.logins.WithLabelValues(result).Inc()
}
