package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics provides Prometheus metrics for a Loom container.
type Metrics struct {
	config MetricsConfig

	// Resolution metrics
	resolutions        *prometheus.CounterVec
	resolutionDuration *prometheus.HistogramVec

	// Instance metrics
	instancesCreated   *prometheus.CounterVec
	instancesDestroyed *prometheus.CounterVec
	creationDuration   *prometheus.HistogramVec
	liveInstances      *prometheus.GaugeVec

	// Lifecycle metrics
	containerStarts   prometheus.Counter
	containerRebuilds prometheus.Counter
	startDuration     prometheus.Histogram

	// Error metrics
	errorsByClass *prometheus.CounterVec
	errorsByCode  *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolutions_total",
				Help:      "Total number of component resolutions",
			},
			[]string{"status"},
		),
		resolutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "resolution_duration_seconds",
				Help:      "Duration of component resolution in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),

		instancesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "instances_created_total",
				Help:      "Total number of component instances created",
			},
			[]string{"scope"},
		),
		instancesDestroyed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "instances_destroyed_total",
				Help:      "Total number of component instances destroyed",
			},
			[]string{"scope", "status"},
		),
		creationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "instance_creation_duration_seconds",
				Help:      "Duration of instance creation in seconds",
				Buckets:   buckets,
			},
			[]string{"scope"},
		),
		liveInstances: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "live_instances",
				Help:      "Current number of live component instances",
			},
			[]string{"scope"},
		),

		containerStarts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "container_starts_total",
				Help:      "Total number of container starts",
			},
		),
		containerRebuilds: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "container_rebuilds_total",
				Help:      "Total number of container rebuilds",
			},
		),
		startDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "container_start_duration_seconds",
				Help:      "Duration of container start in seconds",
				Buckets:   buckets,
			},
		),

		errorsByClass: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_by_class_total",
				Help:      "Total number of errors by error class",
			},
			[]string{"class"},
		),
		errorsByCode: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_by_code_total",
				Help:      "Total number of errors by error code",
			},
			[]string{"code"},
		),
	}

	registry.MustRegister(
		m.resolutions,
		m.resolutionDuration,
		m.instancesCreated,
		m.instancesDestroyed,
		m.creationDuration,
		m.liveInstances,
		m.containerStarts,
		m.containerRebuilds,
		m.startDuration,
		m.errorsByClass,
		m.errorsByCode,
	)

	return m, nil
}

// Resolution Metrics

// RecordResolution records one Get with its outcome and duration.
func (m *Metrics) RecordResolution(status string, duration time.Duration) {
	if m == nil || m.resolutions == nil {
		return
	}
	m.resolutions.WithLabelValues(status).Inc()
	m.resolutionDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// Instance Metrics

// RecordInstanceCreated records a successful instance creation.
func (m *Metrics) RecordInstanceCreated(scope string, duration time.Duration) {
	if m == nil || m.instancesCreated == nil {
		return
	}
	m.instancesCreated.WithLabelValues(scope).Inc()
	m.creationDuration.WithLabelValues(scope).Observe(duration.Seconds())
	m.liveInstances.WithLabelValues(scope).Inc()
}

// RecordInstanceDestroyed records an instance teardown.
func (m *Metrics) RecordInstanceDestroyed(scope, status string) {
	if m == nil || m.instancesDestroyed == nil {
		return
	}
	m.instancesDestroyed.WithLabelValues(scope, status).Inc()
	m.liveInstances.WithLabelValues(scope).Dec()
}

// Lifecycle Metrics

// RecordContainerStart records a completed Start with its duration.
func (m *Metrics) RecordContainerStart(duration time.Duration) {
	if m == nil || m.containerStarts == nil {
		return
	}
	m.containerStarts.Inc()
	m.startDuration.Observe(duration.Seconds())
}

// RecordRebuild records one controlled rebuild.
func (m *Metrics) RecordRebuild() {
	if m == nil || m.containerRebuilds == nil {
		return
	}
	m.containerRebuilds.Inc()
}

// Error Metrics

// RecordError records an error by class and optionally by code.
func (m *Metrics) RecordError(errorClass, errorCode string) {
	if m == nil || m.errorsByClass == nil {
		return
	}
	m.errorsByClass.WithLabelValues(errorClass).Inc()
	if errorCode != "" && m.errorsByCode != nil {
		m.errorsByCode.WithLabelValues(errorCode).Inc()
	}
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration is a helper to time an operation and record it.
func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(t.Duration().Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn().Err(err).Msg("Metrics server stopped")
		}
	}()

	return nil
}
