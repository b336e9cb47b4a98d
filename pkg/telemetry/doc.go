// Package telemetry provides observability instrumentation for Loom.
//
// The telemetry package integrates structured logging (zerolog) and
// metrics (Prometheus) for monitoring and debugging container behavior.
//
// # Structured Logging
//
// The logger provides component-specific logging:
//
//	logger, err := telemetry.NewLogger(cfg.Logging)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	clog := logger.NewComponentLogger("container")
//	clog.WithScope("singleton").Info("Instance created")
//	clog.WithError(err).Error("Creation failed")
//
// Log levels: trace, debug, info, warn, error, fatal
//
// # Metrics
//
// Prometheus metrics track container behavior:
//
//	metrics, err := telemetry.NewMetrics(cfg.Metrics)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Record a resolution
//	metrics.RecordResolution("ok", duration)
//
//	// Record instance lifecycle
//	metrics.RecordInstanceCreated("singleton", duration)
//	metrics.RecordInstanceDestroyed("singleton", "ok")
//
//	// Record errors
//	metrics.RecordError("creation", "FACTORY_FAILED")
//
// Metrics are exposed via HTTP at /metrics (default: :9090/metrics).
// A disabled MetricsConfig yields a no-op collector, so call sites
// never branch on whether metrics are on.
//
// Key metrics exposed:
//
//   - loom_resolutions_total{status}
//   - loom_resolution_duration_seconds{status}
//   - loom_instances_created_total{scope}
//   - loom_instances_destroyed_total{scope,status}
//   - loom_instance_creation_duration_seconds{scope}
//   - loom_live_instances{scope}
//   - loom_container_starts_total
//   - loom_container_rebuilds_total
//   - loom_errors_by_class_total{class}
//   - loom_errors_by_code_total{code}
//
// # Configuration
//
// The package provides pre-configured setups for different environments:
//
//	// Development (verbose console logging)
//	cfg := telemetry.DevelopmentConfig()
//
//	// Production (JSON logs, sampling)
//	cfg := telemetry.ProductionConfig()
//
//	// Custom configuration
//	cfg := &telemetry.Config{
//	    ServiceName:    "loom",
//	    ServiceVersion: "1.0.0",
//	    Logging: telemetry.LoggingConfig{
//	        Level:  "info",
//	        Format: "json",
//	    },
//	    Metrics: telemetry.MetricsConfig{
//	        Enabled:       true,
//	        ListenAddress: ":9090",
//	    },
//	}
//
// # Security Considerations
//
//   - Never log sensitive data (credentials, keys, tokens)
//   - Limit metrics endpoint access via network policies
package telemetry
