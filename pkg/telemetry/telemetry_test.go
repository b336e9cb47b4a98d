package telemetry

import (
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected default config to validate, got: %v", err)
	}

	cfg = DefaultConfig()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Errorf("Expected invalid log level to be rejected")
	}

	cfg = DefaultConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Errorf("Expected invalid log format to be rejected")
	}

	cfg = DefaultConfig()
	cfg.Metrics.ListenAddress = ""
	if err := cfg.Validate(); err == nil {
		t.Errorf("Expected enabled metrics without listen address to be rejected")
	}
}

func TestNewMetrics_Disabled(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{Enabled: false})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// No-op collectors must be safe to call.
	m.RecordResolution("ok", time.Millisecond)
	m.RecordInstanceCreated("singleton", time.Millisecond)
	m.RecordInstanceDestroyed("singleton", "ok")
	m.RecordContainerStart(time.Millisecond)
	m.RecordRebuild()
	m.RecordError("creation", "FACTORY_FAILED")

	// A nil receiver is equally safe, so optional wiring stays simple.
	var nilMetrics *Metrics
	nilMetrics.RecordResolution("ok", time.Millisecond)
	nilMetrics.RecordRebuild()
}

func TestNewMetrics_Enabled(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{
		Enabled:   true,
		Namespace: "loom_test",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	m.RecordResolution("ok", 5*time.Millisecond)
	m.RecordInstanceCreated("singleton", time.Millisecond)
	m.RecordInstanceDestroyed("singleton", "ok")
	m.RecordError("resolution", "MISSING_DEPENDENCY")

	if m.Handler() == nil {
		t.Errorf("Expected metrics handler")
	}
}

func TestLogger_Fields(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{
		Level:  "debug",
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	child := logger.NewComponentLogger("container").
		WithScope("request").
		WithContextID("ctx-1")
	child.Debug("scoped message")

	if child == logger {
		t.Errorf("Expected child loggers to be distinct instances")
	}
}
