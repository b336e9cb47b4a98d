package facts

import (
	"testing"
)

func TestMapSource(t *testing.T) {
	src := &MapSource{
		Capabilities: map[string]bool{"redis": true},
		Properties:   map[string]string{"mode": "fast"},
		Profiles:     []string{"production"},
	}

	if !src.HasCapability("redis") {
		t.Errorf("Expected redis capability")
	}
	if src.HasCapability("kafka") {
		t.Errorf("Expected no kafka capability")
	}

	v, ok := src.Property("mode")
	if !ok || v != "fast" {
		t.Errorf("Expected mode=fast, got %q (%v)", v, ok)
	}
	if _, ok := src.Property("missing"); ok {
		t.Errorf("Expected missing property to be absent")
	}

	profiles := src.ActiveProfiles()
	if len(profiles) != 1 || profiles[0] != "production" {
		t.Errorf("Expected [production], got %v", profiles)
	}
}

func TestEnvSource_KeyTranslation(t *testing.T) {
	t.Setenv("LOOM_CACHE_ENABLED", "true")
	t.Setenv("APP_DB_POOL_SIZE", "10")

	src := &EnvSource{}
	v, ok := src.Property("cache.enabled")
	if !ok || v != "true" {
		t.Errorf("Expected cache.enabled=true via LOOM_CACHE_ENABLED, got %q (%v)", v, ok)
	}

	custom := &EnvSource{Prefix: "APP"}
	v, ok = custom.Property("db-pool.size")
	if !ok || v != "10" {
		t.Errorf("Expected db-pool.size=10 via APP_DB_POOL_SIZE, got %q (%v)", v, ok)
	}
}

func TestEnvSource_Profiles(t *testing.T) {
	t.Setenv("LOOM_PROFILES", "production, eu ,")

	src := &EnvSource{}
	profiles := src.ActiveProfiles()
	if len(profiles) != 2 || profiles[0] != "production" || profiles[1] != "eu" {
		t.Errorf("Expected [production eu], got %v", profiles)
	}
}

func TestEnvSource_NeverReportsCapabilities(t *testing.T) {
	src := &EnvSource{}
	if src.HasCapability("anything") {
		t.Errorf("Expected environment source to report no capabilities")
	}
}

func TestSplitProfiles(t *testing.T) {
	got := SplitProfiles(" a ,, b,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Expected [a b], got %v", got)
	}
	if got := SplitProfiles(""); len(got) != 0 {
		t.Errorf("Expected empty result, got %v", got)
	}
}

func TestNormalizeProfiles(t *testing.T) {
	got := NormalizeProfiles([]string{"b", "a", "b", ""})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Expected sorted deduplicated [a b], got %v", got)
	}
}
