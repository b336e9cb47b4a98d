package facts

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeFactFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Expected write to succeed, got: %v", err)
	}
}

func TestFileSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.yaml")
	writeFactFile(t, path, `
capabilities:
  - redis
properties:
  cache.enabled: "true"
profiles:
  - production
`)

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !src.HasCapability("redis") {
		t.Errorf("Expected redis capability")
	}
	if v, ok := src.Property("cache.enabled"); !ok || v != "true" {
		t.Errorf("Expected cache.enabled=true, got %q (%v)", v, ok)
	}
	if profiles := src.ActiveProfiles(); len(profiles) != 1 || profiles[0] != "production" {
		t.Errorf("Expected [production], got %v", profiles)
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	if _, err := NewFileSource(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("Expected error for missing file")
	}
}

func TestFileSource_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.yaml")
	writeFactFile(t, path, "capabilities: [unterminated")
	if _, err := NewFileSource(path); err == nil {
		t.Errorf("Expected error for invalid YAML")
	}
}

func TestFileSource_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.yaml")
	writeFactFile(t, path, "capabilities: [redis]")

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !src.HasCapability("redis") || src.HasCapability("kafka") {
		t.Fatalf("Expected initial snapshot with redis only")
	}

	writeFactFile(t, path, "capabilities: [kafka]")
	if err := src.Reload(); err != nil {
		t.Fatalf("Expected reload to succeed, got: %v", err)
	}
	if src.HasCapability("redis") || !src.HasCapability("kafka") {
		t.Errorf("Expected snapshot swapped to kafka only")
	}
}

func TestFileSource_ReloadKeepsSnapshotOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.yaml")
	writeFactFile(t, path, "capabilities: [redis]")

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("Expected remove to succeed, got: %v", err)
	}
	if err := src.Reload(); err == nil {
		t.Fatalf("Expected reload of removed file to fail")
	}
	if !src.HasCapability("redis") {
		t.Errorf("Expected previous snapshot to survive a failed reload")
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "facts.yaml")
	writeFactFile(t, path, "capabilities: [redis]")

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	var mu sync.Mutex
	changed := 0
	w, err := NewWatcher(src, func() {
		mu.Lock()
		changed++
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Expected watcher to start, got: %v", err)
	}
	defer w.Close()

	writeFactFile(t, path, "capabilities: [kafka]")

	deadline := time.After(5 * time.Second)
	for {
		mu.Lock()
		n := changed
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("Expected change callback within deadline")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if !src.HasCapability("kafka") {
		t.Errorf("Expected facts reloaded after file change")
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.yaml")
	writeFactFile(t, path, "{}")

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	w, err := NewWatcher(src, nil)
	if err != nil {
		t.Fatalf("Expected watcher to start, got: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Errorf("Expected clean close, got: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Expected second close to be a no-op, got: %v", err)
	}
}
