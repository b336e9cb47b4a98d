package facts

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// fileDocument is the YAML shape of a fact file:
//
//	capabilities:
//	  - redis
//	  - postgres
//	properties:
//	  cache.enabled: "true"
//	profiles:
//	  - dev
type fileDocument struct {
	Capabilities []string          `yaml:"capabilities"`
	Properties   map[string]string `yaml:"properties"`
	Profiles     []string          `yaml:"profiles"`
}

// FileSource loads facts from a YAML document. Reload swaps the snapshot
// atomically, so readers always observe one consistent document.
type FileSource struct {
	path string

	mu   sync.RWMutex
	snap MapSource
}

// NewFileSource loads the YAML fact file at path.
func NewFileSource(path string) (*FileSource, error) {
	s := &FileSource{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileSource) Path() string {
	return s.path
}

// Reload re-reads the backing file and replaces the fact snapshot.
func (s *FileSource) Reload() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read fact file %s: %w", s.path, err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to parse fact file %s: %w", s.path, err)
	}

	caps := make(map[string]bool, len(doc.Capabilities))
	for _, c := range doc.Capabilities {
		caps[c] = true
	}
	props := doc.Properties
	if props == nil {
		props = map[string]string{}
	}

	s.mu.Lock()
	s.snap = MapSource{
		Capabilities: caps,
		Properties:   props,
		Profiles:     doc.Profiles,
	}
	s.mu.Unlock()
	return nil
}

// HasCapability implements Source.
func (s *FileSource) HasCapability(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.HasCapability(name)
}

// Property implements Source.
func (s *FileSource) Property(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Property(name)
}

// ActiveProfiles implements Source.
func (s *FileSource) ActiveProfiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.ActiveProfiles()
}
