package manifest

import (
	"context"
	"strings"
	"testing"

	"github.com/openloom/loom/pkg/container"
	"github.com/openloom/loom/pkg/facts"
)

const sampleManifest = `
components:
  - name: database
    conditions:
      - kind: property
        property: db.url
  - name: cache
    conditions:
      - kind: capability
        capabilities: [redis]
  - name: memory-cache
    conditions:
      - kind: bean_absent
        beans: [cache]
  - name: repository
    dependencies:
      - name: database
      - name: cache
        optional: true
  - name: worker
    scope: prototype
    order: 5
    depends_on: [repository]
`

func TestParser_Parse(t *testing.T) {
	m, err := NewParser().Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(m.Components) != 5 {
		t.Fatalf("Expected 5 components, got %d", len(m.Components))
	}

	descriptors, err := m.Descriptors()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if descriptors[4].Scope != "prototype" || descriptors[4].Order != 5 {
		t.Errorf("Expected worker scope/order preserved")
	}
	if len(descriptors[3].Dependencies) != 2 || !descriptors[3].Dependencies[1].Optional {
		t.Errorf("Expected repository dependencies preserved")
	}
}

func TestParser_RejectsInvalidYAML(t *testing.T) {
	if _, err := NewParser().Parse([]byte("components: [unterminated")); err == nil {
		t.Errorf("Expected YAML error")
	}
}

func TestParser_RejectsStructuralErrors(t *testing.T) {
	cases := []string{
		// No components.
		"components: []",
		// Missing name.
		"components:\n  - scope: singleton",
		// Unknown scope.
		"components:\n  - name: a\n    scope: conversation",
		// Unknown condition kind.
		"components:\n  - name: a\n    conditions:\n      - kind: weather",
		// Dependency without a name.
		"components:\n  - name: a\n    dependencies:\n      - optional: true",
	}
	for i, doc := range cases {
		if _, err := NewParser().Parse([]byte(doc)); err == nil {
			t.Errorf("Expected case %d to be rejected", i)
		}
	}
}

func TestParser_RejectsIncompleteConditions(t *testing.T) {
	doc := `
components:
  - name: a
    conditions:
      - kind: capability
`
	m, err := NewParser().Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Expected structural parse to succeed, got: %v", err)
	}
	_, err = m.Descriptors()
	if err == nil {
		t.Fatalf("Expected capability condition without capabilities to be rejected")
	}
	if !strings.Contains(err.Error(), "a") {
		t.Errorf("Expected component name in error, got: %v", err)
	}
}

func TestManifest_DrivesContainerInspection(t *testing.T) {
	m, err := NewParser().Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	descriptors, err := m.Descriptors()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	c := container.New(container.Config{
		Facts: &facts.MapSource{
			Properties: map[string]string{"db.url": "postgres://"},
		},
	})
	for _, d := range descriptors {
		if err := c.Register(d); err != nil {
			t.Fatalf("Expected registration of %s, got: %v", d.Name, err)
		}
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Expected start, got: %v", err)
	}
	defer c.Close(context.Background())

	existence := c.Existence()
	if !existence.Exists("database") || existence.Exists("cache") || !existence.Exists("memory-cache") {
		t.Errorf("Expected database and memory-cache present, cache absent; got %v", existence.Present)
	}

	order := c.Graph().InitializationOrder()
	dbIdx, repoIdx := -1, -1
	for i, name := range order {
		switch name {
		case "database":
			dbIdx = i
		case "repository":
			repoIdx = i
		}
	}
	if dbIdx < 0 || repoIdx < 0 || dbIdx > repoIdx {
		t.Errorf("Expected database before repository, got %v", order)
	}
}
