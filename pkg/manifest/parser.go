package manifest

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/openloom/loom/pkg/container"
)

// Parser parses and validates component manifests.
type Parser struct {
	validator *validator.Validate
}

// NewParser creates a new manifest parser.
func NewParser() *Parser {
	return &Parser{validator: validator.New()}
}

// ParseFile loads a manifest from disk.
func (p *Parser) ParseFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	m, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates a manifest document.
func (p *Parser) Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if err := p.validator.Struct(&m); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &m, nil
}

// Descriptors converts the manifest into declaration-only descriptors,
// in declaration order. The descriptors carry no factories; they are
// for wiring inspection, not instantiation.
func (m *Manifest) Descriptors() ([]*container.Descriptor, error) {
	out := make([]*container.Descriptor, 0, len(m.Components))
	for _, spec := range m.Components {
		d, err := spec.descriptor()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s ComponentSpec) descriptor() (*container.Descriptor, error) {
	b := container.NewDescriptor(s.Name)
	if s.Scope != "" {
		b.Scope(s.Scope)
	}
	if s.Qualifier != "" {
		b.Qualifier(s.Qualifier)
	}
	if s.Primary {
		b.Primary()
	}
	if s.Order != 0 {
		b.Order(s.Order)
	}
	if s.Lazy {
		b.Lazy()
	}
	b.DependsOn(s.DependsOn...)
	b.DependsOnDestroy(s.DependsOnDestroy...)

	for _, dep := range s.Dependencies {
		kind := container.DependencyKind(dep.Kind)
		if dep.Kind == "" {
			kind = container.KindConstructor
		}
		b.Dependency(container.Dependency{
			Name:       dep.Name,
			Kind:       kind,
			Optional:   dep.Optional,
			Provider:   dep.Provider,
			Collection: dep.Collection,
		})
	}

	for _, cond := range s.Conditions {
		c := container.Condition{
			Kind:           container.ConditionKind(cond.Kind),
			Capabilities:   cond.Capabilities,
			Property:       cond.Property,
			Expected:       cond.Expected,
			MatchIfMissing: cond.MatchIfMissing,
			Beans:          cond.Beans,
			Profiles:       cond.Profiles,
			Strategy:       container.MatchStrategy(cond.Strategy),
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("component %s: %w", s.Name, err)
		}
		b.Condition(c)
	}

	d := b.Build()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
