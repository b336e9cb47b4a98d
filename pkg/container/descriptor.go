package container

import (
	"context"
	"fmt"
	"reflect"
)

// Factory constructs the raw instance of a component. The already
// resolved constructor dependency values are supplied in declaration
// order. Supplied by the caller alongside the descriptor; the container
// never reflects over constructors itself.
type Factory func(deps ...any) (any, error)

// Hook is an ordered start/stop lifecycle callback. Start hooks run after
// the container finishes eager initialization; stop hooks run during
// Close before pre-destroy callbacks, in reverse initialization order.
type Hook func(ctx context.Context, instance any) error

// DependencyKind describes the injection style of a dependency.
type DependencyKind string

const (
	// KindConstructor dependencies are passed to the Factory in
	// declaration order.
	KindConstructor DependencyKind = "constructor"

	// KindField dependencies are assigned after construction via the
	// dependency's Assign callback.
	KindField DependencyKind = "field"

	// KindMethod dependencies are supplied to a setter-style Assign
	// callback after construction.
	KindMethod DependencyKind = "method"
)

// Validate checks if the dependency kind is valid.
func (k DependencyKind) Validate() error {
	switch k {
	case KindConstructor, KindField, KindMethod:
		return nil
	default:
		return fmt.Errorf("invalid dependency kind: %s", k)
	}
}

// Dependency declares one injection point of a component.
//
// A dependency targets another component either by assignable type
// (interface-aware) or by explicit name. Optional dependencies do not
// require the target to exist; Provider dependencies receive a lazy
// *Provider handle instead of the value and never force construction
// order; Collection dependencies receive every matching component as a
// []any ordered by order value then declaration order.
type Dependency struct {
	// Type is the target component type. Interface types match any
	// existing implementor. May be nil when Name is set.
	Type reflect.Type `json:"-"`

	// Name targets a component by its unique name, or disambiguates a
	// type match against a qualifier.
	Name string `json:"name,omitempty"`

	// Kind is the injection style.
	Kind DependencyKind `json:"kind"`

	// Optional dependencies tolerate a missing target; the injection
	// point receives the zero value.
	Optional bool `json:"optional,omitempty"`

	// Provider dependencies receive a lazy *Provider handle. The edge is
	// recorded for ordering when the target exists but never creates a
	// hard ordering requirement, which is how cycles are broken.
	Provider bool `json:"provider,omitempty"`

	// Collection dependencies receive all matching components.
	Collection bool `json:"collection,omitempty"`

	// Assign fills a field or setter injection point after
	// construction. Required for KindField and KindMethod.
	Assign func(instance, value any) error `json:"-"`
}

// required reports whether the dependency demands that its target exist.
func (d Dependency) required() bool {
	return !d.Optional && !d.Provider
}

// describeTarget renders the dependency target for error messages.
func (d Dependency) describeTarget() string {
	if d.Name != "" {
		return fmt.Sprintf("%q", d.Name)
	}
	if d.Type != nil {
		return d.Type.String()
	}
	return "<unspecified>"
}

// Descriptor is the immutable metadata describing one declared component.
//
// Descriptors are created once, before the container starts, and never
// mutated afterward. Use NewDescriptor to build one; the builder flattens
// shorthand declarations into the canonical fields.
type Descriptor struct {
	// Name uniquely identifies the component within one container.
	Name string `json:"name"`

	// Type is the primary component type. Nil for declaration-only
	// descriptors (e.g. loaded from a manifest for graph inspection).
	Type reflect.Type `json:"-"`

	// Provides lists additional types (usually interfaces) under which
	// the component is resolvable.
	Provides []reflect.Type `json:"-"`

	// Scope is the scope id controlling instance caching. Empty means
	// the container's default scope.
	Scope string `json:"scope,omitempty"`

	// Qualifier is an optional disambiguation label.
	Qualifier string `json:"qualifier,omitempty"`

	// Primary marks the preferred candidate when several components
	// match a requested type.
	Primary bool `json:"primary,omitempty"`

	// Order is the precedence value; lower sorts first.
	Order int `json:"order,omitempty"`

	// Lazy components are not eagerly instantiated during Start.
	Lazy bool `json:"lazy,omitempty"`

	// Dependencies are the declared injection points, in order.
	Dependencies []Dependency `json:"dependencies,omitempty"`

	// Conditions gate the component's existence. All must match.
	Conditions []Condition `json:"conditions,omitempty"`

	// DependsOn names components that must initialize first,
	// independent of injection.
	DependsOn []string `json:"depends_on,omitempty"`

	// DependsOnDestroy names components that must be destroyed after
	// this one.
	DependsOnDestroy []string `json:"depends_on_destroy,omitempty"`

	// Factory constructs the raw instance. Nil only for
	// declaration-only descriptors.
	Factory Factory `json:"-"`

	// PostConstruct runs after all injection points are filled; a
	// non-nil error fails creation.
	PostConstruct func(instance any) error `json:"-"`

	// PreDestroy runs during teardown, before the instance is released
	// from its scope.
	PreDestroy func(instance any) error `json:"-"`

	// StartHooks run in initialization order after Start.
	StartHooks []Hook `json:"-"`

	// StopHooks run in destruction order during Close.
	StopHooks []Hook `json:"-"`

	// index is the stable declaration position, assigned at
	// registration. It is the final tie-breaker everywhere ordering
	// must be deterministic.
	index int
}

// Validate checks descriptor invariants that do not require the full
// descriptor set.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return NewResolutionError("descriptor has empty name", nil).
			WithCode(ErrCodeValidation)
	}
	for i, dep := range d.Dependencies {
		if err := dep.Kind.Validate(); err != nil {
			return NewResolutionError(
				fmt.Sprintf("dependency %d of %s: %v", i, d.Name, err), nil).
				WithCode(ErrCodeValidation).WithComponent(d.Name)
		}
		if dep.Type == nil && dep.Name == "" {
			return NewResolutionError(
				fmt.Sprintf("dependency %d of %s targets neither a type nor a name", i, d.Name), nil).
				WithCode(ErrCodeValidation).WithComponent(d.Name)
		}
		if dep.Kind != KindConstructor && dep.Assign == nil && d.Factory != nil {
			return NewResolutionError(
				fmt.Sprintf("dependency %d of %s is %s-injected but has no Assign callback", i, d.Name, dep.Kind), nil).
				WithCode(ErrCodeValidation).WithComponent(d.Name)
		}
	}
	for i, cond := range d.Conditions {
		if err := cond.Validate(); err != nil {
			return NewResolutionError(
				fmt.Sprintf("condition %d of %s: %v", i, d.Name, err), nil).
				WithCode(ErrCodeValidation).WithComponent(d.Name)
		}
	}
	return nil
}

// hasBeanConditions reports whether any condition references bean
// presence, which forces fixed-point evaluation.
func (d *Descriptor) hasBeanConditions() bool {
	for _, c := range d.Conditions {
		if c.Kind == ConditionBeanPresent || c.Kind == ConditionBeanAbsent {
			return true
		}
	}
	return false
}

// providesType reports whether the descriptor is resolvable under t.
func (d *Descriptor) providesType(t reflect.Type) bool {
	if t == nil || d.Type == nil {
		return false
	}
	if d.Type == t {
		return true
	}
	for _, p := range d.Provides {
		if p == t {
			return true
		}
	}
	if t.Kind() == reflect.Interface && d.Type.Implements(t) {
		return true
	}
	return false
}
