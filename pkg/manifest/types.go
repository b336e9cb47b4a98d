package manifest

// Manifest is the root of a component declaration file.
type Manifest struct {
	// Components are the declared components, in declaration order.
	Components []ComponentSpec `yaml:"components" validate:"required,min=1,dive"`
}

// ComponentSpec declares one component.
type ComponentSpec struct {
	// Name uniquely identifies the component.
	Name string `yaml:"name" validate:"required"`

	// Scope is the scope id; empty means the container default.
	Scope string `yaml:"scope,omitempty" validate:"omitempty,oneof=singleton prototype request session"`

	// Qualifier is an optional disambiguation label.
	Qualifier string `yaml:"qualifier,omitempty"`

	// Primary marks the preferred candidate among same-typed components.
	Primary bool `yaml:"primary,omitempty"`

	// Order is the precedence value; lower sorts first.
	Order int `yaml:"order,omitempty"`

	// Lazy defers instantiation until first use.
	Lazy bool `yaml:"lazy,omitempty"`

	// Dependencies are the declared injection points.
	Dependencies []DependencySpec `yaml:"dependencies,omitempty" validate:"dive"`

	// Conditions gate the component's existence.
	Conditions []ConditionSpec `yaml:"conditions,omitempty" validate:"dive"`

	// DependsOn names components that must initialize first.
	DependsOn []string `yaml:"depends_on,omitempty"`

	// DependsOnDestroy names components that must be destroyed after
	// this one.
	DependsOnDestroy []string `yaml:"depends_on_destroy,omitempty"`
}

// DependencySpec declares one injection point by component name.
type DependencySpec struct {
	// Name is the target component name.
	Name string `yaml:"name" validate:"required"`

	// Kind is the injection style; empty means constructor.
	Kind string `yaml:"kind,omitempty" validate:"omitempty,oneof=constructor field method"`

	// Optional tolerates a missing target.
	Optional bool `yaml:"optional,omitempty"`

	// Provider requests a lazy handle instead of the instance.
	Provider bool `yaml:"provider,omitempty"`

	// Collection requests every matching component.
	Collection bool `yaml:"collection,omitempty"`
}

// ConditionSpec declares one existence condition.
type ConditionSpec struct {
	// Kind selects the condition type.
	Kind string `yaml:"kind" validate:"required,oneof=capability property bean_present bean_absent profile"`

	// Capabilities names required capabilities (kind: capability).
	Capabilities []string `yaml:"capabilities,omitempty"`

	// Property is the property name (kind: property).
	Property string `yaml:"property,omitempty"`

	// Expected is the required property value; empty means any value.
	Expected string `yaml:"expected,omitempty"`

	// MatchIfMissing treats a missing property as a match.
	MatchIfMissing bool `yaml:"match_if_missing,omitempty"`

	// Beans names the components checked (kind: bean_present/bean_absent).
	Beans []string `yaml:"beans,omitempty"`

	// Profiles are the profile checks (kind: profile).
	Profiles []string `yaml:"profiles,omitempty"`

	// Strategy combines profile checks: all or any.
	Strategy string `yaml:"strategy,omitempty" validate:"omitempty,oneof=all any"`
}
