package container

import "reflect"

// DescriptorBuilder assembles a Descriptor, flattening shorthand
// declarations (scope shorthands, conditional helpers) into the canonical
// fields before any graph logic sees them.
type DescriptorBuilder struct {
	d Descriptor
}

// NewDescriptor starts building a descriptor for the named component.
func NewDescriptor(name string) *DescriptorBuilder {
	return &DescriptorBuilder{d: Descriptor{Name: name}}
}

// Type sets the primary component type from a pointer-typed sample:
//
//	container.NewDescriptor("repo").Type((*UserRepo)(nil))
//
// Passing a non-pointer sample uses its type directly.
func (b *DescriptorBuilder) Type(sample any) *DescriptorBuilder {
	t := reflect.TypeOf(sample)
	if t != nil && t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Interface {
		t = t.Elem()
	}
	b.d.Type = t
	return b
}

// Provides registers additional types the component is resolvable under.
// Interface types are given as pointer samples: (*io.Closer)(nil).
func (b *DescriptorBuilder) Provides(samples ...any) *DescriptorBuilder {
	for _, s := range samples {
		t := reflect.TypeOf(s)
		if t != nil && t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Interface {
			t = t.Elem()
		}
		b.d.Provides = append(b.d.Provides, t)
	}
	return b
}

// Scope sets the scope id.
func (b *DescriptorBuilder) Scope(id string) *DescriptorBuilder {
	b.d.Scope = id
	return b
}

// Prototype is shorthand for Scope("prototype").
func (b *DescriptorBuilder) Prototype() *DescriptorBuilder {
	return b.Scope(ScopePrototype)
}

// RequestScoped is shorthand for Scope("request").
func (b *DescriptorBuilder) RequestScoped() *DescriptorBuilder {
	return b.Scope(ScopeRequest)
}

// SessionScoped is shorthand for Scope("session").
func (b *DescriptorBuilder) SessionScoped() *DescriptorBuilder {
	return b.Scope(ScopeSession)
}

// Qualifier sets the disambiguation label.
func (b *DescriptorBuilder) Qualifier(q string) *DescriptorBuilder {
	b.d.Qualifier = q
	return b
}

// Primary marks the component as the preferred candidate for its types.
func (b *DescriptorBuilder) Primary() *DescriptorBuilder {
	b.d.Primary = true
	return b
}

// Order sets the precedence value; lower sorts first.
func (b *DescriptorBuilder) Order(v int) *DescriptorBuilder {
	b.d.Order = v
	return b
}

// Lazy defers instantiation until first Get.
func (b *DescriptorBuilder) Lazy() *DescriptorBuilder {
	b.d.Lazy = true
	return b
}

// Factory sets the instance factory.
func (b *DescriptorBuilder) Factory(f Factory) *DescriptorBuilder {
	b.d.Factory = f
	return b
}

// Dependency appends a declared injection point.
func (b *DescriptorBuilder) Dependency(dep Dependency) *DescriptorBuilder {
	b.d.Dependencies = append(b.d.Dependencies, dep)
	return b
}

// Requires appends a required constructor dependency on a type.
func (b *DescriptorBuilder) Requires(sample any) *DescriptorBuilder {
	t := reflect.TypeOf(sample)
	if t != nil && t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Interface {
		t = t.Elem()
	}
	return b.Dependency(Dependency{Type: t, Kind: KindConstructor})
}

// RequiresNamed appends a required constructor dependency on a name.
func (b *DescriptorBuilder) RequiresNamed(name string) *DescriptorBuilder {
	return b.Dependency(Dependency{Name: name, Kind: KindConstructor})
}

// Condition appends an existence condition. All conditions must match
// for the component to exist.
func (b *DescriptorBuilder) Condition(c Condition) *DescriptorBuilder {
	b.d.Conditions = append(b.d.Conditions, c)
	return b
}

// OnProperty is shorthand for a property condition.
func (b *DescriptorBuilder) OnProperty(name, expected string, matchIfMissing bool) *DescriptorBuilder {
	return b.Condition(Condition{
		Kind:           ConditionProperty,
		Property:       name,
		Expected:       expected,
		MatchIfMissing: matchIfMissing,
	})
}

// OnCapability is shorthand for a capability-presence condition.
func (b *DescriptorBuilder) OnCapability(names ...string) *DescriptorBuilder {
	return b.Condition(Condition{Kind: ConditionCapability, Capabilities: names})
}

// OnBean is shorthand for a bean-presence condition.
func (b *DescriptorBuilder) OnBean(names ...string) *DescriptorBuilder {
	return b.Condition(Condition{Kind: ConditionBeanPresent, Beans: names})
}

// OnMissingBean is shorthand for a bean-absence condition.
func (b *DescriptorBuilder) OnMissingBean(names ...string) *DescriptorBuilder {
	return b.Condition(Condition{Kind: ConditionBeanAbsent, Beans: names})
}

// OnProfile is shorthand for a profile condition. A leading "!" on a
// profile name negates that individual check.
func (b *DescriptorBuilder) OnProfile(profiles ...string) *DescriptorBuilder {
	return b.Condition(Condition{Kind: ConditionProfile, Profiles: profiles})
}

// DependsOn adds explicit initialization-order constraints.
func (b *DescriptorBuilder) DependsOn(names ...string) *DescriptorBuilder {
	b.d.DependsOn = append(b.d.DependsOn, names...)
	return b
}

// DependsOnDestroy adds explicit destruction-order constraints.
func (b *DescriptorBuilder) DependsOnDestroy(names ...string) *DescriptorBuilder {
	b.d.DependsOnDestroy = append(b.d.DependsOnDestroy, names...)
	return b
}

// PostConstruct sets the post-construct hook.
func (b *DescriptorBuilder) PostConstruct(fn func(instance any) error) *DescriptorBuilder {
	b.d.PostConstruct = fn
	return b
}

// PreDestroy sets the pre-destroy hook.
func (b *DescriptorBuilder) PreDestroy(fn func(instance any) error) *DescriptorBuilder {
	b.d.PreDestroy = fn
	return b
}

// OnStart appends an ordered start hook.
func (b *DescriptorBuilder) OnStart(h Hook) *DescriptorBuilder {
	b.d.StartHooks = append(b.d.StartHooks, h)
	return b
}

// OnStop appends an ordered stop hook.
func (b *DescriptorBuilder) OnStop(h Hook) *DescriptorBuilder {
	b.d.StopHooks = append(b.d.StopHooks, h)
	return b
}

// Build finalizes the descriptor. The returned value is immutable; the
// builder must not be reused afterward.
func (b *DescriptorBuilder) Build() *Descriptor {
	d := b.d
	return &d
}
