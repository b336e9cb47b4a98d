package container

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/openloom/loom/pkg/facts"
	"github.com/openloom/loom/pkg/telemetry"
)

// Interceptor observes or replaces an instance after injection and
// before its post-construct callback. Returning a different value
// substitutes the instance (proxying); returning an error fails
// creation.
type Interceptor func(name string, instance any) (any, error)

// Config configures a container.
type Config struct {
	// DefaultScope is the scope id applied to descriptors that declare
	// none. Defaults to ScopeSingleton.
	DefaultScope string

	// Facts supplies the external environment for condition
	// evaluation. May be nil, in which case capability and property
	// conditions never match and no profile is active beyond "default".
	Facts facts.Source

	// Profiles explicitly activates profiles, overriding whatever the
	// fact source reports.
	Profiles []string

	// Logger, when set, replaces the global logger for container
	// lifecycle messages.
	Logger *telemetry.Logger

	// Metrics records container telemetry. Nil disables recording.
	Metrics *telemetry.Metrics

	// Interceptor, when set, runs for every created instance.
	Interceptor Interceptor
}

// Lifecycle gate values mirrored into Container.life for readers that
// cannot take the container lock.
const (
	lifeIdle int32 = iota
	lifeRunning
	lifeClosed
)

// Container wires declared components into live instances.
//
// Usage follows four phases: declare every component with Register,
// call Start once, resolve instances with Get and its variants, and
// tear down with Close. Declarations are rejected after Start.
//
// All public methods are safe for concurrent use after Start. Rebuild
// serializes against in-flight resolutions.
type Container struct {
	cfg Config

	mu          sync.RWMutex
	started     bool
	closed      bool
	descriptors []*Descriptor
	byName      map[string]*Descriptor
	existence   *Existence
	graph       *Graph
	scopes      *scopeRegistry

	stateMu sync.Mutex
	states  map[string]InstanceState

	creatingMu sync.Mutex
	creating   map[string]bool

	// life mirrors started/closed. Provider handles are dereferenced
	// from inside factories that already hold the container lock, so
	// their readiness check reads this gate instead of the lock.
	life atomic.Int32

	log zerolog.Logger
}

// New creates an empty container.
func New(cfg Config) *Container {
	if cfg.DefaultScope == "" {
		cfg.DefaultScope = ScopeSingleton
	}
	if len(cfg.Profiles) > 0 {
		cfg.Facts = facts.NewLayered(sourcesOf(cfg.Facts)...).WithProfiles(cfg.Profiles...)
	}
	logger := log.Logger
	if cfg.Logger != nil {
		logger = cfg.Logger.Zerolog()
	}
	return &Container{
		cfg:      cfg,
		byName:   make(map[string]*Descriptor),
		scopes:   newScopeRegistry(),
		states:   make(map[string]InstanceState),
		creating: make(map[string]bool),
		log:      logger,
	}
}

func sourcesOf(src facts.Source) []facts.Source {
	if src == nil {
		return nil
	}
	return []facts.Source{src}
}

// Register declares a component. Names must be unique; registration
// after Start is rejected. Scope ids are checked against the registry
// during Start, so components and custom scopes may be registered in
// any order.
func (c *Container) Register(d *Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return NewResolutionError("container is closed", nil).
			WithCode(ErrCodeContainerClosed)
	}
	if c.started {
		return NewResolutionError(
			fmt.Sprintf("cannot register %q after the container started", d.Name), nil).
			WithCode(ErrCodeValidation).WithComponent(d.Name)
	}
	if _, exists := c.byName[d.Name]; exists {
		return NewResolutionError(
			fmt.Sprintf("component name %q is already registered", d.Name), nil).
			WithCode(ErrCodeDuplicateName).WithComponent(d.Name)
	}

	d.index = len(c.descriptors)
	c.descriptors = append(c.descriptors, d)
	c.byName[d.Name] = d
	c.setState(d.Name, StateDeclared)
	return nil
}

// RegisterScope installs a custom scope under its id, replacing any
// scope already registered for it. Scopes must be registered before
// Start.
func (c *Container) RegisterScope(s Scope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.closed {
		return NewScopeError(
			fmt.Sprintf("cannot register scope %q after the container started", s.ID()), nil).
			WithCode(ErrCodeValidation)
	}
	c.scopes.register(s)
	return nil
}

// Start resolves existence, builds the dependency graph, eagerly
// instantiates non-lazy singletons in initialization order, and runs
// start hooks. Any resolution error or eager creation failure aborts
// the start and is fatal.
func (c *Container) Start(ctx context.Context) error {
	begin := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return NewResolutionError("container is closed", nil).
			WithCode(ErrCodeContainerClosed)
	}
	if c.started {
		return NewResolutionError("container already started", nil).
			WithCode(ErrCodeValidation)
	}

	if err := c.build(); err != nil {
		c.recordError(err)
		return err
	}
	c.started = true
	c.life.Store(lifeRunning)

	if err := c.eagerInit(ctx); err != nil {
		c.recordError(err)
		// Instances created before the failure are torn down; a failed
		// start leaves nothing alive.
		c.teardown(ctx)
		c.started = false
		c.life.Store(lifeIdle)
		return err
	}

	c.cfg.Metrics.RecordContainerStart(time.Since(begin))
	c.log.Info().
		Int("declared", len(c.descriptors)).
		Int("present", len(c.existence.Present)).
		Dur("took", time.Since(begin)).
		Msg("Container started")
	return nil
}

// build runs existence resolution and graph construction. Caller holds
// the write lock.
func (c *Container) build() error {
	for _, d := range c.descriptors {
		if d.Scope == "" {
			continue
		}
		if _, err := c.scopes.lookup(d.Scope); err != nil {
			var e *Error
			if errors.As(err, &e) {
				return e.WithComponent(d.Name)
			}
			return err
		}
	}

	existence, err := resolveExistence(c.descriptors, c.cfg.Facts)
	if err != nil {
		return err
	}

	existing := make([]*Descriptor, 0, len(existence.Present))
	for _, d := range c.descriptors {
		if existence.Exists(d.Name) {
			existing = append(existing, d)
		}
	}

	graph, err := buildGraph(existing)
	if err != nil {
		return err
	}

	c.existence = existence
	c.graph = graph
	return nil
}

// eagerInit creates non-lazy singletons in initialization order, then
// runs start hooks in the same order. Caller holds the write lock.
func (c *Container) eagerInit(ctx context.Context) error {
	for _, name := range c.graph.InitializationOrder() {
		d := c.byName[name]
		if d.Lazy || c.effectiveScope(d) != ScopeSingleton || d.Factory == nil {
			continue
		}
		if _, err := c.resolveNamed(name, c.existence, nil); err != nil {
			return err
		}
	}

	for _, name := range c.graph.InitializationOrder() {
		d := c.byName[name]
		if len(d.StartHooks) == 0 {
			continue
		}
		instance, err := c.resolveNamed(name, c.existence, nil)
		if err != nil {
			return err
		}
		for _, hook := range d.StartHooks {
			if err := hook(ctx, instance); err != nil {
				return NewCreationError(
					fmt.Sprintf("start hook of %s failed", name), err).
					WithCode(ErrCodeHookFailed).WithComponent(name)
			}
		}
	}
	return nil
}

// GetNamed resolves a component by name.
func (c *Container) GetNamed(name string) (any, error) {
	begin := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.readyLocked(); err != nil {
		c.cfg.Metrics.RecordResolution("error", time.Since(begin))
		return nil, err
	}
	instance, err := c.resolveNamed(name, c.existence, nil)
	if err != nil {
		c.recordError(err)
		c.cfg.Metrics.RecordResolution("error", time.Since(begin))
		return nil, err
	}
	c.cfg.Metrics.RecordResolution("ok", time.Since(begin))
	return instance, nil
}

// Get resolves the single component for type T, applying the usual
// disambiguation rules when several components provide T.
func Get[T any](c *Container) (T, error) {
	var zero T
	t := typeOf[T]()

	begin := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.readyLocked(); err != nil {
		c.cfg.Metrics.RecordResolution("error", time.Since(begin))
		return zero, err
	}

	name, err := c.selectByType(t)
	if err != nil {
		c.recordError(err)
		c.cfg.Metrics.RecordResolution("error", time.Since(begin))
		return zero, err
	}
	instance, err := c.resolveNamed(name, c.existence, nil)
	if err != nil {
		c.recordError(err)
		c.cfg.Metrics.RecordResolution("error", time.Since(begin))
		return zero, err
	}
	c.cfg.Metrics.RecordResolution("ok", time.Since(begin))

	typed, ok := instance.(T)
	if !ok {
		err := NewResolutionError(
			fmt.Sprintf("component %q is not assignable to %s", name, t), nil).
			WithCode(ErrCodeInternal).WithComponent(name)
		c.recordError(err)
		return zero, err
	}
	return typed, nil
}

// GetAll resolves every component providing T, ordered by ascending
// order value then declaration order. A missing match is an empty
// slice, not an error.
func GetAll[T any](c *Container) ([]T, error) {
	t := typeOf[T]()

	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.readyLocked(); err != nil {
		return nil, err
	}

	candidates := candidatesAmong(c.existingIn(c.existence), t, "")
	out := make([]T, 0, len(candidates))
	for _, d := range candidates {
		instance, err := c.resolveNamed(d.Name, c.existence, nil)
		if err != nil {
			c.recordError(err)
			return nil, err
		}
		typed, ok := instance.(T)
		if !ok {
			continue
		}
		out = append(out, typed)
	}
	return out, nil
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Contains reports whether the named component is declared and in the
// current existence set.
func (c *Container) Contains(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.existence == nil {
		_, declared := c.byName[name]
		return declared
	}
	return c.existence.Exists(name)
}

// Names returns the names of all components in the existence set, in
// declaration order. Before Start it returns every declared name.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.existence != nil {
		out := make([]string, len(c.existence.Present))
		copy(out, c.existence.Present)
		return out
	}
	out := make([]string, 0, len(c.descriptors))
	for _, d := range c.descriptors {
		out = append(out, d.Name)
	}
	return out
}

// Existence returns the current existence partition, or nil before
// Start.
func (c *Container) Existence() *Existence {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.existence
}

// Graph returns the current dependency graph, or nil before Start.
func (c *Container) Graph() *Graph {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.graph
}

// State returns the lifecycle state of the named component.
func (c *Container) State(name string) (InstanceState, bool) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	s, ok := c.states[name]
	return s, ok
}

// BindContext makes ctxID the active context of the request or session
// scope.
func (c *Container) BindContext(scopeID, ctxID string) error {
	s, err := c.contextScope(scopeID)
	if err != nil {
		return err
	}
	s.Bind(ctxID)
	return nil
}

// UnbindContext clears the active context of a context-keyed scope
// without releasing its instances.
func (c *Container) UnbindContext(scopeID string) error {
	s, err := c.contextScope(scopeID)
	if err != nil {
		return err
	}
	s.Unbind()
	return nil
}

// ClearContext releases every instance cached under ctxID, running
// pre-destroy callbacks. Failures are collected and reported; teardown
// of the remaining instances continues regardless.
func (c *Container) ClearContext(scopeID, ctxID string) error {
	s, err := c.contextScope(scopeID)
	if err != nil {
		return err
	}
	report := &DestructionReport{}
	s.ClearContext(ctxID, func(name string, instance any) {
		c.destroyInstance(name, instance, scopeID, report)
	})
	if report.Empty() {
		return nil
	}
	return report
}

func (c *Container) contextScope(scopeID string) (*contextScope, error) {
	s, err := c.scopes.lookup(scopeID)
	if err != nil {
		return nil, err
	}
	cs, ok := s.(*contextScope)
	if !ok {
		return nil, NewScopeError(
			fmt.Sprintf("scope %q is not context-keyed", scopeID), nil).
			WithCode(ErrCodeUnknownScope)
	}
	return cs, nil
}

// Close tears the container down: stop hooks run in reverse
// initialization order, then every cached instance is destroyed in
// destruction order. Close is idempotent; destruction failures are
// collected into the returned report rather than aborting the sweep.
// A nil error means every component tore down cleanly.
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.life.Store(lifeClosed)
	if !c.started {
		return nil
	}

	report := c.teardown(ctx)
	c.log.Info().
		Int("errors", len(report.Errors)).
		Msg("Container closed")
	if report.Empty() {
		return nil
	}
	return report
}

// teardown runs stop hooks and destroys every cached instance. Caller
// holds the write lock.
func (c *Container) teardown(ctx context.Context) *DestructionReport {
	report := &DestructionReport{}
	order := c.graph.DestructionOrder()

	for _, name := range order {
		d := c.byName[name]
		if len(d.StopHooks) == 0 {
			continue
		}
		instance, ok := c.cachedSingleton(name)
		if !ok {
			continue
		}
		for _, hook := range d.StopHooks {
			if err := hook(ctx, instance); err != nil {
				report.Errors = append(report.Errors, NewDestructionError(
					fmt.Sprintf("stop hook of %s failed", name), err).
					WithCode(ErrCodeHookFailed).WithComponent(name))
			}
		}
	}

	singletons, _ := c.scopes.lookup(ScopeSingleton)
	for _, name := range order {
		d := c.byName[name]
		if c.effectiveScope(d) != ScopeSingleton {
			continue
		}
		if instance, ok := singletons.Remove(name); ok {
			c.destroyInstance(name, instance, ScopeSingleton, report)
		}
	}

	// Context-keyed scopes have no cross-context order; each remaining
	// instance is released individually.
	for _, s := range c.scopes.all() {
		scopeID := s.ID()
		s.Destroy(func(name string, instance any) {
			c.destroyInstance(name, instance, scopeID, report)
		})
	}

	return report
}

// cachedSingleton returns the already created singleton instance for
// name without triggering creation.
func (c *Container) cachedSingleton(name string) (any, bool) {
	s, _ := c.scopes.lookup(ScopeSingleton)
	singleton := s.(*singletonScope)
	singleton.mu.Lock()
	e, ok := singleton.entries[name]
	singleton.mu.Unlock()
	if !ok {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.done || e.err != nil {
		return nil, false
	}
	return e.instance, true
}

// Rebuild re-runs existence resolution and graph construction against
// the current facts, tearing down the old instances first. It
// serializes against in-flight resolutions; callers observe either the
// old wiring or the new one, never a mix. A rebuild failure closes the
// container.
func (c *Container) Rebuild(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return NewResolutionError("container is closed", nil).
			WithCode(ErrCodeContainerClosed)
	}
	if !c.started {
		return NewResolutionError("container not started", nil).
			WithCode(ErrCodeValidation)
	}

	report := c.teardown(ctx)
	if !report.Empty() {
		c.log.Warn().
			Int("errors", len(report.Errors)).
			Msg("Teardown during rebuild reported errors")
	}

	// Teardown leaves every scope empty, so the registry (custom scopes
	// included) carries over to the new wiring.
	c.stateMu.Lock()
	for _, d := range c.descriptors {
		c.states[d.Name] = StateDeclared
	}
	c.stateMu.Unlock()

	if err := c.build(); err != nil {
		c.closed = true
		c.life.Store(lifeClosed)
		c.recordError(err)
		return err
	}
	c.started = true
	if err := c.eagerInit(ctx); err != nil {
		c.recordError(err)
		c.teardown(ctx)
		c.closed = true
		c.life.Store(lifeClosed)
		return err
	}

	c.cfg.Metrics.RecordRebuild()
	c.log.Info().
		Int("present", len(c.existence.Present)).
		Msg("Container rebuilt")
	return nil
}

// readyLocked checks that the container can serve resolutions. Caller
// holds at least the read lock.
func (c *Container) readyLocked() error {
	if c.closed {
		return NewResolutionError("container is closed", nil).
			WithCode(ErrCodeContainerClosed)
	}
	if !c.started {
		return NewResolutionError("container not started", nil).
			WithCode(ErrCodeValidation)
	}
	return nil
}

// existingIn returns the descriptors present in exist, in declaration
// order. The descriptor list is immutable once the container starts, so
// callers holding a wiring snapshot need no lock.
func (c *Container) existingIn(exist *Existence) []*Descriptor {
	out := make([]*Descriptor, 0, len(exist.Present))
	for _, d := range c.descriptors {
		if exist.Exists(d.Name) {
			out = append(out, d)
		}
	}
	return out
}

// readyUnlocked is the lock-free readiness check for provider handles.
func (c *Container) readyUnlocked() error {
	switch c.life.Load() {
	case lifeRunning:
		return nil
	case lifeClosed:
		return NewResolutionError("container is closed", nil).
			WithCode(ErrCodeContainerClosed)
	default:
		return NewResolutionError("container not started", nil).
			WithCode(ErrCodeValidation)
	}
}

// selectByType picks the single component name for a requested type.
func (c *Container) selectByType(t reflect.Type) (string, error) {
	candidates := candidatesAmong(c.existingIn(c.existence), t, "")
	if len(candidates) == 0 {
		return "", NewResolutionError(
			fmt.Sprintf("no component provides %s", t), nil).
			WithCode(ErrCodeUnknownComponent)
	}
	chosen, err := selectCandidate(Dependency{Type: t}, candidates)
	if err != nil {
		return "", NewResolutionError(
			fmt.Sprintf("request for %s is ambiguous", t), err).
			WithCode(ErrCodeAmbiguousDependency)
	}
	return chosen.Name, nil
}

// resolveNamed resolves one component through its scope against the
// exist wiring snapshot. path carries the chain of components currently
// under creation on this call stack; it is how runtime resolution
// cycles through provider misuse are turned into errors instead of
// deadlocks. The cycle check runs before the scope is consulted, so a
// factory that synchronously requests itself errors out before it can
// block on its own scope entry.
func (c *Container) resolveNamed(name string, exist *Existence, path []string) (any, error) {
	d, declared := c.byName[name]
	if !declared {
		return nil, NewResolutionError(
			fmt.Sprintf("unknown component %q", name), nil).
			WithCode(ErrCodeUnknownComponent)
	}
	if !exist.Exists(name) {
		return nil, NewResolutionError(
			fmt.Sprintf("component %q exists in no active configuration (conditions not met)", name), nil).
			WithCode(ErrCodeUnknownComponent).WithComponent(name)
	}
	if d.Factory == nil {
		return nil, NewCreationError(
			fmt.Sprintf("component %q is declaration-only and has no factory", name), nil).
			WithCode(ErrCodeFactoryFailed).WithComponent(name)
	}

	for _, p := range path {
		if p == name && c.isCreating(name) {
			return nil, NewCreationError(
				fmt.Sprintf("resolution cycle at runtime: %s requested while it is being created", name), nil).
				WithCode(ErrCodeDependencyCycle).WithComponent(name)
		}
	}

	scopeID := c.effectiveScope(d)
	scope, err := c.scopes.lookup(scopeID)
	if err != nil {
		return nil, err
	}

	return scope.Get(name, func() (any, error) {
		return c.createInstance(d, scopeID, exist, path)
	})
}

// effectiveScope returns the scope id governing d.
func (c *Container) effectiveScope(d *Descriptor) string {
	if d.Scope != "" {
		return d.Scope
	}
	return c.cfg.DefaultScope
}

// createInstance runs the full creation sequence for one component:
// resolve constructor dependencies, invoke the factory, fill field and
// method injection points, apply the interceptor, then post-construct.
func (c *Container) createInstance(d *Descriptor, scopeID string, exist *Existence, path []string) (instance any, err error) {
	begin := time.Now()
	c.setCreating(d.Name, true)
	defer c.setCreating(d.Name, false)
	path = append(path, d.Name)

	defer func() {
		if r := recover(); r != nil {
			err = NewCreationError(
				fmt.Sprintf("factory of %s panicked", d.Name),
				fmt.Errorf("%v", r)).
				WithCode(ErrCodeFactoryFailed).WithComponent(d.Name)
		}
		if err != nil {
			c.setState(d.Name, StateCreationFailed)
		}
	}()

	var ctorValues []any
	for i, dep := range d.Dependencies {
		value, derr := c.resolveDependency(d, i, dep, exist, path)
		if derr != nil {
			return nil, derr
		}
		if dep.Kind == KindConstructor {
			ctorValues = append(ctorValues, value)
		}
	}

	instance, err = d.Factory(ctorValues...)
	if err != nil {
		return nil, NewCreationError(
			fmt.Sprintf("factory of %s failed", d.Name), err).
			WithCode(ErrCodeFactoryFailed).WithComponent(d.Name)
	}
	c.setState(d.Name, StateCreated)

	for i, dep := range d.Dependencies {
		if dep.Kind == KindConstructor {
			continue
		}
		value, derr := c.resolveDependency(d, i, dep, exist, path)
		if derr != nil {
			return nil, derr
		}
		if value == nil && !dep.required() {
			continue
		}
		if aerr := dep.Assign(instance, value); aerr != nil {
			return nil, NewCreationError(
				fmt.Sprintf("injecting dependency %d into %s failed", i, d.Name), aerr).
				WithCode(ErrCodeInjectionFailed).WithComponent(d.Name)
		}
	}

	if c.cfg.Interceptor != nil {
		replaced, ierr := c.cfg.Interceptor(d.Name, instance)
		if ierr != nil {
			return nil, NewCreationError(
				fmt.Sprintf("interceptor rejected %s", d.Name), ierr).
				WithCode(ErrCodeInjectionFailed).WithComponent(d.Name)
		}
		if replaced != nil {
			instance = replaced
		}
	}

	if d.PostConstruct != nil {
		if perr := d.PostConstruct(instance); perr != nil {
			return nil, NewCreationError(
				fmt.Sprintf("post-construct of %s failed", d.Name), perr).
				WithCode(ErrCodeHookFailed).WithComponent(d.Name)
		}
	}

	c.setState(d.Name, StateUsable)
	c.cfg.Metrics.RecordInstanceCreated(scopeID, time.Since(begin))
	c.log.Debug().
		Str("component", d.Name).
		Str("scope", scopeID).
		Dur("took", time.Since(begin)).
		Msg("Instance created")
	return instance, nil
}

// resolveDependency produces the value for one injection point.
func (c *Container) resolveDependency(owner *Descriptor, idx int, dep Dependency, exist *Existence, path []string) (any, error) {
	existing := c.existingIn(exist)

	if dep.Collection {
		candidates := candidatesAmong(existing, dep.Type, dep.Name)
		values := make([]any, 0, len(candidates))
		for _, cand := range candidates {
			v, err := c.resolveNamed(cand.Name, exist, path)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, nil
	}

	candidates := candidatesAmong(existing, dep.Type, dep.Name)
	if len(candidates) == 0 {
		if dep.Provider {
			// The handle exists even when the target does not; Get
			// reports the miss.
			target := dep.describeTarget()
			return newProvider(dep.Name, func() (any, error) {
				return nil, NewResolutionError(
					fmt.Sprintf("provider target %s of %s does not exist", target, owner.Name), nil).
					WithCode(ErrCodeMissingDependency).WithComponent(owner.Name)
			}), nil
		}
		if dep.Optional {
			return nil, nil
		}
		return nil, NewResolutionError(
			fmt.Sprintf("missing required dependency %s of %s (dependency %d)",
				dep.describeTarget(), owner.Name, idx), nil).
			WithCode(ErrCodeMissingDependency).WithComponent(owner.Name)
	}

	chosen, err := selectCandidate(dep, candidates)
	if err != nil {
		return nil, NewResolutionError(
			fmt.Sprintf("dependency %s of %s is ambiguous", dep.describeTarget(), owner.Name), err).
			WithCode(ErrCodeAmbiguousDependency).WithComponent(owner.Name)
	}

	if dep.Provider {
		// The handle never takes the container lock: factories
		// dereference providers while the lock is already held, both
		// during eager Start (write lock) and inside Get (read lock
		// with a possibly queued writer), and retaking it would
		// deadlock. The wiring snapshot keeps the deref consistent;
		// the path and creating machinery reports misuse cycles.
		captured := append([]string{}, path...)
		return newProvider(chosen.Name, func() (any, error) {
			if err := c.readyUnlocked(); err != nil {
				return nil, err
			}
			return c.resolveNamed(chosen.Name, exist, captured)
		}), nil
	}

	return c.resolveNamed(chosen.Name, exist, path)
}

// destroyInstance runs the pre-destroy callback for one instance,
// collecting any failure into the report.
func (c *Container) destroyInstance(name string, instance any, scopeID string, report *DestructionReport) {
	c.setState(name, StateDestroying)
	d := c.byName[name]

	status := "ok"
	if d != nil && d.PreDestroy != nil {
		if err := safePreDestroy(d, instance); err != nil {
			status = "error"
			report.Errors = append(report.Errors, NewDestructionError(
				fmt.Sprintf("pre-destroy of %s failed", name), err).
				WithCode(ErrCodeHookFailed).WithComponent(name))
		}
	}

	c.setState(name, StateDestroyed)
	c.cfg.Metrics.RecordInstanceDestroyed(scopeID, status)
}

// safePreDestroy invokes the pre-destroy callback, converting a panic
// into an error so teardown of the remaining components continues.
func safePreDestroy(d *Descriptor, instance any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pre-destroy panicked: %v", r)
		}
	}()
	return d.PreDestroy(instance)
}

func (c *Container) setState(name string, s InstanceState) {
	c.stateMu.Lock()
	c.states[name] = s
	c.stateMu.Unlock()
}

func (c *Container) setCreating(name string, v bool) {
	c.creatingMu.Lock()
	if v {
		c.creating[name] = true
	} else {
		delete(c.creating, name)
	}
	c.creatingMu.Unlock()
}

func (c *Container) isCreating(name string) bool {
	c.creatingMu.Lock()
	defer c.creatingMu.Unlock()
	return c.creating[name]
}

func (c *Container) recordError(err error) {
	var e *Error
	if errors.As(err, &e) {
		c.cfg.Metrics.RecordError(string(e.Class), e.Code)
	}
}
