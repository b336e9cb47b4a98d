package container

import (
	"fmt"
	"sort"
	"strings"
)

// Built-in scope ids.
const (
	// ScopeSingleton caches at most one instance per container.
	ScopeSingleton = "singleton"

	// ScopePrototype caches nothing; every request constructs a fresh
	// instance the caller owns.
	ScopePrototype = "prototype"

	// ScopeRequest caches one instance per bound request context.
	ScopeRequest = "request"

	// ScopeSession caches one instance per bound session context.
	ScopeSession = "session"
)

// InstanceFactory produces the instance a scope should cache or hand
// out. Scopes never construct instances themselves; the container
// supplies the factory so creation, injection, and lifecycle stay out of
// scope implementations.
type InstanceFactory func() (any, error)

// Scope controls caching and lifetime of component instances.
//
// Implementations must be safe for concurrent use. Get either returns
// the cached instance for the name or invokes create and caches per the
// scope's policy. Remove forgets a single cached instance without
// destroying it; Destroy tears the scope down, invoking release on
// every cached instance.
type Scope interface {
	// ID returns the scope identifier.
	ID() string

	// Get returns the scoped instance for name, creating it via create
	// when the scope's policy calls for it.
	Get(name string, create InstanceFactory) (any, error)

	// Remove forgets the cached instance for name, returning it and
	// whether one was cached.
	Remove(name string) (any, bool)

	// Destroy releases every cached instance. release is invoked per
	// instance; errors are collected by the caller, so release never
	// aborts the sweep.
	Destroy(release func(name string, instance any))
}

// scopeRegistry maps scope ids to implementations for one container.
// Registration happens before Start; lookups after that are read-only,
// so no locking is needed.
type scopeRegistry struct {
	scopes map[string]Scope
}

func newScopeRegistry() *scopeRegistry {
	r := &scopeRegistry{scopes: make(map[string]Scope)}
	r.register(newSingletonScope())
	r.register(newPrototypeScope())
	r.register(newContextScope(ScopeRequest))
	r.register(newContextScope(ScopeSession))
	return r
}

func (r *scopeRegistry) register(s Scope) {
	r.scopes[s.ID()] = s
}

// lookup returns the scope for id, or a scope error naming the
// registered ids so a typo is immediately diagnosable.
func (r *scopeRegistry) lookup(id string) (Scope, error) {
	if s, ok := r.scopes[id]; ok {
		return s, nil
	}
	ids := make([]string, 0, len(r.scopes))
	for k := range r.scopes {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return nil, NewScopeError(
		fmt.Sprintf("unknown scope %q, registered scopes: %s", id, strings.Join(ids, ", ")),
		nil,
	).WithCode(ErrCodeUnknownScope)
}

// all returns every registered scope, in deterministic id order.
func (r *scopeRegistry) all() []Scope {
	ids := make([]string, 0, len(r.scopes))
	for k := range r.scopes {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	out := make([]Scope, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.scopes[id])
	}
	return out
}
