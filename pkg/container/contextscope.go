package container

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// NewContextID returns a fresh identifier suitable for binding a
// request or session context.
func NewContextID() string {
	return uuid.NewString()
}

// contextScope caches one instance per component name per bound
// context. It backs both the request and session scope ids; they differ
// only in the lifetime the caller gives their contexts.
//
// A context must be bound before any component in the scope is
// requested. Requests without a bound context fail with a recoverable
// scope error; the caller binds a context and retries.
type contextScope struct {
	id string

	mu       sync.Mutex
	active   string
	contexts map[string]map[string]any
}

func newContextScope(id string) *contextScope {
	return &contextScope{
		id:       id,
		contexts: make(map[string]map[string]any),
	}
}

// ID implements Scope.
func (s *contextScope) ID() string {
	return s.id
}

// Bind makes ctxID the active context, creating its instance map on
// first use. Rebinding replaces the active context without clearing the
// previous one.
func (s *contextScope) Bind(ctxID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contexts[ctxID]; !ok {
		s.contexts[ctxID] = make(map[string]any)
	}
	s.active = ctxID
}

// Unbind clears the active context without releasing its instances, so
// it can be re-bound later.
func (s *contextScope) Unbind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = ""
}

// ClearContext removes ctxID and releases every instance it cached.
func (s *contextScope) ClearContext(ctxID string, release func(name string, instance any)) {
	s.mu.Lock()
	instances := s.contexts[ctxID]
	delete(s.contexts, ctxID)
	if s.active == ctxID {
		s.active = ""
	}
	s.mu.Unlock()

	for name, instance := range instances {
		release(name, instance)
	}
}

// Get implements Scope.
func (s *contextScope) Get(name string, create InstanceFactory) (any, error) {
	s.mu.Lock()
	ctxID := s.active
	if ctxID == "" {
		s.mu.Unlock()
		return nil, NewScopeError(
			fmt.Sprintf("no %s context bound; bind a context before resolving %q", s.id, name),
			nil,
		).WithCode(ErrCodeNoContext).WithComponent(name)
	}
	instances := s.contexts[ctxID]
	if instance, ok := instances[name]; ok {
		s.mu.Unlock()
		return instance, nil
	}
	s.mu.Unlock()

	// The factory may resolve other components; it must run unlocked.
	// The instance is stored under the context that was active when
	// creation began, so a concurrent rebind cannot leak it into
	// another context's map. A concurrent duplicate for the same
	// (context, name) keeps the first instance stored.
	instance, err := create()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if instances, ok := s.contexts[ctxID]; ok {
		if existing, ok := instances[name]; ok {
			return existing, nil
		}
		instances[name] = instance
	}
	return instance, nil
}

// Remove implements Scope. It forgets the instance in the active
// context only.
func (s *contextScope) Remove(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	instances, ok := s.contexts[s.active]
	if !ok {
		return nil, false
	}
	instance, ok := instances[name]
	if ok {
		delete(instances, name)
	}
	return instance, ok
}

// Destroy implements Scope. Every context is cleared.
func (s *contextScope) Destroy(release func(name string, instance any)) {
	s.mu.Lock()
	contexts := s.contexts
	s.contexts = make(map[string]map[string]any)
	s.active = ""
	s.mu.Unlock()

	for _, instances := range contexts {
		for name, instance := range instances {
			release(name, instance)
		}
	}
}
