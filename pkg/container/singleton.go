package container

import "sync"

// singletonEntry holds the cached result for one component name. The
// entry-level mutex means creating one singleton never blocks requests
// for a different name, and a factory that resolves other components
// re-enters the scope through their entries without deadlocking.
type singletonEntry struct {
	mu       sync.Mutex
	done     bool
	instance any
	err      error
}

// singletonScope caches at most one instance per component name for the
// container's lifetime. Concurrent first requests for the same name run
// the factory exactly once; the losers block and observe the winner's
// result, including a memoized creation error.
type singletonScope struct {
	mu      sync.Mutex
	entries map[string]*singletonEntry
}

func newSingletonScope() *singletonScope {
	return &singletonScope{entries: make(map[string]*singletonEntry)}
}

// ID implements Scope.
func (s *singletonScope) ID() string {
	return ScopeSingleton
}

// Get implements Scope.
func (s *singletonScope) Get(name string, create InstanceFactory) (any, error) {
	s.mu.Lock()
	e, ok := s.entries[name]
	if !ok {
		e = &singletonEntry{}
		s.entries[name] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done {
		return e.instance, e.err
	}
	e.instance, e.err = create()
	e.done = true
	return e.instance, e.err
}

// Remove implements Scope.
func (s *singletonScope) Remove(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[name]
	if !ok {
		return nil, false
	}
	delete(s.entries, name)
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.done || e.err != nil {
		return nil, false
	}
	return e.instance, true
}

// Destroy implements Scope. The caller passes instances in destruction
// order by removing them individually; Destroy sweeps whatever remains.
func (s *singletonScope) Destroy(release func(name string, instance any)) {
	s.mu.Lock()
	entries := s.entries
	s.entries = make(map[string]*singletonEntry)
	s.mu.Unlock()

	for name, e := range entries {
		e.mu.Lock()
		done, err, instance := e.done, e.err, e.instance
		e.mu.Unlock()
		if done && err == nil {
			release(name, instance)
		}
	}
}
