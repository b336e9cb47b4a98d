package container

// prototypeScope constructs a fresh instance on every request and
// retains nothing. Ownership transfers to the caller: the container
// never tracks or destroys prototype instances, so pre-destroy callbacks
// do not run for them.
type prototypeScope struct{}

func newPrototypeScope() *prototypeScope {
	return &prototypeScope{}
}

// ID implements Scope.
func (s *prototypeScope) ID() string {
	return ScopePrototype
}

// Get implements Scope.
func (s *prototypeScope) Get(_ string, create InstanceFactory) (any, error) {
	return create()
}

// Remove implements Scope. Nothing is ever cached.
func (s *prototypeScope) Remove(string) (any, bool) {
	return nil, false
}

// Destroy implements Scope. Nothing to release.
func (s *prototypeScope) Destroy(func(name string, instance any)) {}
