package container

// Provider is a lazy handle to a single component. It is what a
// provider-indirected dependency receives instead of the instance
// itself: the target is not constructed until the first Get, which is
// how reference cycles between components are legally expressed.
type Provider struct {
	name    string
	resolve func() (any, error)
}

func newProvider(name string, resolve func() (any, error)) *Provider {
	return &Provider{name: name, resolve: resolve}
}

// Name returns the target component name.
func (p *Provider) Name() string {
	return p.name
}

// Get resolves the target component through its scope. Scoped caching
// applies as usual: a singleton target yields the same instance on
// every call, a prototype target a fresh one.
func (p *Provider) Get() (any, error) {
	return p.resolve()
}
