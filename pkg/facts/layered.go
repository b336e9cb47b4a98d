package facts

// ProfilesProperty is the property name that can carry the active
// profile list as a comma-separated value.
const ProfilesProperty = "loom.profiles"

// DefaultProfile is the profile assumed active when nothing activates
// any profile through the whole precedence chain.
const DefaultProfile = "default"

// Layered composes fact sources with a fixed precedence.
//
// Property lookups return the first layer that has the property.
// Capability checks succeed if any layer reports the capability.
// Profile activation follows the chain: the explicit programmatic list,
// then the "loom.profiles" property (looked up across layers), then each
// layer's own ActiveProfiles in order, then {"default"}.
type Layered struct {
	// Explicit is the programmatic profile activation; it outranks
	// every layer.
	Explicit []string

	// Sources are the layers in precedence order (highest first).
	Sources []Source
}

// NewLayered builds a layered source over the given layers, highest
// precedence first.
func NewLayered(sources ...Source) *Layered {
	return &Layered{Sources: sources}
}

// WithProfiles returns a copy with the explicit profile activation set.
func (l *Layered) WithProfiles(profiles ...string) *Layered {
	return &Layered{Explicit: profiles, Sources: l.Sources}
}

// HasCapability implements Source.
func (l *Layered) HasCapability(name string) bool {
	for _, s := range l.Sources {
		if s.HasCapability(name) {
			return true
		}
	}
	return false
}

// Property implements Source.
func (l *Layered) Property(name string) (string, bool) {
	for _, s := range l.Sources {
		if v, ok := s.Property(name); ok {
			return v, true
		}
	}
	return "", false
}

// ActiveProfiles implements Source using the activation precedence
// chain described on Layered.
func (l *Layered) ActiveProfiles() []string {
	if len(l.Explicit) > 0 {
		return NormalizeProfiles(l.Explicit)
	}
	if raw, ok := l.Property(ProfilesProperty); ok {
		if ps := SplitProfiles(raw); len(ps) > 0 {
			return NormalizeProfiles(ps)
		}
	}
	for _, s := range l.Sources {
		if ps := s.ActiveProfiles(); len(ps) > 0 {
			return NormalizeProfiles(ps)
		}
	}
	return []string{DefaultProfile}
}
