package facts

import (
	"os"
	"sort"
	"strings"
)

// Source answers environment questions for condition evaluation.
// Implementations must be safe for concurrent readers.
type Source interface {
	// HasCapability reports whether the named external capability is
	// available (the classpath-presence analogue).
	HasCapability(name string) bool

	// Property returns the value of a named property and whether it is
	// set at all.
	Property(name string) (string, bool)

	// ActiveProfiles returns the active profile names. An empty result
	// means the source has no opinion.
	ActiveProfiles() []string
}

// MapSource is an immutable, in-memory fact source. The zero value is an
// empty source.
type MapSource struct {
	// Capabilities is the set of available capability names.
	Capabilities map[string]bool

	// Properties maps property names to values.
	Properties map[string]string

	// Profiles is the active profile list.
	Profiles []string
}

// HasCapability implements Source.
func (s *MapSource) HasCapability(name string) bool {
	return s.Capabilities[name]
}

// Property implements Source.
func (s *MapSource) Property(name string) (string, bool) {
	v, ok := s.Properties[name]
	return v, ok
}

// ActiveProfiles implements Source.
func (s *MapSource) ActiveProfiles() []string {
	return s.Profiles
}

// EnvSource reads properties and profiles from environment variables.
//
// A property name is translated to an environment key by upper-casing it,
// replacing '.' and '-' with '_', and prepending the prefix:
// "cache.enabled" with prefix "LOOM" reads LOOM_CACHE_ENABLED. Profiles
// come from <prefix>_PROFILES as a comma-separated list. Capabilities are
// never sourced from the environment.
type EnvSource struct {
	// Prefix is the environment key prefix. Defaults to "LOOM" when empty.
	Prefix string
}

// ProfilesEnvSuffix is the environment key suffix carrying the active
// profile list.
const ProfilesEnvSuffix = "_PROFILES"

func (s *EnvSource) prefix() string {
	if s.Prefix == "" {
		return "LOOM"
	}
	return s.Prefix
}

// envKey translates a property name to its environment key.
func (s *EnvSource) envKey(name string) string {
	r := strings.NewReplacer(".", "_", "-", "_")
	return s.prefix() + "_" + strings.ToUpper(r.Replace(name))
}

// HasCapability implements Source; the environment never reports
// capabilities.
func (s *EnvSource) HasCapability(string) bool {
	return false
}

// Property implements Source.
func (s *EnvSource) Property(name string) (string, bool) {
	return os.LookupEnv(s.envKey(name))
}

// ActiveProfiles implements Source.
func (s *EnvSource) ActiveProfiles() []string {
	raw, ok := os.LookupEnv(s.prefix() + ProfilesEnvSuffix)
	if !ok {
		return nil
	}
	return SplitProfiles(raw)
}

// SplitProfiles parses a comma-separated profile list, trimming blanks.
func SplitProfiles(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeProfiles deduplicates and sorts a profile list, keeping
// output deterministic for logging and comparison.
func NormalizeProfiles(profiles []string) []string {
	seen := make(map[string]bool, len(profiles))
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
