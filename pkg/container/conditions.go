package container

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/openloom/loom/pkg/facts"
)

// ConditionKind identifies one of the closed set of condition types the
// container evaluates. Conditions are not a general expression language;
// the vocabulary is fixed so existence resolution stays decidable.
type ConditionKind string

const (
	// ConditionCapability matches when every named external capability
	// is reported present by the fact source.
	ConditionCapability ConditionKind = "capability"

	// ConditionProperty matches on presence (and optionally exact
	// value) of a named property.
	ConditionProperty ConditionKind = "property"

	// ConditionBeanPresent matches when every named component is in the
	// existence set being computed.
	ConditionBeanPresent ConditionKind = "bean_present"

	// ConditionBeanAbsent matches when none of the named components is
	// in the existence set being computed.
	ConditionBeanAbsent ConditionKind = "bean_absent"

	// ConditionProfile matches against the active profile set.
	ConditionProfile ConditionKind = "profile"
)

// Validate checks if the condition kind is valid.
func (k ConditionKind) Validate() error {
	switch k {
	case ConditionCapability, ConditionProperty,
		ConditionBeanPresent, ConditionBeanAbsent, ConditionProfile:
		return nil
	default:
		return fmt.Errorf("invalid condition kind: %s", k)
	}
}

// MatchStrategy controls how the individual checks inside one profile
// condition combine.
type MatchStrategy string

const (
	// MatchAll requires every check to pass.
	MatchAll MatchStrategy = "all"

	// MatchAny requires at least one check to pass.
	MatchAny MatchStrategy = "any"
)

// Condition is one declarative existence condition attached to a
// descriptor. All conditions on a descriptor combine with AND.
type Condition struct {
	// Kind selects the condition type.
	Kind ConditionKind `json:"kind"`

	// Capabilities names the required capabilities (ConditionCapability).
	Capabilities []string `json:"capabilities,omitempty"`

	// Property is the property name (ConditionProperty).
	Property string `json:"property,omitempty"`

	// Expected is the required property value; empty means any value.
	Expected string `json:"expected,omitempty"`

	// MatchIfMissing inverts the missing-property case to a match.
	MatchIfMissing bool `json:"match_if_missing,omitempty"`

	// Beans names the components checked for presence or absence.
	Beans []string `json:"beans,omitempty"`

	// Profiles are the profile checks; a leading "!" negates one check.
	Profiles []string `json:"profiles,omitempty"`

	// Strategy combines profile checks; defaults to MatchAny, matching
	// the convention that listing several profiles means "any of these".
	Strategy MatchStrategy `json:"strategy,omitempty"`
}

// Validate checks structural validity of the condition.
func (c Condition) Validate() error {
	if err := c.Kind.Validate(); err != nil {
		return err
	}
	switch c.Kind {
	case ConditionCapability:
		if len(c.Capabilities) == 0 {
			return fmt.Errorf("capability condition names no capabilities")
		}
	case ConditionProperty:
		if c.Property == "" {
			return fmt.Errorf("property condition has empty property name")
		}
	case ConditionBeanPresent, ConditionBeanAbsent:
		if len(c.Beans) == 0 {
			return fmt.Errorf("%s condition names no components", c.Kind)
		}
	case ConditionProfile:
		if len(c.Profiles) == 0 {
			return fmt.Errorf("profile condition names no profiles")
		}
	}
	if c.Strategy != "" && c.Strategy != MatchAll && c.Strategy != MatchAny {
		return fmt.Errorf("invalid match strategy: %s", c.Strategy)
	}
	return nil
}

// String renders the condition for error messages and exports.
func (c Condition) String() string {
	switch c.Kind {
	case ConditionCapability:
		return fmt.Sprintf("capability(%s)", strings.Join(c.Capabilities, ","))
	case ConditionProperty:
		if c.Expected != "" {
			return fmt.Sprintf("property(%s == %q)", c.Property, c.Expected)
		}
		return fmt.Sprintf("property(%s)", c.Property)
	case ConditionBeanPresent:
		return fmt.Sprintf("bean(%s)", strings.Join(c.Beans, ","))
	case ConditionBeanAbsent:
		return fmt.Sprintf("missing-bean(%s)", strings.Join(c.Beans, ","))
	case ConditionProfile:
		return fmt.Sprintf("profile(%s)", strings.Join(c.Profiles, ","))
	default:
		return string(c.Kind)
	}
}

// evalContext carries everything a single condition evaluation may
// consult: external facts plus the in-progress existence partition.
type evalContext struct {
	facts    facts.Source
	profiles map[string]bool
	present  map[string]bool
	absent   map[string]bool
}

func newEvalContext(src facts.Source) *evalContext {
	profiles := make(map[string]bool)
	if src != nil {
		for _, p := range src.ActiveProfiles() {
			profiles[p] = true
		}
	}
	return &evalContext{
		facts:    src,
		profiles: profiles,
		present:  make(map[string]bool),
		absent:   make(map[string]bool),
	}
}

// evaluate returns whether the condition matches in ctx. A fact source
// failure (panic) is treated as condition-not-met with a logged warning,
// never as a fatal error.
func evaluate(c Condition, ctx *evalContext) (matched bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().
				Str("condition", c.String()).
				Interface("cause", r).
				Msg("Fact source failed during condition evaluation; treating condition as not met")
			matched = false
		}
	}()

	switch c.Kind {
	case ConditionCapability:
		if ctx.facts == nil {
			return false
		}
		for _, name := range c.Capabilities {
			if !ctx.facts.HasCapability(name) {
				return false
			}
		}
		return true

	case ConditionProperty:
		if ctx.facts == nil {
			return c.MatchIfMissing
		}
		value, ok := ctx.facts.Property(c.Property)
		if !ok {
			return c.MatchIfMissing
		}
		if c.Expected == "" {
			return true
		}
		return value == c.Expected

	case ConditionBeanPresent:
		for _, name := range c.Beans {
			if !ctx.present[name] {
				return false
			}
		}
		return true

	case ConditionBeanAbsent:
		for _, name := range c.Beans {
			if ctx.present[name] {
				return false
			}
		}
		return true

	case ConditionProfile:
		return matchProfiles(c, ctx.profiles)

	default:
		return false
	}
}

// matchProfiles applies the per-profile checks under the condition's
// strategy. A leading "!" negates the individual check.
func matchProfiles(c Condition, active map[string]bool) bool {
	strategy := c.Strategy
	if strategy == "" {
		strategy = MatchAny
	}
	for _, expr := range c.Profiles {
		ok := matchOneProfile(expr, active)
		if strategy == MatchAny && ok {
			return true
		}
		if strategy == MatchAll && !ok {
			return false
		}
	}
	return strategy == MatchAll
}

func matchOneProfile(expr string, active map[string]bool) bool {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return true
	}
	if negated, ok := strings.CutPrefix(expr, "!"); ok {
		return !active[strings.TrimSpace(negated)]
	}
	return active[expr]
}
