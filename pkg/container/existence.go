package container

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/openloom/loom/pkg/facts"
)

// Existence is the result of existence resolution: the partition of the
// declared descriptors into those that exist for this run and those
// conditioned away.
type Existence struct {
	// Present holds the names of components that exist, in declaration
	// order.
	Present []string `json:"present"`

	// Absent holds the names of components whose conditions did not
	// match, in declaration order.
	Absent []string `json:"absent"`

	presentSet map[string]bool
}

// Exists reports whether the named component is in the existence set.
func (e *Existence) Exists(name string) bool {
	return e.presentSet[name]
}

// resolveExistence computes the fixed-point existence partition for the
// descriptor list against the supplied facts.
//
// Unconditioned descriptors and descriptors without bean-presence
// conditions are decided immediately. Bean-conditioned descriptors are
// held unknown and re-visited each pass; one becomes decidable once every
// component its bean conditions reference has itself been decided. The
// loop stops when a pass makes no progress. Any residue at that point is
// a mutual bean-presence cycle and a hard resolution error.
//
// Iteration follows declaration order throughout, so the partition is
// identical on every run for identical facts.
func resolveExistence(descriptors []*Descriptor, src facts.Source) (*Existence, error) {
	ctx := newEvalContext(src)

	declared := make(map[string]bool, len(descriptors))
	for _, d := range descriptors {
		declared[d.Name] = true
	}

	// A bean condition may reference a name that was never declared;
	// such a reference is decided absent up front so the fixed point
	// does not wait on it forever.
	for _, d := range descriptors {
		for _, c := range d.Conditions {
			if c.Kind != ConditionBeanPresent && c.Kind != ConditionBeanAbsent {
				continue
			}
			for _, name := range c.Beans {
				if !declared[name] {
					ctx.absent[name] = true
				}
			}
		}
	}

	var unknown []*Descriptor

	// First pass: everything that does not depend on bean presence can
	// be decided directly.
	for _, d := range descriptors {
		if d.hasBeanConditions() {
			unknown = append(unknown, d)
			continue
		}
		decide(d, ctx)
	}

	// Fixed point over the bean-conditioned residue.
	passes := 0
	for len(unknown) > 0 {
		passes++
		progressed := false
		remaining := unknown[:0]

		for _, d := range unknown {
			if !beanRefsDecided(d, ctx) {
				remaining = append(remaining, d)
				continue
			}
			decide(d, ctx)
			progressed = true
		}

		unknown = remaining
		if !progressed {
			break
		}
	}

	if len(unknown) > 0 {
		names := make([]string, 0, len(unknown))
		for _, d := range unknown {
			names = append(names, d.Name)
		}
		return nil, NewResolutionError(
			fmt.Sprintf("unresolvable bean-presence cycle among: %s",
				strings.Join(names, " -> ")),
			nil,
		).WithCode(ErrCodeExistenceCycle)
	}

	result := &Existence{presentSet: make(map[string]bool, len(ctx.present))}
	for _, d := range descriptors {
		if ctx.present[d.Name] {
			result.Present = append(result.Present, d.Name)
			result.presentSet[d.Name] = true
		} else {
			result.Absent = append(result.Absent, d.Name)
		}
	}

	log.Debug().
		Int("declared", len(descriptors)).
		Int("present", len(result.Present)).
		Int("absent", len(result.Absent)).
		Int("passes", passes).
		Msg("Existence resolution converged")

	return result, nil
}

// decide evaluates every condition of d (AND) and records the outcome.
func decide(d *Descriptor, ctx *evalContext) {
	exists := true
	for _, c := range d.Conditions {
		if !evaluate(c, ctx) {
			exists = false
			break
		}
	}
	if exists {
		ctx.present[d.Name] = true
	} else {
		ctx.absent[d.Name] = true
	}
}

// beanRefsDecided reports whether every component referenced by d's
// bean-presence/absence conditions has been decided present or absent.
func beanRefsDecided(d *Descriptor, ctx *evalContext) bool {
	for _, c := range d.Conditions {
		if c.Kind != ConditionBeanPresent && c.Kind != ConditionBeanAbsent {
			continue
		}
		for _, name := range c.Beans {
			if !ctx.present[name] && !ctx.absent[name] {
				return false
			}
		}
	}
	return true
}
