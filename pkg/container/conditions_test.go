package container

import (
	"testing"

	"github.com/openloom/loom/pkg/facts"
)

func evalWith(t *testing.T, c Condition, src facts.Source) bool {
	t.Helper()
	if err := c.Validate(); err != nil {
		t.Fatalf("Expected valid condition, got: %v", err)
	}
	return evaluate(c, newEvalContext(src))
}

func TestCondition_Capability(t *testing.T) {
	src := &facts.MapSource{Capabilities: map[string]bool{"redis": true}}

	if !evalWith(t, Condition{Kind: ConditionCapability, Capabilities: []string{"redis"}}, src) {
		t.Errorf("Expected present capability to match")
	}
	if evalWith(t, Condition{Kind: ConditionCapability, Capabilities: []string{"kafka"}}, src) {
		t.Errorf("Expected missing capability not to match")
	}
	if evalWith(t, Condition{Kind: ConditionCapability, Capabilities: []string{"redis", "kafka"}}, src) {
		t.Errorf("Expected partially missing capabilities not to match")
	}
}

func TestCondition_Capability_NilFacts(t *testing.T) {
	if evalWith(t, Condition{Kind: ConditionCapability, Capabilities: []string{"redis"}}, nil) {
		t.Errorf("Expected capability not to match with no fact source")
	}
}

func TestCondition_Property_PresenceOnly(t *testing.T) {
	src := &facts.MapSource{Properties: map[string]string{"cache.enabled": "false"}}

	// Empty expected value means any value matches.
	c := Condition{Kind: ConditionProperty, Property: "cache.enabled"}
	if !evalWith(t, c, src) {
		t.Errorf("Expected set property to match regardless of value")
	}
}

func TestCondition_Property_ExpectedValue(t *testing.T) {
	src := &facts.MapSource{Properties: map[string]string{"mode": "fast"}}

	if !evalWith(t, Condition{Kind: ConditionProperty, Property: "mode", Expected: "fast"}, src) {
		t.Errorf("Expected matching value to match")
	}
	if evalWith(t, Condition{Kind: ConditionProperty, Property: "mode", Expected: "slow"}, src) {
		t.Errorf("Expected mismatching value not to match")
	}
}

func TestCondition_Property_MatchIfMissing(t *testing.T) {
	src := &facts.MapSource{}

	missing := Condition{Kind: ConditionProperty, Property: "mode"}
	if evalWith(t, missing, src) {
		t.Errorf("Expected missing property not to match by default")
	}

	missing.MatchIfMissing = true
	if !evalWith(t, missing, src) {
		t.Errorf("Expected missing property to match with MatchIfMissing")
	}

	// A set property overrides MatchIfMissing and compares values.
	set := &facts.MapSource{Properties: map[string]string{"mode": "fast"}}
	c := Condition{Kind: ConditionProperty, Property: "mode", Expected: "slow", MatchIfMissing: true}
	if evalWith(t, c, set) {
		t.Errorf("Expected set property with wrong value not to match")
	}
}

func TestCondition_Profile_Any(t *testing.T) {
	src := &facts.MapSource{Profiles: []string{"production"}}

	c := Condition{Kind: ConditionProfile, Profiles: []string{"staging", "production"}}
	if !evalWith(t, c, src) {
		t.Errorf("Expected any-strategy to match when one profile is active")
	}

	c = Condition{Kind: ConditionProfile, Profiles: []string{"staging", "dev"}}
	if evalWith(t, c, src) {
		t.Errorf("Expected any-strategy not to match when no profile is active")
	}
}

func TestCondition_Profile_All(t *testing.T) {
	src := &facts.MapSource{Profiles: []string{"production", "eu"}}

	c := Condition{Kind: ConditionProfile, Profiles: []string{"production", "eu"}, Strategy: MatchAll}
	if !evalWith(t, c, src) {
		t.Errorf("Expected all-strategy to match when every profile is active")
	}

	c = Condition{Kind: ConditionProfile, Profiles: []string{"production", "us"}, Strategy: MatchAll}
	if evalWith(t, c, src) {
		t.Errorf("Expected all-strategy not to match when one profile is inactive")
	}
}

func TestCondition_Profile_Negation(t *testing.T) {
	src := &facts.MapSource{Profiles: []string{"production"}}

	if evalWith(t, Condition{Kind: ConditionProfile, Profiles: []string{"!production"}}, src) {
		t.Errorf("Expected negated active profile not to match")
	}
	if !evalWith(t, Condition{Kind: ConditionProfile, Profiles: []string{"!staging"}}, src) {
		t.Errorf("Expected negated inactive profile to match")
	}
}

// panickySource simulates an external fact source failing mid-lookup.
type panickySource struct{}

func (panickySource) HasCapability(string) bool { panic("backend unavailable") }
func (panickySource) Property(string) (string, bool) { panic("backend unavailable") }
func (panickySource) ActiveProfiles() []string { return nil }

func TestCondition_FactSourceFailure_TreatedAsNotMet(t *testing.T) {
	c := Condition{Kind: ConditionCapability, Capabilities: []string{"redis"}}
	if evalWith(t, c, panickySource{}) {
		t.Errorf("Expected failing fact source to yield condition-not-met")
	}
}

func TestCondition_Validate_Rejects(t *testing.T) {
	cases := []Condition{
		{Kind: "bogus"},
		{Kind: ConditionCapability},
		{Kind: ConditionProperty},
		{Kind: ConditionBeanPresent},
		{Kind: ConditionProfile},
		{Kind: ConditionProfile, Profiles: []string{"p"}, Strategy: "most"},
	}
	for i, c := range cases {
		if err := c.Validate(); err == nil {
			t.Errorf("Expected case %d to be rejected", i)
		}
	}
}
