package facts

import "testing"

func TestLayered_PropertyPrecedence(t *testing.T) {
	high := &MapSource{Properties: map[string]string{"mode": "fast"}}
	low := &MapSource{Properties: map[string]string{"mode": "slow", "extra": "yes"}}

	l := NewLayered(high, low)

	if v, _ := l.Property("mode"); v != "fast" {
		t.Errorf("Expected first layer to win, got %q", v)
	}
	if v, ok := l.Property("extra"); !ok || v != "yes" {
		t.Errorf("Expected fallthrough to lower layer, got %q (%v)", v, ok)
	}
	if _, ok := l.Property("absent"); ok {
		t.Errorf("Expected absent property to stay absent")
	}
}

func TestLayered_CapabilityUnion(t *testing.T) {
	l := NewLayered(
		&MapSource{Capabilities: map[string]bool{"redis": true}},
		&MapSource{Capabilities: map[string]bool{"kafka": true}},
	)

	if !l.HasCapability("redis") || !l.HasCapability("kafka") {
		t.Errorf("Expected capabilities from every layer")
	}
	if l.HasCapability("s3") {
		t.Errorf("Expected unknown capability to be absent")
	}
}

func TestLayered_ProfileActivationChain(t *testing.T) {
	// Explicit activation outranks everything.
	l := NewLayered(&MapSource{Profiles: []string{"from-layer"}}).WithProfiles("explicit")
	if got := l.ActiveProfiles(); len(got) != 1 || got[0] != "explicit" {
		t.Errorf("Expected explicit activation to win, got %v", got)
	}

	// The profiles property outranks layer opinions.
	l = NewLayered(
		&MapSource{Properties: map[string]string{ProfilesProperty: "from-property"}},
		&MapSource{Profiles: []string{"from-layer"}},
	)
	if got := l.ActiveProfiles(); len(got) != 1 || got[0] != "from-property" {
		t.Errorf("Expected property activation, got %v", got)
	}

	// Layer opinions come next.
	l = NewLayered(&MapSource{Profiles: []string{"from-layer"}})
	if got := l.ActiveProfiles(); len(got) != 1 || got[0] != "from-layer" {
		t.Errorf("Expected layer activation, got %v", got)
	}

	// Nothing anywhere: the default profile.
	l = NewLayered(&MapSource{})
	if got := l.ActiveProfiles(); len(got) != 1 || got[0] != DefaultProfile {
		t.Errorf("Expected default profile, got %v", got)
	}
}
