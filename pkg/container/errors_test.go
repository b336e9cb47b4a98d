package container

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Classification(t *testing.T) {
	cases := []struct {
		err   *Error
		check func(error) bool
	}{
		{NewResolutionError("m", nil), IsResolution},
		{NewCreationError("m", nil), IsCreation},
		{NewScopeError("m", nil), IsScope},
		{NewDestructionError("m", nil), IsDestruction},
	}

	for _, tc := range cases {
		if !tc.check(tc.err) {
			t.Errorf("Expected %s to satisfy its class predicate", tc.err.Class)
		}
		// Classification survives wrapping.
		wrapped := fmt.Errorf("context: %w", tc.err)
		if !tc.check(wrapped) {
			t.Errorf("Expected %s classification to survive wrapping", tc.err.Class)
		}
	}

	if IsCreation(NewResolutionError("m", nil)) {
		t.Errorf("Expected class predicates to be exclusive")
	}
}

func TestError_MessageRendering(t *testing.T) {
	err := NewCreationError("factory failed", fmt.Errorf("boom")).
		WithComponent("db").
		WithCode(ErrCodeFactoryFailed)

	msg := err.Error()
	for _, part := range []string{"creation", "factory failed", "db", "boom"} {
		if !strings.Contains(msg, part) {
			t.Errorf("Expected %q in message: %s", part, msg)
		}
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NewCreationError("wrapper", cause)
	if !errors.Is(err, cause) {
		t.Errorf("Expected errors.Is to find the cause")
	}
}

func TestDestructionReport_Empty(t *testing.T) {
	r := &DestructionReport{}
	if !r.Empty() {
		t.Errorf("Expected empty report")
	}

	r.Errors = append(r.Errors, NewDestructionError("m", nil).WithComponent("db"))
	if r.Empty() {
		t.Errorf("Expected non-empty report")
	}
	if !strings.Contains(r.Error(), "db") {
		t.Errorf("Expected failing component named in message: %s", r.Error())
	}
}

func TestInstanceState_Transitions(t *testing.T) {
	valid := []struct{ from, to InstanceState }{
		{StateDeclared, StateCreated},
		{StateCreated, StateUsable},
		{StateUsable, StateDestroying},
		{StateDestroying, StateDestroyed},
		{StateDeclared, StateCreationFailed},
		{StateCreated, StateCreationFailed},
	}
	for _, tc := range valid {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("Expected %s -> %s to be valid", tc.from, tc.to)
		}
	}

	invalid := []struct{ from, to InstanceState }{
		{StateDestroyed, StateUsable},
		{StateUsable, StateCreated},
		{StateCreationFailed, StateUsable},
	}
	for _, tc := range invalid {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("Expected %s -> %s to be invalid", tc.from, tc.to)
		}
	}

	if !StateDestroyed.IsTerminal() || !StateCreationFailed.IsTerminal() {
		t.Errorf("Expected destroyed and creation_failed to be terminal")
	}
	if StateUsable.IsTerminal() {
		t.Errorf("Expected usable not to be terminal")
	}
}
