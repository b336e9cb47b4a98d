package container

import "fmt"

// InstanceState represents the lifecycle state of one created instance.
// Descriptors are immutable and have no state of their own; instances
// progress through states as follows:
//
//	declared -> created -> usable -> destroying -> destroyed
//	                |
//	          creation_failed
type InstanceState string

const (
	// StateDeclared indicates the component is part of the graph but no
	// instance exists yet. Initial state for every component.
	StateDeclared InstanceState = "declared"

	// StateCreated indicates the constructor completed but injection
	// points may not be filled and post-construct has not run.
	StateCreated InstanceState = "created"

	// StateUsable indicates the instance is fully initialized: all
	// injection points filled and post-construct completed.
	StateUsable InstanceState = "usable"

	// StateDestroying indicates the owning scope is being torn down and
	// the pre-destroy hook is in flight.
	StateDestroying InstanceState = "destroying"

	// StateDestroyed indicates teardown completed. Terminal state.
	StateDestroyed InstanceState = "destroyed"

	// StateCreationFailed indicates construction or initialization
	// failed. Terminal, non-recoverable; the container never hands a
	// failed instance to a caller.
	StateCreationFailed InstanceState = "creation_failed"
)

// IsTerminal returns true if no further transitions are possible.
func (s InstanceState) IsTerminal() bool {
	return s == StateDestroyed || s == StateCreationFailed
}

// IsUsable returns true if the instance may be handed to callers.
func (s InstanceState) IsUsable() bool {
	return s == StateUsable
}

// CanTransitionTo checks if a transition to the target state is valid.
func (s InstanceState) CanTransitionTo(target InstanceState) bool {
	switch s {
	case StateDeclared:
		// A factory error fails the instance before it was ever created.
		return target == StateCreated || target == StateCreationFailed
	case StateCreated:
		return target == StateUsable || target == StateCreationFailed
	case StateUsable:
		return target == StateDestroying
	case StateDestroying:
		return target == StateDestroyed
	default:
		return false
	}
}

// Validate checks if the instance state is valid.
func (s InstanceState) Validate() error {
	switch s {
	case StateDeclared, StateCreated, StateUsable,
		StateDestroying, StateDestroyed, StateCreationFailed:
		return nil
	default:
		return fmt.Errorf("invalid instance state: %s", s)
	}
}
