// Package container provides the core dependency-injection engine for Loom.
//
// # Overview
//
// Loom is a deterministic dependency-injection container: a registry of
// declared components, a resolver that wires them together, and a lifecycle
// manager that creates, initializes, and destroys them in a safe order.
// The container operates through a 4-phase startup workflow:
//
//  1. Declare - Register immutable component descriptors (Descriptor)
//  2. Resolve - Compute the existence set via fixed-point condition evaluation
//  3. Graph   - Build the dependency graph, detect cycles, order initialization
//  4. Start   - Instantiate eager components and run start hooks in graph order
//
// After Start, the container serves concurrent Get traffic; Close walks the
// reverse of the initialization order and tears everything down.
//
// # Core Domain Types
//
// The package defines several fundamental types that represent the wiring model:
//
//   - Descriptor: Immutable metadata describing one component
//   - Dependency: A declared injection point (constructor/field/method)
//   - Condition: A declarative existence condition (capability/property/bean/profile)
//   - Graph: The dependency graph over the existence set
//   - Scope: A pluggable instance caching/lifetime strategy
//   - Container: The public resolution facade
//   - Provider: A lazy handle used to break optional dependency cycles
//
// # Existence Resolution
//
// Components may declare conditions on properties, capabilities, active
// profiles, and on the presence or absence of other components. Because
// bean-presence conditions can reference components that are themselves
// conditional, the resolver iterates to a fixed point. Resolution is
// deterministic: given identical facts, the present/absent partition is
// identical on every run, with ties broken by declaration order. A residue
// of mutually dependent conditional components is a hard error.
//
// # Scopes
//
// Built-in scopes are "singleton" (one instance per container, concurrent
// first access races collapse to one factory call), "prototype" (a new
// instance per request), and the context scopes "request" and "session"
// (instances keyed by an ambient context id). Custom scopes register under
// a string id.
//
// # Error Classification
//
// Errors are classified by the phase that produced them:
//
//   - Resolution: raised before any instance exists; fatal to container start
//   - Creation: a constructor, injection step, or post-construct hook failed
//   - Scope: a per-request scoping failure such as a missing context
//   - Destruction: collected during Close and surfaced as an aggregate report
//
// Use the error predicates to classify and inspect errors:
//
//	if container.IsResolution(err) {
//	    // The wiring itself is invalid; fix the declarations
//	}
//
// # Thread Safety
//
// Existence resolution and graph construction run single-threaded before any
// Get traffic. Get is safe for arbitrary concurrent callers. Rebuild is the
// only post-start mutation and is serialized against all Get calls.
package container
