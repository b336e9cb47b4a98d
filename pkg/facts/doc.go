// Package facts supplies the external fact sources consumed by the
// container's condition evaluator.
//
// # Overview
//
// A fact source answers three questions about the environment a container
// runs in: whether a named capability is available, what value a named
// property has, and which profiles are active. The container core never
// loads configuration itself; it consumes these answers through the
// narrow Source contract.
//
// The package ships four implementations:
//
//   - MapSource: in-memory facts for tests and programmatic setup
//   - EnvSource: properties and profiles from environment variables
//   - FileSource: facts loaded from a YAML document
//   - Layered: precedence-ordered composition of other sources
//
// # Profile Activation
//
// Active profiles are resolved through a fixed precedence chain:
// explicit programmatic setting, then the "loom.profiles" property, then
// the LOOM_PROFILES environment variable, then the "default" profile.
// Layered implements this chain; see Layered.ActiveProfiles.
//
// # Change Notification
//
// Watcher observes a fact file with fsnotify and invokes a callback when
// it changes. The container wires that callback to its serialized Rebuild
// operation, which is the only supported re-evaluation trigger.
package facts
