// Package manifest loads component declarations from YAML files.
//
// A manifest describes components the same way programmatic registration
// does, minus the factories: names, scopes, qualifiers, dependencies,
// conditions, and ordering constraints. Loaded declarations are
// declaration-only descriptors, suitable for wiring inspection (existence
// resolution, graph construction, cycle checks, DOT/JSON export) without
// running any application code. The loom CLI is the primary consumer.
//
// # Format
//
// A manifest is a single YAML document:
//
//	components:
//	  - name: database
//	    scope: singleton
//	    conditions:
//	      - kind: property
//	        property: db.url
//	  - name: cache
//	    conditions:
//	      - kind: capability
//	        capabilities: [redis]
//	  - name: repository
//	    dependencies:
//	      - name: database
//	      - name: cache
//	        optional: true
//
// Structural validation runs on load; name uniqueness and wiring
// validity are checked by the container when the descriptors are
// registered.
package manifest
