package container

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// GraphNode wraps a descriptor confirmed to exist for this run.
type GraphNode struct {
	// Name is the component name.
	Name string `json:"name"`

	// Descriptor is the underlying component metadata.
	Descriptor *Descriptor `json:"-"`

	// Dependencies are the names of components this node needs, in
	// initialization order semantics (they initialize first).
	Dependencies []string `json:"dependencies,omitempty"`

	// Dependents are the names of components that need this node.
	Dependents []string `json:"dependents,omitempty"`
}

// GraphEdge records one (source, target) relation. Source initializes
// before target.
type GraphEdge struct {
	// From is the dependency (initializes first).
	From string `json:"from"`

	// To is the dependent.
	To string `json:"to"`

	// Kind is the injection kind, or "depends_on" for explicit ordering
	// constraints.
	Kind string `json:"kind"`

	// Required is false for optional and provider-indirected edges,
	// which are recorded for ordering but may be broken to resolve
	// cycles.
	Required bool `json:"required"`
}

// Graph is the dependency graph over the existence set. It is built
// once, single-threaded, before any Get traffic and is immutable
// afterward.
type Graph struct {
	nodes map[string]*GraphNode
	edges []GraphEdge

	// order is the deterministic initialization order.
	order []string
}

// Node returns the named node, or nil.
func (g *Graph) Node(name string) *GraphNode {
	return g.nodes[name]
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Edges returns the recorded edges.
func (g *Graph) Edges() []GraphEdge {
	return g.edges
}

// InitializationOrder returns the component names in the order they must
// be initialized. Every node appears after all its required
// dependencies; independent nodes are ordered by ascending order value,
// then declaration order.
func (g *Graph) InitializationOrder() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// DestructionOrder returns the reverse of the initialization order.
func (g *Graph) DestructionOrder() []string {
	out := make([]string, len(g.order))
	for i, name := range g.order {
		out[len(g.order)-1-i] = name
	}
	return out
}

// graphBuilder assembles a Graph from the existing descriptors. It
// mirrors the usual build pipeline: index nodes, resolve dependency
// targets to edges, detect cycles, then compute a deterministic
// topological order.
type graphBuilder struct {
	existing []*Descriptor
	byName   map[string]*Descriptor

	edges   map[string]*GraphEdge // keyed "from\x00to"
	inEdges map[string][]*GraphEdge
}

// buildGraph constructs the dependency graph for the existing
// descriptors, which must already be filtered to the existence set and
// carry their declaration indices.
func buildGraph(existing []*Descriptor) (*Graph, error) {
	b := &graphBuilder{
		existing: existing,
		byName:   make(map[string]*Descriptor, len(existing)),
		edges:    make(map[string]*GraphEdge),
		inEdges:  make(map[string][]*GraphEdge),
	}
	for _, d := range existing {
		b.byName[d.Name] = d
	}

	if err := b.resolveEdges(); err != nil {
		return nil, err
	}
	if err := b.detectRequiredCycles(); err != nil {
		return nil, err
	}
	order, err := b.topologicalOrder()
	if err != nil {
		return nil, err
	}
	return b.assemble(order), nil
}

// resolveEdges turns every dependency entry and explicit ordering
// constraint into edges.
func (b *graphBuilder) resolveEdges() error {
	for _, d := range b.existing {
		for i, dep := range d.Dependencies {
			targets, err := b.resolveTargets(d, i, dep)
			if err != nil {
				return err
			}
			for _, t := range targets {
				if t.Name == d.Name && !dep.required() {
					// A component may optionally reference itself
					// through a provider; no edge needed.
					continue
				}
				b.addEdge(t.Name, d.Name, string(dep.Kind), dep.required())
			}
		}

		for _, constraint := range append(append([]string{}, d.DependsOn...), d.DependsOnDestroy...) {
			if _, ok := b.byName[constraint]; !ok {
				return NewResolutionError(
					fmt.Sprintf("%s depends on %q which does not exist in this run", d.Name, constraint),
					nil,
				).WithCode(ErrCodeMissingDependency).WithComponent(d.Name)
			}
			b.addEdge(constraint, d.Name, "depends_on", true)
		}
	}
	return nil
}

// resolveTargets finds the descriptors a dependency entry refers to.
// Collection dependencies return every candidate; single dependencies
// are disambiguated by qualifier, then primary, then unique lowest
// order value.
func (b *graphBuilder) resolveTargets(owner *Descriptor, idx int, dep Dependency) ([]*Descriptor, error) {
	candidates := b.candidates(dep)

	if dep.Collection {
		return candidates, nil
	}

	if len(candidates) == 0 {
		if !dep.required() {
			return nil, nil
		}
		return nil, NewResolutionError(
			fmt.Sprintf("missing required dependency %s of %s (dependency %d)",
				dep.describeTarget(), owner.Name, idx),
			nil,
		).WithCode(ErrCodeMissingDependency).WithComponent(owner.Name)
	}

	chosen, err := selectCandidate(dep, candidates)
	if err != nil {
		return nil, NewResolutionError(
			fmt.Sprintf("dependency %s of %s is ambiguous", dep.describeTarget(), owner.Name),
			err,
		).WithCode(ErrCodeAmbiguousDependency).WithComponent(owner.Name)
	}
	return []*Descriptor{chosen}, nil
}

// candidates returns every existing descriptor matching the dependency
// target, sorted by ascending order value then declaration order.
func (b *graphBuilder) candidates(dep Dependency) []*Descriptor {
	var out []*Descriptor
	for _, d := range b.existing {
		if matchesDependency(d, dep) {
			out = append(out, d)
		}
	}
	sortByPrecedence(out)
	return out
}

// matchesDependency reports whether descriptor d can satisfy dep.
func matchesDependency(d *Descriptor, dep Dependency) bool {
	if dep.Type != nil {
		if !d.providesType(dep.Type) {
			return false
		}
		if dep.Name != "" && d.Name != dep.Name && d.Qualifier != dep.Name {
			return false
		}
		return true
	}
	// Name-only targeting: unique name first, qualifier as fallback.
	return d.Name == dep.Name || d.Qualifier == dep.Name
}

// selectCandidate applies the disambiguation rules to a non-empty,
// precedence-sorted candidate list.
func selectCandidate(dep Dependency, candidates []*Descriptor) (*Descriptor, error) {
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	// Exact name match outranks a qualifier match.
	if dep.Name != "" {
		for _, c := range candidates {
			if c.Name == dep.Name {
				return c, nil
			}
		}
	}

	var primaries []*Descriptor
	for _, c := range candidates {
		if c.Primary {
			primaries = append(primaries, c)
		}
	}
	if len(primaries) == 1 {
		return primaries[0], nil
	}
	if len(primaries) > 1 {
		return nil, fmt.Errorf("multiple candidates marked primary: %s", joinNames(primaries))
	}

	// No primary: a unique lowest order value wins; an order-value tie
	// is a genuine ambiguity rather than something declaration order
	// should silently decide.
	if candidates[0].Order < candidates[1].Order {
		return candidates[0], nil
	}
	return nil, fmt.Errorf("candidates %s share order value %d and none is primary",
		joinNames(candidates), candidates[0].Order)
}

func joinNames(ds []*Descriptor) string {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Name
	}
	return strings.Join(names, ", ")
}

// sortByPrecedence orders descriptors by ascending order value, ties by
// declaration order.
func sortByPrecedence(ds []*Descriptor) {
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Order != ds[j].Order {
			return ds[i].Order < ds[j].Order
		}
		return ds[i].index < ds[j].index
	})
}

// addEdge records an edge, deduplicating (from, to) pairs. A duplicate
// edge is a no-op; a required duplicate upgrades a soft edge.
func (b *graphBuilder) addEdge(from, to, kind string, required bool) {
	key := from + "\x00" + to
	if e, ok := b.edges[key]; ok {
		if required && !e.Required {
			e.Required = true
		}
		return
	}
	e := &GraphEdge{From: from, To: to, Kind: kind, Required: required}
	b.edges[key] = e
	b.inEdges[to] = append(b.inEdges[to], e)
}

// detectRequiredCycles runs a depth-first search over required edges
// only. A cycle among required edges is always fatal; cycles that exist
// only through optional or provider edges are legal and broken later.
func (b *graphBuilder) detectRequiredCycles() error {
	adj := make(map[string][]string, len(b.existing))
	for _, e := range b.edges {
		if e.Required {
			adj[e.From] = append(adj[e.From], e.To)
		}
	}
	for from := range adj {
		sort.Strings(adj[from])
	}

	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var visit func(name string, path []string) []string
	visit = func(name string, path []string) []string {
		visited[name] = true
		onStack[name] = true
		path = append(path, name)

		for _, next := range adj[name] {
			if !visited[next] {
				if cycle := visit(next, path); cycle != nil {
					return cycle
				}
			} else if onStack[next] {
				start := 0
				for i, n := range path {
					if n == next {
						start = i
						break
					}
				}
				return append(append([]string{}, path[start:]...), next)
			}
		}

		onStack[name] = false
		return nil
	}

	for _, d := range b.existing {
		if visited[d.Name] {
			continue
		}
		if cycle := visit(d.Name, nil); cycle != nil {
			return NewResolutionError(
				fmt.Sprintf("required dependency cycle: %s", strings.Join(cycle, " -> ")),
				nil,
			).WithCode(ErrCodeDependencyCycle)
		}
	}
	return nil
}

// topologicalOrder computes the initialization order with Kahn's
// algorithm, always selecting the ready node with the lowest
// (order value, declaration index). Soft edges participate in ordering;
// when only soft edges keep the sort from progressing, one is dropped
// deterministically, which is where optional cycles are broken.
func (b *graphBuilder) topologicalOrder() ([]string, error) {
	inDegree := make(map[string]int, len(b.existing))
	softIn := make(map[string]int, len(b.existing))
	adj := make(map[string][]*GraphEdge, len(b.existing))
	for _, d := range b.existing {
		inDegree[d.Name] = 0
	}
	for _, e := range b.edges {
		inDegree[e.To]++
		if !e.Required {
			softIn[e.To]++
		}
		adj[e.From] = append(adj[e.From], e)
	}

	dropped := make(map[*GraphEdge]bool)
	order := make([]string, 0, len(b.existing))
	placed := make(map[string]bool, len(b.existing))

	for len(order) < len(b.existing) {
		next := b.pickReady(inDegree, placed)

		if next == nil {
			// Every remaining node is blocked. Required cycles were
			// ruled out, so some soft edge closes the loop; drop the
			// soft edge into the best-precedence blocked node.
			e := b.pickSoftEdgeToDrop(inDegree, softIn, placed, dropped)
			if e == nil {
				return nil, NewResolutionError(
					"dependency graph ordering stalled without a breakable edge",
					nil,
				).WithCode(ErrCodeInternal)
			}
			dropped[e] = true
			inDegree[e.To]--
			softIn[e.To]--
			continue
		}

		order = append(order, next.Name)
		placed[next.Name] = true
		for _, e := range adj[next.Name] {
			if dropped[e] {
				continue
			}
			inDegree[e.To]--
			if !e.Required {
				softIn[e.To]--
			}
		}
	}

	return order, nil
}

// pickReady returns the unplaced zero-in-degree descriptor with the
// lowest (order value, declaration index), or nil.
func (b *graphBuilder) pickReady(inDegree map[string]int, placed map[string]bool) *Descriptor {
	var best *Descriptor
	for _, d := range b.existing {
		if placed[d.Name] || inDegree[d.Name] != 0 {
			continue
		}
		if best == nil || d.Order < best.Order || (d.Order == best.Order && d.index < best.index) {
			best = d
		}
	}
	return best
}

// pickSoftEdgeToDrop chooses, deterministically, a soft edge whose
// removal lets the topological sort progress: the not-yet-dropped soft
// edge into the blocked node with the best precedence.
func (b *graphBuilder) pickSoftEdgeToDrop(
	inDegree map[string]int,
	softIn map[string]int,
	placed map[string]bool,
	dropped map[*GraphEdge]bool,
) *GraphEdge {
	var bestNode *Descriptor
	for _, d := range b.existing {
		if placed[d.Name] || softIn[d.Name] == 0 {
			continue
		}
		if bestNode == nil || d.Order < bestNode.Order ||
			(d.Order == bestNode.Order && d.index < bestNode.index) {
			bestNode = d
		}
	}
	if bestNode == nil {
		return nil
	}

	var candidates []*GraphEdge
	for _, e := range b.inEdges[bestNode.Name] {
		if !e.Required && !dropped[e] {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].From < candidates[j].From
	})
	return candidates[0]
}

// assemble builds the final Graph value.
func (b *graphBuilder) assemble(order []string) *Graph {
	g := &Graph{
		nodes: make(map[string]*GraphNode, len(b.existing)),
		order: order,
	}

	for _, d := range b.existing {
		g.nodes[d.Name] = &GraphNode{Name: d.Name, Descriptor: d}
	}

	keys := make([]string, 0, len(b.edges))
	for k := range b.edges {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e := b.edges[k]
		g.edges = append(g.edges, *e)
		g.nodes[e.To].Dependencies = append(g.nodes[e.To].Dependencies, e.From)
		g.nodes[e.From].Dependents = append(g.nodes[e.From].Dependents, e.To)
	}

	return g
}

// candidatesAmong returns the existing descriptors matching a request
// for type t (optionally narrowed by name), sorted by precedence. The
// container facade applies the same disambiguation rules at request
// time that the graph builder applies at wiring time.
func candidatesAmong(existing []*Descriptor, t reflect.Type, name string) []*Descriptor {
	dep := Dependency{Type: t, Name: name}
	var out []*Descriptor
	for _, d := range existing {
		if matchesDependency(d, dep) {
			out = append(out, d)
		}
	}
	sortByPrecedence(out)
	return out
}
