package container

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// graphExport is the JSON shape of an exported graph.
type graphExport struct {
	Nodes []nodeExport `json:"nodes"`
	Edges []GraphEdge  `json:"edges"`
	Order []string     `json:"initialization_order"`
}

type nodeExport struct {
	Name      string   `json:"name"`
	Scope     string   `json:"scope,omitempty"`
	Qualifier string   `json:"qualifier,omitempty"`
	Primary   bool     `json:"primary,omitempty"`
	Order     int      `json:"order,omitempty"`
	Lazy      bool     `json:"lazy,omitempty"`
	DependsOn []string `json:"dependencies,omitempty"`
}

// WriteJSON writes the graph as indented JSON. Nodes appear in
// initialization order.
func (g *Graph) WriteJSON(w io.Writer) error {
	export := graphExport{
		Order: g.InitializationOrder(),
		Edges: g.Edges(),
	}
	for _, name := range export.Order {
		n := g.nodes[name]
		d := n.Descriptor
		export.Nodes = append(export.Nodes, nodeExport{
			Name:      n.Name,
			Scope:     d.Scope,
			Qualifier: d.Qualifier,
			Primary:   d.Primary,
			Order:     d.Order,
			Lazy:      d.Lazy,
			DependsOn: n.Dependencies,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(export)
}

// WriteDOT writes the graph in Graphviz DOT format. Required edges are
// solid, optional and provider edges dashed.
func (g *Graph) WriteDOT(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("digraph components {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box, fontname=\"monospace\"];\n\n")

	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		d := g.nodes[name].Descriptor
		label := name
		if d.Scope != "" && d.Scope != ScopeSingleton {
			label = fmt.Sprintf("%s\\n(%s)", name, d.Scope)
		}
		sb.WriteString(fmt.Sprintf("  %q [label=%q];\n", name, label))
	}
	sb.WriteString("\n")

	for _, e := range g.edges {
		attrs := ""
		if !e.Required {
			attrs = " [style=dashed]"
		}
		sb.WriteString(fmt.Sprintf("  %q -> %q%s;\n", e.From, e.To, attrs))
	}
	sb.WriteString("}\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
