package includegraph

import (
	"fmt"
	"sort"
	"strings"
)

// Format selects a textual rendering of the graph.
type Format string

const (
	FormatDOT     Format = "dot"
	FormatMermaid Format = "mermaid"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatDOT, FormatMermaid:
		return f, nil
	case "":
		return FormatDOT, nil
	default:
		return "", fmt.Errorf("unknown format %q (valid: dot, mermaid)", name)
	}
}

// Render writes the graph in the requested format.
func (ig *Graph) Render(format Format) (string, error) {
	switch format {
	case FormatMermaid:
		return ig.Mermaid()
	default:
		return ig.DOT()
	}
}

type edge struct {
	from, to  string
	ambiguous bool
}

func (ig *Graph) sortedEdges() ([]edge, error) {
	adjacency, err := ig.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	var edges []edge
	for from, targets := range adjacency {
		for to, e := range targets {
			edges = append(edges, edge{
				from:      from,
				to:        to,
				ambiguous: e.Properties.Attributes[attrAmbiguous] == "true",
			})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].from != edges[j].from {
			return edges[i].from < edges[j].from
		}
		return edges[i].to < edges[j].to
	})
	return edges, nil
}

// DOT renders the graph in Graphviz format. Unresolved includes are drawn
// dashed red and ambiguous resolutions as dashed orange edges.
func (ig *Graph) DOT() (string, error) {
	vertices, err := ig.Vertices()
	if err != nil {
		return "", err
	}
	edges, err := ig.sortedEdges()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("digraph includes {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n")
	for _, v := range vertices {
		switch ig.kinds[v] {
		case kindMissing:
			fmt.Fprintf(&sb, "  %q [style=dashed, color=red];\n", v)
		case kindHeader:
			fmt.Fprintf(&sb, "  %q [style=filled, fillcolor=lightgrey];\n", v)
		default:
			fmt.Fprintf(&sb, "  %q;\n", v)
		}
	}
	for _, e := range edges {
		if e.ambiguous {
			fmt.Fprintf(&sb, "  %q -> %q [style=dashed, color=orange];\n", e.from, e.to)
			continue
		}
		fmt.Fprintf(&sb, "  %q -> %q;\n", e.from, e.to)
	}
	sb.WriteString("}\n")
	return sb.String(), nil
}

// Mermaid renders the graph as a Mermaid flowchart.
func (ig *Graph) Mermaid() (string, error) {
	vertices, err := ig.Vertices()
	if err != nil {
		return "", err
	}
	edges, err := ig.sortedEdges()
	if err != nil {
		return "", err
	}

	ids := make(map[string]string, len(vertices))
	var sb strings.Builder
	sb.WriteString("flowchart LR\n")
	for i, v := range vertices {
		id := fmt.Sprintf("n%d", i)
		ids[v] = id
		fmt.Fprintf(&sb, "  %s[\"%s\"]\n", id, v)
	}
	for _, e := range edges {
		arrow := "-->"
		if e.ambiguous {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "  %s %s %s\n", ids[e.from], arrow, ids[e.to])
	}
	for _, v := range vertices {
		if ig.kinds[v] == kindMissing {
			fmt.Fprintf(&sb, "  style %s stroke:#f00,stroke-dasharray: 5 5\n", ids[v])
		}
	}
	return sb.String(), nil
}
