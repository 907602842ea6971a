// Package export renders a module adjacency graph for external consumers:
// Graphviz DOT, Mermaid, or a Neo4j database.
package export

import (
	"fmt"
	"strings"

	"github.com/bulwarkhq/bulwark/internal/adjacency"
)

// DOT generates a Graphviz DOT representation of the graph. Edges carrying
// boundary violations are drawn bold red with their rule ids as the label.
func DOT(g *adjacency.Graph) string {
	var b strings.Builder
	b.WriteString("digraph modules {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [fontname=\"Helvetica\" shape=box style=filled];\n")
	b.WriteString("  edge [fontname=\"Helvetica\" fontsize=10];\n\n")

	for _, m := range g.Modules {
		color := "#238636"
		if m.Violations > 0 {
			color = "#d29922"
		}
		b.WriteString(fmt.Sprintf("  \"%s\" [label=\"%s\\n%d files\" fillcolor=\"%s\"];\n",
			m.ID, m.ID, m.FileCount, color))
	}
	b.WriteString("\n")

	for _, e := range g.Edges {
		attrs := fmt.Sprintf("label=\"%d\" color=\"#c9d1d9\"", len(e.Imports))
		if e.Violation {
			attrs = fmt.Sprintf("label=\"%s\" color=\"#f85149\" style=bold",
				strings.Join(e.RuleIDs, "\\n"))
		}
		b.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [%s];\n", e.From, e.To, attrs))
	}

	b.WriteString("}\n")
	return b.String()
}

// Mermaid generates a Mermaid flowchart of the graph.
func Mermaid(g *adjacency.Graph) string {
	var b strings.Builder
	b.WriteString("graph LR\n")

	for _, m := range g.Modules {
		b.WriteString(fmt.Sprintf("  %s[\"%s (%d files)\"]\n",
			sanitizeID(m.ID), m.ID, m.FileCount))
	}

	var violating []int
	for i, e := range g.Edges {
		arrow := "-->"
		label := fmt.Sprintf("|%d|", len(e.Imports))
		if e.Violation {
			arrow = "==>"
			label = "|" + strings.Join(e.RuleIDs, ", ") + "|"
			violating = append(violating, i)
		}
		b.WriteString(fmt.Sprintf("  %s %s%s %s\n",
			sanitizeID(e.From), arrow, label, sanitizeID(e.To)))
	}

	for _, i := range violating {
		b.WriteString(fmt.Sprintf("  linkStyle %d stroke:#f85149,stroke-width:2px\n", i))
	}
	return b.String()
}

func sanitizeID(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, s)
}
