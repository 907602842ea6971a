package export

import (
	"strings"
	"testing"

	"github.com/bulwarkhq/bulwark/internal/adjacency"
)

func testGraph() *adjacency.Graph {
	return &adjacency.Graph{
		Modules: []adjacency.Module{
			{ID: "src/db", Files: []string{"src/db/client.ts"}, FileCount: 1},
			{ID: "src/routes", Files: []string{"src/routes/users.ts"}, FileCount: 1, Violations: 1},
		},
		Edges: []adjacency.Edge{
			{From: "src/routes", To: "src/db",
				Imports:   []adjacency.ImportRef{{Source: "src/routes/users.ts", Target: "../db/client"}},
				Violation: true, RuleIDs: []string{"no-db-in-routes"}},
		},
	}
}

func TestDOT(t *testing.T) {
	out := DOT(testGraph())

	for _, want := range []string{
		"digraph modules {",
		`"src/db" [label="src/db\n1 files"`,
		`"src/routes" -> "src/db"`,
		"no-db-in-routes",
		"#f85149",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT output missing %q:\n%s", want, out)
		}
	}
}

func TestDOTCleanEdge(t *testing.T) {
	g := testGraph()
	g.Edges[0].Violation = false
	g.Edges[0].RuleIDs = nil

	out := DOT(g)
	if strings.Contains(out, "style=bold") {
		t.Errorf("clean edge styled as violating:\n%s", out)
	}
	if !strings.Contains(out, `label="1"`) {
		t.Errorf("clean edge should be labeled with import count:\n%s", out)
	}
}

func TestMermaid(t *testing.T) {
	out := Mermaid(testGraph())

	for _, want := range []string{
		"graph LR",
		`src_db["src/db (1 files)"]`,
		"src_routes ==>|no-db-in-routes| src_db",
		"linkStyle 0 stroke:#f85149",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Mermaid output missing %q:\n%s", want, out)
		}
	}
}
