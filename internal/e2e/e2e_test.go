// Package e2e runs the full pipeline against a fixture project: load
// invariants, scan, build the adjacency graph, infer rules, and record
// history, checking that the stages agree with each other.
package e2e

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bulwarkhq/bulwark/internal/adjacency"
	"github.com/bulwarkhq/bulwark/internal/config"
	"github.com/bulwarkhq/bulwark/internal/history"
	"github.com/bulwarkhq/bulwark/internal/infer"
	"github.com/bulwarkhq/bulwark/internal/scan"
)

const invariantsYAML = `invariants:
  - id: no-db-in-routes
    type: boundary
    severity: error
    description: Route handlers must go through the service layer
    source_glob: "src/routes/**"
    forbidden_imports:
      - "src/db/**"
`

// fixtureProject writes a small TypeScript project where the routes
// layer imports the db layer directly, violating the declared boundary.
func fixtureProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		".bulwark/invariants.yml": invariantsYAML,
		"src/routes/users.ts":     `import { db } from "../db/client";` + "\n" + `import { render } from "./render";` + "\n",
		"src/routes/orders.ts":    `import { db } from "../db/client";` + "\n",
		"src/routes/render.ts":    "export function render(data: unknown): string { return JSON.stringify(data); }\n",
		"src/db/client.ts":        `import { pool } from "./pool";` + "\n",
		"src/db/pool.ts":          "export const pool = {};\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestPipeline(t *testing.T) {
	root := fixtureProject(t)
	ctx := context.Background()

	invariants, err := config.LoadInvariants(root)
	if err != nil {
		t.Fatalf("LoadInvariants: %v", err)
	}
	if len(invariants) != 1 {
		t.Fatalf("got %d invariants, want 1", len(invariants))
	}

	files, err := scan.FindSourceFiles(root)
	if err != nil {
		t.Fatalf("FindSourceFiles: %v", err)
	}
	if len(files) != 5 {
		t.Fatalf("got %d source files, want 5: %v", len(files), files)
	}

	scanner := scan.New(root, nil)
	result, err := scanner.Scan(ctx, "", files, invariants)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Stats.Total != 2 || result.Stats.Errors != 2 {
		t.Fatalf("stats = %+v, want 2 total, 2 errors", result.Stats)
	}
	for _, v := range result.Violations {
		if v.Rule != "no-db-in-routes" {
			t.Errorf("unexpected rule %q on violation %+v", v.Rule, v)
		}
		if !strings.HasPrefix(v.File, "src/routes/") {
			t.Errorf("violation outside routes layer: %+v", v)
		}
	}

	entries := adjacency.BuildEntries(root, files)
	graph := adjacency.Build(entries, result.Violations)

	if len(graph.Modules) != 2 {
		t.Fatalf("got %d modules, want 2: %+v", len(graph.Modules), graph.Modules)
	}
	if len(graph.Edges) != 1 {
		t.Fatalf("got %d edges, want 1: %+v", len(graph.Edges), graph.Edges)
	}
	edge := graph.Edges[0]
	if edge.From != "src/routes" || edge.To != "src/db" {
		t.Fatalf("edge = %s -> %s, want src/routes -> src/db", edge.From, edge.To)
	}
	if len(edge.Imports) != 2 {
		t.Errorf("edge carries %d imports, want 2", len(edge.Imports))
	}
	if !edge.Violation {
		t.Error("expected edge to be flagged as violating")
	}
	if len(edge.RuleIDs) != 1 || edge.RuleIDs[0] != "no-db-in-routes" {
		t.Errorf("edge.RuleIDs = %v, want [no-db-in-routes]", edge.RuleIDs)
	}

	proposals := infer.NewEngine(infer.DefaultMinConfidence, nil).Infer(graph)
	var found bool
	for _, p := range proposals {
		if p.ID == "inferred-src-db-no-import-src-routes" {
			found = true
			if !p.Inferred {
				t.Error("proposal not marked inferred")
			}
			if p.Confidence != 100 {
				t.Errorf("confidence = %v, want 100", p.Confidence)
			}
		}
	}
	if !found {
		t.Fatalf("expected directionality proposal, got %+v", proposals)
	}

	yaml := infer.RenderYAML(proposals, infer.DefaultMinConfidence)
	if !strings.Contains(yaml, "inferred-src-db-no-import-src-routes") {
		t.Errorf("rendered YAML missing proposal id:\n%s", yaml)
	}

	log := history.NewLog(filepath.Join(root, ".bulwark"), nil)
	if err := log.Append(history.BuildEntry(ctx, result, root)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	recorded, err := log.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(recorded) != 1 {
		t.Fatalf("got %d history entries, want 1", len(recorded))
	}
	if recorded[0].ComplianceScore != 60.0 {
		t.Errorf("compliance = %v, want 60.0", recorded[0].ComplianceScore)
	}
	if recorded[0].FilesChecked != 5 {
		t.Errorf("files checked = %d, want 5", recorded[0].FilesChecked)
	}
}

func TestPipelineCleanProject(t *testing.T) {
	root := fixtureProject(t)
	ctx := context.Background()

	// Remove the offending imports so the boundary holds.
	for _, rel := range []string{"src/routes/users.ts", "src/routes/orders.ts"} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.WriteFile(path, []byte(`import { render } from "./render";`+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	invariants, err := config.LoadInvariants(root)
	if err != nil {
		t.Fatalf("LoadInvariants: %v", err)
	}
	files, err := scan.FindSourceFiles(root)
	if err != nil {
		t.Fatalf("FindSourceFiles: %v", err)
	}

	result, err := scan.New(root, nil).Scan(ctx, "", files, invariants)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Stats.Total != 0 {
		t.Fatalf("expected clean scan, got %+v", result.Violations)
	}

	entry := history.BuildEntry(ctx, result, root)
	if entry.ComplianceScore != 100 {
		t.Errorf("compliance = %v, want 100", entry.ComplianceScore)
	}

	graph := adjacency.Build(adjacency.BuildEntries(root, files), result.Violations)
	for _, e := range graph.Edges {
		if e.Violation {
			t.Errorf("unexpected violating edge %+v", e)
		}
	}
}
