package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bulwarkhq/bulwark/internal/adjacency"
	"github.com/bulwarkhq/bulwark/internal/config"
	"github.com/bulwarkhq/bulwark/internal/export"
	"github.com/bulwarkhq/bulwark/internal/observability"
	"github.com/bulwarkhq/bulwark/internal/rules"
	"github.com/bulwarkhq/bulwark/internal/scan"
)

func newGraphCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Build the module adjacency graph and print it as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRoot(args)
			if err != nil {
				return err
			}
			graph, err := buildGraph(cmd.Context(), app, root)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(graph)
		},
	}
	return cmd
}

func newExportCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export {dot|mermaid|neo4j} [path]",
		Short: "Export the module graph for external tooling",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := args[0]
			root, err := projectRoot(args[1:])
			if err != nil {
				return err
			}
			graph, err := buildGraph(cmd.Context(), app, root)
			if err != nil {
				return err
			}

			switch format {
			case "dot":
				fmt.Print(export.DOT(graph))
				return nil
			case "mermaid":
				fmt.Print(export.Mermaid(graph))
				return nil
			case "neo4j":
				return exportNeo4j(cmd.Context(), app, graph)
			default:
				return fmt.Errorf("unknown export format: %s (want dot, mermaid, or neo4j)", format)
			}
		},
	}
	return cmd
}

func exportNeo4j(ctx context.Context, app *appContext, graph *adjacency.Graph) error {
	gc := app.cfg.Graph
	if gc.URI == "" {
		return fmt.Errorf("graph.uri is not configured (set it in bulwark.yaml or BULWARK_GRAPH_URI)")
	}
	loader, err := export.NewNeo4jLoader(gc.URI, gc.Username, gc.Password, app.log)
	if err != nil {
		return err
	}
	defer loader.Close(ctx)

	if err := loader.CleanGraph(ctx); err != nil {
		return fmt.Errorf("clean graph: %w", err)
	}
	if err := loader.CreateIndexes(ctx); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	if err := loader.Load(ctx, graph); err != nil {
		return err
	}
	app.log.Info("graph exported to neo4j",
		"modules", len(graph.Modules), "edges", len(graph.Edges))
	return nil
}

// buildGraph scans the project (when invariants exist) and assembles the
// adjacency graph, cross-referencing boundary violations onto edges.
func buildGraph(ctx context.Context, app *appContext, root string) (*adjacency.Graph, error) {
	ctx, span := observability.StartSpan(ctx, "bulwark.graph")
	defer span.End()

	files, err := scan.FindSourceFiles(root)
	if err != nil {
		return nil, fmt.Errorf("discover source files: %w", err)
	}

	var violations []rules.Violation
	if invariants, err := config.LoadInvariants(root); err == nil {
		scanner := scan.New(root, app.log)
		result, err := scanner.Scan(ctx, "", files, invariants)
		if err != nil {
			return nil, err
		}
		violations = result.Violations
	}

	entries := adjacency.BuildEntries(root, files)
	graph := adjacency.Build(entries, violations)

	violatingEdges := 0
	for _, e := range graph.Edges {
		if e.Violation {
			violatingEdges++
		}
	}
	observability.RecordGraphResult(span, len(graph.Modules), len(graph.Edges), violatingEdges)
	return graph, nil
}
