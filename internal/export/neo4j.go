package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/bulwarkhq/bulwark/internal/adjacency"
)

// Neo4jLoader loads a module adjacency graph into a Neo4j database using
// batch UNWIND queries.
type Neo4jLoader struct {
	driver neo4j.DriverWithContext
	log    *slog.Logger
}

// NewNeo4jLoader connects to Neo4j and returns a ready-to-use loader.
func NewNeo4jLoader(uri, user, password string, log *slog.Logger) (*Neo4jLoader, error) {
	if log == nil {
		log = slog.Default()
	}
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	return &Neo4jLoader{driver: driver, log: log}, nil
}

// Close releases the underlying Neo4j driver resources.
func (l *Neo4jLoader) Close(ctx context.Context) error {
	return l.driver.Close(ctx)
}

func (l *Neo4jLoader) runCypher(ctx context.Context, cypher string, params map[string]any) error {
	_, err := neo4j.ExecuteQuery(ctx, l.driver, cypher, params, neo4j.EagerResultTransformer)
	return err
}

// CleanGraph removes previously loaded module nodes and relationships.
func (l *Neo4jLoader) CleanGraph(ctx context.Context) error {
	l.log.Debug("cleaning existing graph data")
	queries := []string{
		"MATCH ()-[r:IMPORTS]->() DELETE r",
		"MATCH (n:Module) DETACH DELETE n",
	}
	for _, q := range queries {
		if err := l.runCypher(ctx, q, nil); err != nil {
			return err
		}
	}
	return nil
}

// CreateIndexes ensures the required Neo4j indexes exist.
func (l *Neo4jLoader) CreateIndexes(ctx context.Context) error {
	return l.runCypher(ctx,
		"CREATE INDEX module_id IF NOT EXISTS FOR (n:Module) ON (n.id)", nil)
}

// Load upserts Module nodes and IMPORTS relationships for the whole graph.
func (l *Neo4jLoader) Load(ctx context.Context, g *adjacency.Graph) error {
	l.log.Debug("loading graph", "modules", len(g.Modules), "edges", len(g.Edges))

	moduleBatch := make([]map[string]any, 0, len(g.Modules))
	for _, m := range g.Modules {
		moduleBatch = append(moduleBatch, map[string]any{
			"id":         m.ID,
			"files":      m.Files,
			"file_count": m.FileCount,
			"violations": m.Violations,
		})
	}
	if err := l.runCypher(ctx,
		`UNWIND $batch AS row
		 MERGE (n:Module {id: row.id})
		 SET n.files = row.files, n.file_count = row.file_count,
		     n.violations = row.violations`,
		map[string]any{"batch": moduleBatch},
	); err != nil {
		return fmt.Errorf("load modules: %w", err)
	}

	edgeBatch := make([]map[string]any, 0, len(g.Edges))
	for _, e := range g.Edges {
		edgeBatch = append(edgeBatch, map[string]any{
			"from":         e.From,
			"to":           e.To,
			"import_count": len(e.Imports),
			"violation":    e.Violation,
			"rule_ids":     e.RuleIDs,
		})
	}
	if err := l.runCypher(ctx,
		`UNWIND $batch AS row
		 MATCH (a:Module {id: row.from})
		 MATCH (b:Module {id: row.to})
		 MERGE (a)-[r:IMPORTS]->(b)
		 SET r.import_count = row.import_count, r.violation = row.violation,
		     r.rule_ids = row.rule_ids`,
		map[string]any{"batch": edgeBatch},
	); err != nil {
		return fmt.Errorf("load edges: %w", err)
	}
	return nil
}
