package graph

import "context"

// ConceptInfo is the catalog entry for a single graph concept. Label is
// the human-readable name; Aliases are alternate spellings maintained on
// the node for tag resolution.
type ConceptInfo struct {
	Label   string
	Aliases []string
}

// Gateway reads the concept graph. The engine never writes to the graph;
// ownership of nodes and edges stays with the curriculum pipeline.
type Gateway interface {
	// PathConcepts returns the ordered concept IDs attached to a learning
	// path thread. An unknown thread yields an empty slice, not an error.
	PathConcepts(ctx context.Context, threadID string) ([]string, error)
	// ConceptCatalog returns every concept keyed by ID.
	ConceptCatalog(ctx context.Context) (map[string]ConceptInfo, error)
}
