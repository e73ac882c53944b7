package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/lumenlearn/mastery-engine/internal/domain"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
	"github.com/lumenlearn/mastery-engine/internal/platform/neo4jdb"
)

type neo4jGateway struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

// NewNeo4jGateway builds a Gateway over the shared driver. A nil client is
// allowed and yields a gateway that sees an empty graph.
func NewNeo4jGateway(client *neo4jdb.Client, baseLog *logger.Logger) Gateway {
	return &neo4jGateway{
		client: client,
		log:    baseLog.With("gateway", "ConceptGraph"),
	}
}

func (g *neo4jGateway) PathConcepts(ctx context.Context, threadID string) ([]string, error) {
	if g.client == nil {
		return nil, nil
	}

	session := g.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: g.client.Database,
	})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (t:LearningPath {thread_id: $thread_id})-[e:PATH_CONCEPT]->(c:Concept)
RETURN c.id AS id
ORDER BY e.position ASC
`, map[string]any{"thread_id": threadID})
		if err != nil {
			return nil, err
		}
		var ids []string
		for res.Next(ctx) {
			if v, ok := res.Record().Get("id"); ok {
				if s, ok := v.(string); ok && s != "" {
					ids = append(ids, s)
				}
			}
		}
		return ids, res.Err()
	})
	if err != nil {
		return nil, domain.NewError(domain.CodeDependencyUnavailable, "graph.PathConcepts", "concept graph query failed", err)
	}

	ids, _ := out.([]string)
	return ids, nil
}

func (g *neo4jGateway) ConceptCatalog(ctx context.Context) (map[string]ConceptInfo, error) {
	if g.client == nil {
		return map[string]ConceptInfo{}, nil
	}

	session := g.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: g.client.Database,
	})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (c:Concept)
RETURN c.id AS id, c.label AS label, c.aliases AS aliases
`, nil)
		if err != nil {
			return nil, err
		}
		catalog := make(map[string]ConceptInfo)
		for res.Next(ctx) {
			rec := res.Record()
			id, _ := stringField(rec, "id")
			if id == "" {
				continue
			}
			label, _ := stringField(rec, "label")
			info := ConceptInfo{Label: label}
			if v, ok := rec.Get("aliases"); ok {
				if raw, ok := v.([]any); ok {
					for _, a := range raw {
						if s, ok := a.(string); ok && s != "" {
							info.Aliases = append(info.Aliases, s)
						}
					}
				}
			}
			catalog[id] = info
		}
		return catalog, res.Err()
	})
	if err != nil {
		return nil, domain.NewError(domain.CodeDependencyUnavailable, "graph.ConceptCatalog", "concept graph query failed", err)
	}

	catalog, _ := out.(map[string]ConceptInfo)
	return catalog, nil
}

func stringField(rec *neo4j.Record, key string) (string, bool) {
	v, ok := rec.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
