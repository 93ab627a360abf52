package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/thep200/git2neo/internal/model"
	"github.com/thep200/git2neo/pkg/db"
	"github.com/thep200/git2neo/pkg/log"
)

// Neo4jStore keeps Repo and Person nodes in Neo4j. Labels and relationship
// types come from closed sets in package model, so they are safe to format into
// Cypher; every value goes through parameters.
type Neo4jStore struct {
	Logger log.Logger
	Neo4j  *db.Neo4j
}

func NewNeo4jStore(logger log.Logger, neo *db.Neo4j) (*Neo4jStore, error) {
	return &Neo4jStore{
		Logger: logger,
		Neo4j:  neo,
	}, nil
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) (neo4j.SessionWithContext, error) {
	driver, err := s.Neo4j.Driver(ctx)
	if err != nil {
		return nil, err
	}
	return driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.Neo4j.Database(),
	}), nil
}

// EnsureConstraints makes identity unique per label, which also makes MERGE
// atomic under concurrent units.
func (s *Neo4jStore) EnsureConstraints(ctx context.Context) error {
	session, err := s.session(ctx, neo4j.AccessModeWrite)
	if err != nil {
		return err
	}
	defer session.Close(ctx)

	for _, label := range []model.Label{model.LabelRepo, model.LabelPerson} {
		query := fmt.Sprintf(
			"CREATE CONSTRAINT %s_%s_unique IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
			label, label.IdentityKey(), label, label.IdentityKey(),
		)
		result, err := session.Run(ctx, query, nil)
		if err != nil {
			return fmt.Errorf("failed to create constraint on %s: %w", label, err)
		}
		if _, err := result.Consume(ctx); err != nil {
			return fmt.Errorf("failed to create constraint on %s: %w", label, err)
		}
	}
	return nil
}

func (s *Neo4jStore) UpsertNode(ctx context.Context, label model.Label, key string, attrs map[string]any) (NodeRef, bool, error) {
	if err := label.Validate(); err != nil {
		return NodeRef{}, false, err
	}
	if key == "" {
		return NodeRef{}, false, fmt.Errorf("empty %s identity", label)
	}

	session, err := s.session(ctx, neo4j.AccessModeWrite)
	if err != nil {
		return NodeRef{}, false, err
	}
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MERGE (n:%s {%s: $key})
		ON CREATE SET n += $attrs
	`, label, label.IdentityKey())

	result, err := session.Run(ctx, query, map[string]interface{}{
		"key":   key,
		"attrs": attrs,
	})
	if err != nil {
		return NodeRef{}, false, fmt.Errorf("failed to upsert %s %q: %w", label, key, err)
	}
	summary, err := result.Consume(ctx)
	if err != nil {
		return NodeRef{}, false, fmt.Errorf("failed to upsert %s %q: %w", label, key, err)
	}

	return NodeRef{Label: label, Key: key}, summary.Counters().NodesCreated() > 0, nil
}

func (s *Neo4jStore) NodeExists(ctx context.Context, label model.Label, key string) (bool, error) {
	if err := label.Validate(); err != nil {
		return false, err
	}

	session, err := s.session(ctx, neo4j.AccessModeRead)
	if err != nil {
		return false, err
	}
	defer session.Close(ctx)

	query := fmt.Sprintf("MATCH (n:%s {%s: $key}) RETURN count(n) AS c", label, label.IdentityKey())
	result, err := session.Run(ctx, query, map[string]interface{}{"key": key})
	if err != nil {
		return false, fmt.Errorf("failed to look up %s %q: %w", label, key, err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to look up %s %q: %w", label, key, err)
	}
	return getIntFromRecord(record, "c") > 0, nil
}

func (s *Neo4jStore) FindNode(ctx context.Context, label model.Label, key string) (NodeRef, error) {
	ok, err := s.NodeExists(ctx, label, key)
	if err != nil {
		return NodeRef{}, err
	}
	if !ok {
		return NodeRef{}, fmt.Errorf("%s %q: %w", label, key, ErrNodeNotFound)
	}
	return NodeRef{Label: label, Key: key}, nil
}

func (s *Neo4jStore) CreateEdge(ctx context.Context, kind model.EdgeKind, from, to NodeRef, attrs map[string]any) error {
	if err := validateEdge(kind, from, to); err != nil {
		return err
	}

	session, err := s.session(ctx, neo4j.AccessModeWrite)
	if err != nil {
		return err
	}
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (a:%s {%s: $from})
		MATCH (b:%s {%s: $to})
		CREATE (a)-[r:%s]->(b)
		SET r += $attrs
		RETURN count(r) AS c
	`, from.Label, from.Label.IdentityKey(), to.Label, to.Label.IdentityKey(), kind)

	result, err := session.Run(ctx, query, map[string]interface{}{
		"from":  from.Key,
		"to":    to.Key,
		"attrs": attrs,
	})
	if err != nil {
		return fmt.Errorf("failed to create %s edge: %w", kind, err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return fmt.Errorf("failed to create %s edge: %w", kind, err)
	}
	if getIntFromRecord(record, "c") == 0 {
		return fmt.Errorf("%s edge %s -> %s: %w", kind, from.Key, to.Key, ErrNodeNotFound)
	}
	return nil
}

func (s *Neo4jStore) TopKByEdgeCount(ctx context.Context, label model.Label, kind model.EdgeKind, k int) ([]RankedNode, error) {
	if err := label.Validate(); err != nil {
		return nil, err
	}
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	session, err := s.session(ctx, neo4j.AccessModeRead)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	pattern := fmt.Sprintf("(n:%s)-[s:%s]->()", label, kind)
	if !kind.CountsOutgoing(label) {
		pattern = fmt.Sprintf("()-[s:%s]->(n:%s)", kind, label)
	}
	query := fmt.Sprintf(`
		MATCH %s
		WITH n, count(s) AS counted
		ORDER BY counted DESC, n.%s ASC
		RETURN n.%s AS key, counted
	`, pattern, label.IdentityKey(), label.IdentityKey())
	params := map[string]interface{}{}
	if k > 0 {
		query += " LIMIT $limit"
		params["limit"] = k
	}

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to rank %s by %s: %w", label, kind, err)
	}

	ranked := make([]RankedNode, 0)
	for result.Next(ctx) {
		record := result.Record()
		ranked = append(ranked, RankedNode{
			Key:   getStringFromRecord(record, "key"),
			Count: getIntFromRecord(record, "counted"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to rank %s by %s: %w", label, kind, err)
	}
	return ranked, nil
}

func (s *Neo4jStore) AllIdentities(ctx context.Context, label model.Label) (map[string]struct{}, error) {
	if err := label.Validate(); err != nil {
		return nil, err
	}

	session, err := s.session(ctx, neo4j.AccessModeRead)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	query := fmt.Sprintf("MATCH (n:%s) RETURN n.%s AS key", label, label.IdentityKey())
	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", label, err)
	}

	ids := make(map[string]struct{})
	for result.Next(ctx) {
		ids[getStringFromRecord(result.Record(), "key")] = struct{}{}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", label, err)
	}
	return ids, nil
}

func (s *Neo4jStore) Reset(ctx context.Context) error {
	session, err := s.session(ctx, neo4j.AccessModeWrite)
	if err != nil {
		return err
	}
	defer session.Close(ctx)

	// Auto-commit query so large graphs are deleted in batches
	result, err := session.Run(ctx, `
		MATCH (n)
		CALL { WITH n DETACH DELETE n } IN TRANSACTIONS OF 10000 ROWS
	`, nil)
	if err != nil {
		return fmt.Errorf("failed to reset graph: %w", err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return fmt.Errorf("failed to reset graph: %w", err)
	}
	s.Logger.Warn(ctx, "Graph database %s cleared", s.Neo4j.Database())
	return nil
}

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getIntFromRecord(record *neo4j.Record, key string) int {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return int(i)
	}
	if i, ok := val.(int); ok {
		return i
	}
	return 0
}
