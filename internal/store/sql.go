package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/thep200/git2neo/internal/model"
	"github.com/thep200/git2neo/pkg/db"
	"github.com/thep200/git2neo/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore keeps the graph in two relational tables through gorm.
type SQLStore struct {
	Logger log.Logger
	db     *gorm.DB
}

func NewSQLStore(logger log.Logger, mysql *db.Mysql) (*SQLStore, error) {
	gdb, err := mysql.Db()
	if err != nil {
		return nil, err
	}
	if err := mysql.Migrate(&model.GraphNode{}, &model.GraphEdge{}); err != nil {
		return nil, fmt.Errorf("failed to migrate graph tables: %w", err)
	}
	return NewSQLStoreWithDB(logger, gdb), nil
}

// NewSQLStoreWithDB wraps an already migrated connection.
func NewSQLStoreWithDB(logger log.Logger, gdb *gorm.DB) *SQLStore {
	return &SQLStore{
		Logger: logger,
		db:     gdb,
	}
}

func (s *SQLStore) UpsertNode(ctx context.Context, label model.Label, key string, attrs map[string]any) (NodeRef, bool, error) {
	if err := label.Validate(); err != nil {
		return NodeRef{}, false, err
	}
	if key == "" {
		return NodeRef{}, false, fmt.Errorf("empty %s identity", label)
	}

	row := &model.GraphNode{
		Label:      string(label),
		Identity:   key,
		Attributes: copyAttrs(attrs),
	}

	// Unique (label, identity) index turns this into an atomic insert-if-absent
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if result.Error != nil {
		return NodeRef{}, false, fmt.Errorf("failed to upsert %s %q: %w", label, key, result.Error)
	}
	return NodeRef{Label: label, Key: key}, result.RowsAffected > 0, nil
}

func (s *SQLStore) NodeExists(ctx context.Context, label model.Label, key string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.GraphNode{}).
		Where("label = ? AND identity = ?", string(label), key).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up %s %q: %w", label, key, err)
	}
	return count > 0, nil
}

func (s *SQLStore) FindNode(ctx context.Context, label model.Label, key string) (NodeRef, error) {
	row := &model.GraphNode{}
	err := s.db.WithContext(ctx).
		Where("label = ? AND identity = ?", string(label), key).
		Take(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NodeRef{}, fmt.Errorf("%s %q: %w", label, key, ErrNodeNotFound)
	}
	if err != nil {
		return NodeRef{}, fmt.Errorf("failed to look up %s %q: %w", label, key, err)
	}
	return NodeRef{Label: label, Key: key}, nil
}

func (s *SQLStore) CreateEdge(ctx context.Context, kind model.EdgeKind, from, to NodeRef, attrs map[string]any) error {
	if err := validateEdge(kind, from, to); err != nil {
		return err
	}

	row := &model.GraphEdge{
		Kind:       string(kind),
		FromLabel:  string(from.Label),
		FromKey:    from.Key,
		ToLabel:    string(to.Label),
		ToKey:      to.Key,
		Attributes: copyAttrs(attrs),
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create %s edge: %w", kind, err)
	}
	return nil
}

func (s *SQLStore) TopKByEdgeCount(ctx context.Context, label model.Label, kind model.EdgeKind, k int) ([]RankedNode, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	labelCol, keyCol := "to_label", "to_key"
	if kind.CountsOutgoing(label) {
		labelCol, keyCol = "from_label", "from_key"
	}

	var rows []struct {
		Identity string
		Counted  int
	}
	query := s.db.WithContext(ctx).Model(&model.GraphEdge{}).
		Select(keyCol+" AS identity, COUNT(*) AS counted").
		Where("kind = ? AND "+labelCol+" = ?", string(kind), string(label)).
		Group(keyCol).
		Order("counted DESC, identity ASC")
	if k > 0 {
		query = query.Limit(k)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to rank %s by %s: %w", label, kind, err)
	}

	ranked := make([]RankedNode, 0, len(rows))
	for _, r := range rows {
		ranked = append(ranked, RankedNode{Key: r.Identity, Count: r.Counted})
	}
	return ranked, nil
}

func (s *SQLStore) AllIdentities(ctx context.Context, label model.Label) (map[string]struct{}, error) {
	var keys []string
	err := s.db.WithContext(ctx).Model(&model.GraphNode{}).
		Where("label = ?", string(label)).
		Pluck("identity", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", label, err)
	}

	ids := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		ids[k] = struct{}{}
	}
	return ids, nil
}

func (s *SQLStore) Reset(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&model.GraphEdge{}).Error; err != nil {
			return fmt.Errorf("failed to clear edges: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&model.GraphNode{}).Error; err != nil {
			return fmt.Errorf("failed to clear nodes: %w", err)
		}
		return nil
	})
}
