package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/thep200/git2neo/internal/model"
)

type memNode struct {
	attrs map[string]any
}

// MemoryEdge is an edge held by MemoryStore.
type MemoryEdge struct {
	Kind  model.EdgeKind
	From  NodeRef
	To    NodeRef
	Attrs map[string]any
}

// MemoryStore keeps the graph in process memory. It backs dry runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	nodes map[model.Label]map[string]*memNode
	edges []MemoryEdge
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: make(map[model.Label]map[string]*memNode),
	}
}

func (s *MemoryStore) UpsertNode(ctx context.Context, label model.Label, key string, attrs map[string]any) (NodeRef, bool, error) {
	if err := label.Validate(); err != nil {
		return NodeRef{}, false, err
	}
	if key == "" {
		return NodeRef{}, false, fmt.Errorf("empty %s identity", label)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ref := NodeRef{Label: label, Key: key}
	byKey, ok := s.nodes[label]
	if !ok {
		byKey = make(map[string]*memNode)
		s.nodes[label] = byKey
	}
	if _, exists := byKey[key]; exists {
		return ref, false, nil
	}
	byKey[key] = &memNode{attrs: copyAttrs(attrs)}
	return ref, true, nil
}

func (s *MemoryStore) NodeExists(ctx context.Context, label model.Label, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[label][key]
	return ok, nil
}

func (s *MemoryStore) FindNode(ctx context.Context, label model.Label, key string) (NodeRef, error) {
	ok, _ := s.NodeExists(ctx, label, key)
	if !ok {
		return NodeRef{}, fmt.Errorf("%s %q: %w", label, key, ErrNodeNotFound)
	}
	return NodeRef{Label: label, Key: key}, nil
}

func (s *MemoryStore) CreateEdge(ctx context.Context, kind model.EdgeKind, from, to NodeRef, attrs map[string]any) error {
	if err := validateEdge(kind, from, to); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[from.Label][from.Key]; !ok {
		return fmt.Errorf("%s %q: %w", from.Label, from.Key, ErrNodeNotFound)
	}
	if _, ok := s.nodes[to.Label][to.Key]; !ok {
		return fmt.Errorf("%s %q: %w", to.Label, to.Key, ErrNodeNotFound)
	}
	s.edges = append(s.edges, MemoryEdge{Kind: kind, From: from, To: to, Attrs: copyAttrs(attrs)})
	return nil
}

func (s *MemoryStore) TopKByEdgeCount(ctx context.Context, label model.Label, kind model.EdgeKind, k int) ([]RankedNode, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	outgoing := kind.CountsOutgoing(label)

	s.mu.RLock()
	counts := make(map[string]int)
	for _, e := range s.edges {
		if e.Kind != kind {
			continue
		}
		end := e.To
		if outgoing {
			end = e.From
		}
		if end.Label == label {
			counts[end.Key]++
		}
	}
	s.mu.RUnlock()

	return rank(counts, k), nil
}

func (s *MemoryStore) AllIdentities(ctx context.Context, label model.Label) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make(map[string]struct{}, len(s.nodes[label]))
	for key := range s.nodes[label] {
		ids[key] = struct{}{}
	}
	return ids, nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = make(map[model.Label]map[string]*memNode)
	s.edges = nil
	return nil
}

// Attributes returns a copy of a node's attributes.
func (s *MemoryStore) Attributes(label model.Label, key string) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[label][key]
	if !ok {
		return nil, false
	}
	return copyAttrs(n.attrs), true
}

// Edges returns a snapshot of every edge of kind, in insertion order.
func (s *MemoryStore) Edges(kind model.EdgeKind) []MemoryEdge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MemoryEdge, 0)
	for _, e := range s.edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// CountNodes returns the number of nodes with label.
func (s *MemoryStore) CountNodes(label model.Label) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes[label])
}

func copyAttrs(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

func rank(counts map[string]int, k int) []RankedNode {
	ranked := make([]RankedNode, 0, len(counts))
	for key, c := range counts {
		ranked = append(ranked, RankedNode{Key: key, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Key < ranked[j].Key
	})
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
