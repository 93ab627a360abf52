package store

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/thep200/git2neo/internal/model"
)

// CachedStore remembers identities known to exist so repeated sightings skip a
// round trip. Nodes are never deleted except by Reset, which purges the cache.
type CachedStore struct {
	Store
	known *lru.Cache[NodeRef, struct{}]
}

func NewCachedStore(inner Store, size int) (*CachedStore, error) {
	if size <= 0 {
		size = 10000
	}
	cache, err := lru.New[NodeRef, struct{}](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create node cache: %w", err)
	}
	return &CachedStore{Store: inner, known: cache}, nil
}

func (s *CachedStore) UpsertNode(ctx context.Context, label model.Label, key string, attrs map[string]any) (NodeRef, bool, error) {
	ref := NodeRef{Label: label, Key: key}
	if s.known.Contains(ref) {
		return ref, false, nil
	}
	ref, created, err := s.Store.UpsertNode(ctx, label, key, attrs)
	if err != nil {
		return NodeRef{}, false, err
	}
	s.known.Add(ref, struct{}{})
	return ref, created, nil
}

func (s *CachedStore) NodeExists(ctx context.Context, label model.Label, key string) (bool, error) {
	if s.known.Contains(NodeRef{Label: label, Key: key}) {
		return true, nil
	}
	ok, err := s.Store.NodeExists(ctx, label, key)
	if err == nil && ok {
		s.known.Add(NodeRef{Label: label, Key: key}, struct{}{})
	}
	return ok, err
}

func (s *CachedStore) FindNode(ctx context.Context, label model.Label, key string) (NodeRef, error) {
	ref := NodeRef{Label: label, Key: key}
	if s.known.Contains(ref) {
		return ref, nil
	}
	ref, err := s.Store.FindNode(ctx, label, key)
	if err != nil {
		return NodeRef{}, err
	}
	s.known.Add(ref, struct{}{})
	return ref, nil
}

func (s *CachedStore) Reset(ctx context.Context) error {
	s.known.Purge()
	return s.Store.Reset(ctx)
}
