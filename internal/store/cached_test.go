package store

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/git2neo/cfg"
	"github.com/thep200/git2neo/internal/model"
	"github.com/thep200/git2neo/pkg/log"
)

type countingStore struct {
	Store
	upserts, lookups int
}

func (s *countingStore) UpsertNode(ctx context.Context, label model.Label, key string, attrs map[string]any) (NodeRef, bool, error) {
	s.upserts++
	return s.Store.UpsertNode(ctx, label, key, attrs)
}

func (s *countingStore) FindNode(ctx context.Context, label model.Label, key string) (NodeRef, error) {
	s.lookups++
	return s.Store.FindNode(ctx, label, key)
}

func TestCachedStoreSkipsKnownIdentities(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: NewMemoryStore()}
	s, err := NewCachedStore(inner, 16)
	require.NoError(t, err)

	_, created, err := s.UpsertNode(ctx, model.LabelPerson, "alice", nil)
	require.NoError(t, err)
	assert.True(t, created)
	_, created, err = s.UpsertNode(ctx, model.LabelPerson, "alice", nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, inner.upserts)

	_, err = s.FindNode(ctx, model.LabelPerson, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, inner.lookups)

	_, err = s.FindNode(ctx, model.LabelPerson, "bob")
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Equal(t, 1, inner.lookups)
}

func TestCachedStoreResetPurges(t *testing.T) {
	ctx := context.Background()
	s, err := NewCachedStore(NewMemoryStore(), 16)
	require.NoError(t, err)

	_, _, _ = s.UpsertNode(ctx, model.LabelRepo, "lib", nil)
	require.NoError(t, s.Reset(ctx))

	ok, err := s.NodeExists(ctx, model.LabelRepo, "lib")
	require.NoError(t, err)
	assert.False(t, ok)

	_, created, _ := s.UpsertNode(ctx, model.LabelRepo, "lib", nil)
	assert.True(t, created)
}

func TestFactoryStore(t *testing.T) {
	logger, _ := log.NewCslLoggerWithWriter(io.Discard, false)
	loader, _ := cfg.NewMockLoader()
	config, _ := loader.Load()

	s, closeFn, err := FactoryStore(context.Background(), logger, config)
	require.NoError(t, err)
	assert.IsType(t, &CachedStore{}, s)
	assert.NoError(t, closeFn())

	config.Store.Driver = "cassandra"
	_, _, err = FactoryStore(context.Background(), logger, config)
	assert.Error(t, err)
}
