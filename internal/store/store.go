// Package store persists the crawled graph. Node upserts are idempotent per
// (label, identity) and keep the first attributes written; edges are always
// inserted, never deduplicated.
package store

import (
	"context"
	"errors"

	"github.com/thep200/git2neo/internal/model"
)

var ErrNodeNotFound = errors.New("node not found")

// NodeRef identifies a stored node.
type NodeRef struct {
	Label model.Label
	Key   string
}

// RankedNode is a node with the number of edges counted for it.
type RankedNode struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type Store interface {
	// UpsertNode creates the node if absent. created is false when the identity
	// already existed, in which case attrs are ignored.
	UpsertNode(ctx context.Context, label model.Label, key string, attrs map[string]any) (ref NodeRef, created bool, err error)
	NodeExists(ctx context.Context, label model.Label, key string) (bool, error)
	// FindNode returns ErrNodeNotFound when absent.
	FindNode(ctx context.Context, label model.Label, key string) (NodeRef, error)
	CreateEdge(ctx context.Context, kind model.EdgeKind, from, to NodeRef, attrs map[string]any) error
	// TopKByEdgeCount ranks nodes of label by their number of kind edges, most
	// first, ties by key. k <= 0 returns every node with at least one edge.
	TopKByEdgeCount(ctx context.Context, label model.Label, kind model.EdgeKind, k int) ([]RankedNode, error)
	AllIdentities(ctx context.Context, label model.Label) (map[string]struct{}, error)
	// Reset deletes everything.
	Reset(ctx context.Context) error
}

func validateEdge(kind model.EdgeKind, from, to NodeRef) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	wantFrom, wantTo := kind.Endpoints()
	if from.Label != wantFrom || to.Label != wantTo {
		return errors.New("edge " + string(kind) + " cannot connect " + string(from.Label) + " to " + string(to.Label))
	}
	return nil
}
