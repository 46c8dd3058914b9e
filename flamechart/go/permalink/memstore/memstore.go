// Package memstore implements permalink.Store with an in-memory LRU cache.
// Stored trees are lost on restart and the least recently used are evicted
// once the cache is full.
package memstore

import (
	"context"

	lru "github.com/hashicorp/golang-lru"

	"go.skia.org/flamechart/flamechart/go/permalink"
	"go.skia.org/flamechart/flamechart/go/trace"
	"go.skia.org/flamechart/go/skerr"
)

// Store implements permalink.Store.
type Store struct {
	cache *lru.Cache
}

// New returns a new in-memory store holding up to size trees.
func New(size int) (*Store, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, skerr.Wrapf(err, "failed to create local cache of size: %d", size)
	}
	return &Store{
		cache: c,
	}, nil
}

// Insert implements permalink.Store.
func (s *Store) Insert(_ context.Context, tree *trace.VisualNode) (string, error) {
	id, b, err := permalink.ID(tree)
	if err != nil {
		return "", err
	}
	_ = s.cache.Add(id, b)
	return id, nil
}

// Get implements permalink.Store.
func (s *Store) Get(_ context.Context, id string) (*trace.VisualNode, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, permalink.NotFound(id)
	}
	return permalink.Decode(id, v.([]byte))
}

// Len is the number of stored trees.
func (s *Store) Len() int {
	return s.cache.Len()
}

// Confirm we implement the interface.
var _ permalink.Store = (*Store)(nil)
