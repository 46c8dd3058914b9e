// Package memcachedstore implements permalink.Store via memcached. Entries
// may be evicted by the server at any time.
package memcachedstore

import (
	"context"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"go.skia.org/flamechart/flamechart/go/permalink"
	"go.skia.org/flamechart/flamechart/go/trace"
	"go.skia.org/flamechart/go/skerr"
)

const keyPrefix = "flamechart-"

// Store implements permalink.Store.
type Store struct {
	client *memcache.Client
}

// New returns a Store talking to the given servers. The servers are pinged
// before returning.
func New(servers ...string) (*Store, error) {
	c := memcache.New(servers...)
	c.Timeout = time.Second * 5
	if err := c.Ping(); err != nil {
		return nil, skerr.Wrapf(err, "pinging memcached %v", servers)
	}
	return &Store{
		client: c,
	}, nil
}

// Insert implements permalink.Store.
func (s *Store) Insert(_ context.Context, tree *trace.VisualNode) (string, error) {
	id, b, err := permalink.ID(tree)
	if err != nil {
		return "", err
	}
	err = s.client.Add(&memcache.Item{
		Key:   keyPrefix + id,
		Value: b,
	})
	// The same tree is already stored.
	if err == memcache.ErrNotStored {
		return id, nil
	}
	if err != nil {
		return "", skerr.Wrapf(err, "Memcached failed to write")
	}
	return id, nil
}

// Get implements permalink.Store.
func (s *Store) Get(_ context.Context, id string) (*trace.VisualNode, error) {
	if !permalink.ValidID(id) {
		return nil, permalink.NotFound(id)
	}
	item, err := s.client.Get(keyPrefix + id)
	if err == memcache.ErrCacheMiss {
		return nil, permalink.NotFound(id)
	}
	if err != nil {
		return nil, skerr.Wrapf(err, "Memcached failed to get")
	}
	return permalink.Decode(id, item.Value)
}

// Confirm we implement the interface.
var _ permalink.Store = (*Store)(nil)
