// Package permalinktest has common code for tests of implementations of
// permalink.Store.
package permalinktest

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.skia.org/flamechart/flamechart/go/permalink"
	"go.skia.org/flamechart/flamechart/go/trace"
)

func testTree() *trace.VisualNode {
	return &trace.VisualNode{
		Name:    "main",
		Value:   10,
		Tooltip: "10.00ms main",
		Children: []*trace.VisualNode{
			{Name: "foo", Value: 4.5, Tooltip: "4.50ms foo"},
		},
	}
}

// InsertGet does the core testing of an instance of permalink.Store.
func InsertGet(t *testing.T, store permalink.Store) {
	ctx := context.Background()
	id, err := store.Insert(ctx, testTree())
	require.NoError(t, err)
	assert.True(t, permalink.ValidID(id))

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(testTree(), got))
}

// InsertTwice tests that the same tree always gets the same id.
func InsertTwice(t *testing.T, store permalink.Store) {
	ctx := context.Background()
	id1, err := store.Insert(ctx, testTree())
	require.NoError(t, err)
	id2, err := store.Insert(ctx, testTree())
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

// GetNonExistent tests that we fail when retrieving an unknown id.
func GetNonExistent(t *testing.T, store permalink.Store) {
	_, err := store.Get(context.Background(), "00000000000000000000000000000000")
	require.Error(t, err)
	assert.ErrorIs(t, err, permalink.ErrNotFound)
}

// InsertNil tests that an empty tree can't be stored.
func InsertNil(t *testing.T, store permalink.Store) {
	_, err := store.Insert(context.Background(), nil)
	require.Error(t, err)
}

// SubTestFunction is a func we will call to test one aspect of an
// implementation of permalink.Store.
type SubTestFunction func(t *testing.T, store permalink.Store)

// SubTests are all the subtests we have for permalink.Store.
var SubTests = map[string]SubTestFunction{
	"Permalink_InsertGet":      InsertGet,
	"Permalink_InsertTwice":    InsertTwice,
	"Permalink_GetNonExistent": GetNonExistent,
	"Permalink_InsertNil":      InsertNil,
}
