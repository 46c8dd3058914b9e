package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.skia.org/flamechart/flamechart/go/permalink"
	"go.skia.org/flamechart/flamechart/go/permalink/permalinktest"
	"go.skia.org/flamechart/flamechart/go/trace"
)

func TestMemStore(t *testing.T) {
	for name, subTest := range permalinktest.SubTests {
		t.Run(name, func(t *testing.T) {
			store, err := New(10)
			require.NoError(t, err)
			subTest(t, store)
		})
	}
}

func TestNew_InvalidSize_Error(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)
}

func TestInsert_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	store, err := New(1)
	require.NoError(t, err)

	first, err := store.Insert(ctx, &trace.VisualNode{Name: "a"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, &trace.VisualNode{Name: "b"})
	require.NoError(t, err)

	assert.Equal(t, 1, store.Len())
	_, err = store.Get(ctx, first)
	assert.ErrorIs(t, err, permalink.ErrNotFound)
}
