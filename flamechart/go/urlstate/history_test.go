package urlstate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_PushBackForward(t *testing.T) {
	h := NewHistory(mustParse(t, "/"))
	h.Push(mustParse(t, "/?a"))
	h.Push(mustParse(t, "/?b"))
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, "/?b", h.Current().String())

	u, ok := h.Back()
	assert.True(t, ok)
	assert.Equal(t, "/?a", u.String())

	u, ok = h.Forward()
	assert.True(t, ok)
	assert.Equal(t, "/?b", u.String())

	_, ok = h.Forward()
	assert.False(t, ok)
}

func TestHistory_PushAfterBack_DropsForwardEntries(t *testing.T) {
	h := NewHistory(mustParse(t, "/"))
	h.Push(mustParse(t, "/?a"))
	h.Push(mustParse(t, "/?b"))
	h.Back()
	h.Push(mustParse(t, "/?c"))

	assert.Equal(t, 3, h.Len())
	_, ok := h.Forward()
	assert.False(t, ok)
	u, _ := h.Back()
	assert.Equal(t, "/?a", u.String())
}

func TestHistory_BackAtStart(t *testing.T) {
	h := NewHistory(nil)
	u, ok := h.Back()
	assert.False(t, ok)
	assert.Equal(t, "/", u.String())
}

func TestSynchronizer_BackAfterAThenB_RestoresA(t *testing.T) {
	s := NewSynchronizer(NewHistory(mustParse(t, "/")))
	require.NoError(t, s.Persist(treeA))
	require.NoError(t, s.Persist(treeB))

	got, err := s.Restore()
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(treeB, got))

	got, moved, err := s.Back()
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Empty(t, cmp.Diff(treeA, got))

	// Back again reaches the initial, empty page.
	got, moved, err = s.Back()
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Nil(t, got)

	_, moved, err = s.Back()
	require.NoError(t, err)
	assert.False(t, moved)

	got, moved, err = s.Forward()
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Empty(t, cmp.Diff(treeA, got))
}
