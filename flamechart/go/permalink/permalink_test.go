package permalink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.skia.org/flamechart/flamechart/go/trace"
)

func TestID_StableAndValid(t *testing.T) {
	tree := &trace.VisualNode{Name: "main", Value: 3}
	id, b, err := ID(tree)
	require.NoError(t, err)
	assert.True(t, ValidID(id))
	assert.Equal(t, `{"name":"main","value":3}`, string(b))

	again, _, err := ID(&trace.VisualNode{Name: "main", Value: 3})
	require.NoError(t, err)
	assert.Equal(t, id, again)

	other, _, err := ID(&trace.VisualNode{Name: "main", Value: 4})
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestID_Nil_Error(t *testing.T) {
	_, _, err := ID(nil)
	assert.Error(t, err)
}

func TestValidID(t *testing.T) {
	assert.False(t, ValidID(""))
	assert.False(t, ValidID("../etc/passwd"))
	assert.False(t, ValidID("0123456789ABCDEF0123456789abcdef"))
	assert.True(t, ValidID("0123456789abcdef0123456789abcdef"))
}

func TestDecode(t *testing.T) {
	tree, err := Decode("x", []byte(`{"name":"a","value":1}`))
	require.NoError(t, err)
	assert.Equal(t, &trace.VisualNode{Name: "a", Value: 1}, tree)

	_, err = Decode("x", []byte(`null`))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Decode("x", []byte(`{`))
	assert.ErrorIs(t, err, trace.ErrInvalidJSON)
}
