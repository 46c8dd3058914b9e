package urlstate

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.skia.org/flamechart/flamechart/go/trace"
)

var treeA = &trace.VisualNode{
	Name:    "main",
	Value:   10,
	Tooltip: "10.00ms main",
	Children: []*trace.VisualNode{
		{Name: "foo & bar", Value: 4.5, Tooltip: "4.50ms foo & bar"},
		{Name: "héllo/✓ 100%", Value: 0.25},
	},
}

var treeB = &trace.VisualNode{Name: "other", Value: 1}

func mustParse(t *testing.T, s string) *url.URL {
	u, err := url.Parse(s)
	require.NoError(t, err)
	return u
}

func TestPersistRestore_RoundTrip(t *testing.T) {
	u, err := Persist(mustParse(t, "/"), treeA)
	require.NoError(t, err)

	got, err := Restore(u)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(treeA, got))

	// Survives a trip through its string form too.
	got, err = Restore(mustParse(t, u.String()))
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(treeA, got))
}

func TestPersist_DoubleEncoded(t *testing.T) {
	u, err := Persist(mustParse(t, "/"), &trace.VisualNode{Name: "a", Value: 1})
	require.NoError(t, err)
	// {"name":"a","value":1} -> encodeURIComponent -> query escape.
	assert.Equal(t, "data=%257B%2522name%2522%253A%2522a%2522%252C%2522value%2522%253A1%257D", u.RawQuery)
}

func TestPersist_KeepsOtherParams(t *testing.T) {
	u, err := Persist(mustParse(t, "/?theme=dark"), treeB)
	require.NoError(t, err)
	assert.Equal(t, "dark", u.Query().Get("theme"))
	assert.NotEmpty(t, u.Query().Get("data"))
}

func TestPersist_DropsPermalinkID(t *testing.T) {
	u, err := Persist(mustParse(t, "/?id=0123&theme=dark"), treeB)
	require.NoError(t, err)
	assert.False(t, u.Query().Has("id"))
	assert.Equal(t, "dark", u.Query().Get("theme"))

	u, err = Persist(mustParse(t, "/?id=0123&theme=dark"), nil)
	require.NoError(t, err)
	assert.Equal(t, "theme=dark", u.RawQuery)
}

func TestPersist_NilTree_RemovesParam(t *testing.T) {
	u, err := Persist(mustParse(t, "/"), treeA)
	require.NoError(t, err)
	u, err = Persist(u, nil)
	require.NoError(t, err)
	assert.Equal(t, "", u.RawQuery)

	got, err := Restore(u)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPersist_DoesNotModifyInput(t *testing.T) {
	in := mustParse(t, "/?x=1")
	_, err := Persist(in, treeB)
	require.NoError(t, err)
	assert.Equal(t, "x=1", in.RawQuery)
}

func TestRestore_Absent_NoTree(t *testing.T) {
	got, err := Restore(mustParse(t, "/?x=1"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRestore_Malformed_InvalidJSON(t *testing.T) {
	for _, raw := range []string{
		"/?data=" + url.QueryEscape(EncodeURIComponent("{not json")),
		"/?data=%25zz",
	} {
		_, err := Restore(mustParse(t, raw))
		assert.ErrorIs(t, err, trace.ErrInvalidJSON, raw)
	}
}

func TestRestore_RawProfilerJSON_NotMapped(t *testing.T) {
	raw := `{"function":"main","time":10,"children":[]}`
	got, err := Restore(mustParse(t, "/?data="+url.QueryEscape(EncodeURIComponent(raw))))
	require.NoError(t, err)
	assert.Equal(t, &trace.VisualNode{}, got)
}

func TestEncodeURIComponent(t *testing.T) {
	assert.Equal(t, "abcXYZ019-_.!~*'()", EncodeURIComponent("abcXYZ019-_.!~*'()"))
	assert.Equal(t, "%7B%22a%22%3A%201%7D", EncodeURIComponent(`{"a": 1}`))
	assert.Equal(t, "%E2%9C%93%2F%25%2B", EncodeURIComponent("✓/%+"))
	assert.False(t, strings.Contains(EncodeURIComponent("a b"), " "))
}
