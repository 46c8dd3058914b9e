package testutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile_FromCallersTestdata(t *testing.T) {
	s, err := ReadFile("simple.json")
	require.NoError(t, err)
	assert.Equal(t, "{\"function\": \"main\"}\n", s)
}

func TestReadFile_Missing_ReturnsError(t *testing.T) {
	_, err := ReadFile("no-such-file.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-file.json")
	assert.Panics(t, func() { MustReadFile("no-such-file.json") })
}

func TestReadJSONFile(t *testing.T) {
	var v struct {
		Function string `json:"function"`
	}
	require.NoError(t, ReadJSONFile("simple.json", &v))
	assert.Equal(t, "main", v.Function)
}

func TestWriteTempFile(t *testing.T) {
	p := WriteTempFile(t, t.TempDir(), "a.txt", "alpha")
	assert.FileExists(t, p)
}
