package util

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithReadFile_PassesContents(t *testing.T) {
	p := filepath.Join(t.TempDir(), "trace.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"function":"main"}`), 0644))

	var got []byte
	err := WithReadFile(p, func(f io.Reader) error {
		var err error
		got, err = io.ReadAll(f)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, `{"function":"main"}`, string(got))
}

func TestWithReadFile_MissingFile_ReturnsError(t *testing.T) {
	err := WithReadFile(filepath.Join(t.TempDir(), "missing"), func(f io.Reader) error {
		return nil
	})
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestAddParams_MergesLaterOverEarlier(t *testing.T) {
	got := AddParams(map[string]string{"a": "1"}, map[string]string{"a": "2", "b": "3"}, nil)
	assert.Equal(t, map[string]string{"a": "2", "b": "3"}, got)
}

func TestCopyStringMap_IsIndependent(t *testing.T) {
	src := map[string]string{"channel": "paste"}
	cp := CopyStringMap(src)
	cp["channel"] = "drop"
	assert.Equal(t, "paste", src["channel"])
}
