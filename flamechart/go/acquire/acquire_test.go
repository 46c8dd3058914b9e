package acquire

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingFile struct{}

func (failingFile) Name() string { return "broken.json" }

func (failingFile) Open() (io.ReadCloser, error) {
	return nil, errors.New("permission denied")
}

func TestSelectFile_FirstOfMany(t *testing.T) {
	a := BytesFile("a.json", []byte("a"))
	b := BytesFile("b.json", []byte("b"))
	f, err := SelectFile([]File{a, b})
	require.NoError(t, err)
	assert.Equal(t, "a.json", f.Name())
}

func TestSelectFile_None_UploadUnavailable(t *testing.T) {
	_, err := SelectFile(nil)
	assert.ErrorIs(t, err, ErrUploadUnavailable)
}

func TestRead_LocalFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "trace.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"function":"main","time":1}`), 0644))

	in, err := Read(context.Background(), LocalFile(p), 0)
	require.NoError(t, err)
	assert.Equal(t, Input{Channel: Drop, Name: "trace.json", Text: `{"function":"main","time":1}`}, in)
}

func TestRead_OpenFails_ReadFailed(t *testing.T) {
	_, err := Read(context.Background(), failingFile{}, 0)
	assert.ErrorIs(t, err, ErrReadFailed)
	assert.Contains(t, err.Error(), "broken.json")
}

func TestRead_MissingFile_ReadFailed(t *testing.T) {
	_, err := Read(context.Background(), LocalFile(filepath.Join(t.TempDir(), "nope.json")), 0)
	assert.ErrorIs(t, err, ErrReadFailed)
}

func TestRead_TooLarge_ReadFailed(t *testing.T) {
	_, err := Read(context.Background(), BytesFile("big.json", []byte("0123456789")), 5)
	assert.ErrorIs(t, err, ErrReadFailed)

	in, err := Read(context.Background(), BytesFile("ok.json", []byte("01234")), 5)
	require.NoError(t, err)
	assert.Equal(t, "01234", in.Text)
}

func TestRead_CancelledContext_ReadFailed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Read(ctx, BytesFile("a.json", []byte("a")), 0)
	assert.ErrorIs(t, err, ErrReadFailed)
}

func TestReadAsync_DeliversOneResultThenCloses(t *testing.T) {
	ch := ReadAsync(context.Background(), BytesFile("a.json", []byte("text")), 0)
	res, ok := <-ch
	require.True(t, ok)
	require.NoError(t, res.Err)
	assert.Equal(t, "text", res.Input.Text)
	_, ok = <-ch
	assert.False(t, ok)
}

func TestReadAsync_Failure(t *testing.T) {
	res := <-ReadAsync(context.Background(), failingFile{}, 0)
	assert.ErrorIs(t, res.Err, ErrReadFailed)
}

func TestPasteText(t *testing.T) {
	assert.Equal(t, Input{Channel: Paste, Text: "x"}, PasteText("x"))
}

func TestFromURL(t *testing.T) {
	tests := map[string]struct {
		rawURL string
		want   string
		ok     bool
		err    bool
	}{
		"absent":         {rawURL: "/?other=1", ok: false},
		"nil":            {rawURL: "", ok: false},
		"double encoded": {rawURL: "/?data=%257B%2522name%2522%253A%2522a%2522%257D", want: `{"name":"a"}`, ok: true},
		"plus is kept":   {rawURL: "/?data=a%252Bb", want: "a+b", ok: true},
		"empty":          {rawURL: "/?data=", want: "", ok: true},
		"bad escape":     {rawURL: "/?data=%25zz", ok: true, err: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var u *url.URL
			if tc.rawURL != "" {
				var err error
				u, err = url.Parse(tc.rawURL)
				require.NoError(t, err)
			}
			got, ok, err := FromURL(u)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
