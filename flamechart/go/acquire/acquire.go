// Package acquire handles the ways trace text gets into the viewer: pasted
// text, a dropped or selected file, and the page URL.
package acquire

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.skia.org/flamechart/go/skerr"
	"go.skia.org/flamechart/go/util"
)

// UploadDelay is how long the page waits after the upload button is clicked
// before opening the file picker, so the button's ripple animation can run.
const UploadDelay = 200 * time.Millisecond

// DataParam is the query parameter that holds the mapped tree.
const DataParam = "data"

var (
	// ErrReadFailed is returned when a file can't be read.
	ErrReadFailed = errors.New("read failed")

	// ErrUploadUnavailable is returned when no file picker is available, or a
	// drop contained no files.
	ErrUploadUnavailable = errors.New("upload unavailable")
)

// Channel identifies how an input arrived.
type Channel string

const (
	Paste Channel = "paste"
	Drop  Channel = "drop"
	URL   Channel = "url"
)

// Input is raw profiler text received on a channel.
type Input struct {
	Channel Channel
	Name    string
	Text    string
}

// PasteText wraps pasted clipboard text.
func PasteText(text string) Input {
	return Input{Channel: Paste, Text: text}
}

// PasteSource delivers pasted text. It is subscribed to once by a view.
type PasteSource <-chan string

// File is a dropped or selected file.
type File interface {
	Name() string
	Open() (io.ReadCloser, error)
}

type bytesFile struct {
	name string
	b    []byte
}

// BytesFile returns a File backed by b.
func BytesFile(name string, b []byte) File {
	return bytesFile{name: name, b: b}
}

func (f bytesFile) Name() string { return f.name }

func (f bytesFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.b)), nil
}

type localFile string

// LocalFile returns a File backed by a path on disk.
func LocalFile(path string) File {
	return localFile(path)
}

func (f localFile) Name() string { return filepath.Base(string(f)) }

func (f localFile) Open() (io.ReadCloser, error) {
	return os.Open(string(f))
}

// SelectFile picks the file to read from a drop or a picker selection. Only
// the first file is used.
func SelectFile(files []File) (File, error) {
	if len(files) == 0 {
		return nil, skerr.Wrapf(ErrUploadUnavailable, "no files provided")
	}
	return files[0], nil
}

// Result is the outcome of reading a file.
type Result struct {
	Input Input
	Err   error
}

// Read reads the whole file. If maxBytes > 0 then files larger than maxBytes
// fail to read. Errors wrap ErrReadFailed.
func Read(ctx context.Context, f File, maxBytes int64) (Input, error) {
	rc, err := f.Open()
	if err != nil {
		return Input{}, skerr.Wrapf(ErrReadFailed, "opening %q: %s", f.Name(), err)
	}
	defer util.Close(rc)

	var r io.Reader = rc
	if maxBytes > 0 {
		r = io.LimitReader(rc, maxBytes+1)
	}
	b, err := io.ReadAll(contextReader{ctx: ctx, r: r})
	if err != nil {
		return Input{}, skerr.Wrapf(ErrReadFailed, "reading %q: %s", f.Name(), err)
	}
	if maxBytes > 0 && int64(len(b)) > maxBytes {
		return Input{}, skerr.Wrapf(ErrReadFailed, "%q is larger than %d bytes", f.Name(), maxBytes)
	}
	return Input{Channel: Drop, Name: f.Name(), Text: string(b)}, nil
}

// ReadAsync reads the file in a new goroutine. The returned channel receives
// exactly one Result and is then closed. Nothing is coalesced: callers that
// start several reads receive every result, in completion order.
func ReadAsync(ctx context.Context, f File, maxBytes int64) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		in, err := Read(ctx, f, maxBytes)
		ch <- Result{Input: in, Err: err}
	}()
	return ch
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// FromURL returns the percent-decoded value of the data parameter, and false
// if the parameter is absent. The value is mapped tree JSON, not profiler
// output.
//
// The stored value is escaped twice, once by encodeURIComponent and once by
// the query serialization, so one more unescape is needed after parsing the
// query.
func FromURL(u *url.URL) (string, bool, error) {
	if u == nil {
		return "", false, nil
	}
	values, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return "", false, skerr.Wrapf(err, "parsing query")
	}
	if _, ok := values[DataParam]; !ok {
		return "", false, nil
	}
	s, err := url.PathUnescape(values.Get(DataParam))
	if err != nil {
		return "", true, skerr.Wrapf(err, "unescaping %q", DataParam)
	}
	return s, true, nil
}
