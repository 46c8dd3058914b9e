// Convenience utilities for testing.
package testutils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"reflect"
	"runtime"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

// TestingT is the subset of *testing.T used by this package.
type TestingT interface {
	require.TestingT
	Helper()
}

// AssertDeepEqual fails the test if the two objects do not pass reflect.DeepEqual.
func AssertDeepEqual(t TestingT, a, b interface{}) {
	t.Helper()
	if !reflect.DeepEqual(a, b) {
		require.FailNow(t, fmt.Sprintf("Objects do not match: \na:\n%s\n\nb:\n%s\n", spew.Sprint(a), spew.Sprint(b)))
	}
}

// TestDataDir returns the path to the caller's testdata directory, which
// is assumed to be "<path to caller dir>/testdata".
func TestDataDir() (string, error) {
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("Could not find test data dir: runtime.Caller() failed.")
	}
	for skip := 0; ; skip++ {
		_, file, _, ok := runtime.Caller(skip)
		if !ok {
			return "", fmt.Errorf("Could not find test data dir: runtime.Caller() failed.")
		}
		if file != thisFile {
			return path.Join(path.Dir(file), "testdata"), nil
		}
	}
}

func readFile(filename string) ([]byte, error) {
	dir, err := TestDataDir()
	if err != nil {
		return nil, fmt.Errorf("Could not read %s: %v", filename, err)
	}
	b, err := os.ReadFile(path.Join(dir, filename))
	if err != nil {
		return nil, fmt.Errorf("Could not read %s: %v", filename, err)
	}
	return b, nil
}

// ReadFile reads a file from the caller's testdata directory.
func ReadFile(filename string) (string, error) {
	b, err := readFile(filename)
	return string(b), err
}

// MustReadFile reads a file from the caller's testdata directory and panics on
// error.
func MustReadFile(filename string) string {
	b, err := readFile(filename)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// ReadJSONFile reads a JSON file from the caller's testdata directory into dst.
func ReadJSONFile(filename string, dst interface{}) error {
	b, err := readFile(filename)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// AssertCloses closes c and fails the test on error. Use with defer.
func AssertCloses(t TestingT, c io.Closer) {
	t.Helper()
	require.NoError(t, c.Close())
}

// WriteTempFile writes contents to a new file in dir and returns its path.
func WriteTempFile(t TestingT, dir, name, contents string) string {
	t.Helper()
	p := path.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(contents), 0644))
	return p
}
