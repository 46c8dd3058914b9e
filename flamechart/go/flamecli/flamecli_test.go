package flamecli

import (
	"bytes"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.skia.org/flamechart/flamechart/go/acquire"
	"go.skia.org/flamechart/flamechart/go/trace"
	"go.skia.org/flamechart/flamechart/go/urlstate"
	"go.skia.org/flamechart/go/testutils"
)

func traceFile(t *testing.T) string {
	dir, err := testutils.TestDataDir()
	require.NoError(t, err)
	return filepath.Join(dir, "trace.json")
}

// run executes flamecli with args and returns what it wrote to stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	out := &bytes.Buffer{}
	app := NewApp()
	app.Reader = strings.NewReader(stdin)
	app.Writer = out
	app.ErrWriter = &bytes.Buffer{}
	err := app.RunContext(t.Context(), append([]string{"flamecli"}, args...))
	return out.String(), err
}

func expectedTree(t *testing.T, tooltips bool) *trace.VisualNode {
	tree, err := trace.ParseWithOptions([]byte(testutils.MustReadFile("trace.json")), trace.Options{Tooltips: tooltips})
	require.NoError(t, err)
	return tree
}

func TestConvert_FromFile_WritesVisualTree(t *testing.T) {
	out, err := run(t, "", "convert", "--in", traceFile(t))
	require.NoError(t, err)

	got, err := trace.DecodeVisual([]byte(out))
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(expectedTree(t, true), got))
	assert.Equal(t, "12.50ms <module>", got.Tooltip)
}

func TestConvert_FromStdinWithoutTooltips(t *testing.T) {
	out, err := run(t, testutils.MustReadFile("trace.json"), "convert", "--tooltips=false")
	require.NoError(t, err)

	got, err := trace.DecodeVisual([]byte(out))
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(expectedTree(t, false), got))
	assert.NotContains(t, out, "tooltip")
}

func TestConvert_OutFlag_WritesFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "tree.json")
	out, err := run(t, "", "convert", "--in", traceFile(t), "--out", dst)
	require.NoError(t, err)
	assert.Empty(t, out)

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	got, err := trace.DecodeVisual(b)
	require.NoError(t, err)
	assert.Equal(t, "<module>", got.Name)
}

func TestConvert_InvalidInput_ReturnsMappingError(t *testing.T) {
	_, err := run(t, "{not json", "convert")
	assert.ErrorIs(t, err, trace.ErrInvalidJSON)

	_, err = run(t, `{"function": "main"}`, "convert")
	assert.ErrorIs(t, err, trace.ErrInvalidTraceShape)
}

func TestConvert_MissingFile_ReturnsReadFailed(t *testing.T) {
	_, err := run(t, "", "convert", "--in", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, acquire.ErrReadFailed)
}

func TestConvert_TooLarge_ReturnsReadFailed(t *testing.T) {
	_, err := run(t, "", "convert", "--in", traceFile(t), "--max-bytes", "10")
	assert.ErrorIs(t, err, acquire.ErrReadFailed)
}

func TestLink_RoundTripsThroughRestore(t *testing.T) {
	out, err := run(t, "", "link", "--in", traceFile(t), "--base", "https://flamechart.skia.org")
	require.NoError(t, err)
	link := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(link, "https://flamechart.skia.org/?data="), link)

	u, err := url.Parse(link)
	require.NoError(t, err)
	got, err := urlstate.Restore(u)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(expectedTree(t, true), got))

	restored, err := run(t, "", "restore", "--url", link)
	require.NoError(t, err)
	fromCLI, err := trace.DecodeVisual([]byte(restored))
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(got, fromCLI))
}

func TestLink_KeepsOtherParameters(t *testing.T) {
	out, err := run(t, "", "link", "--in", traceFile(t), "--base", "http://localhost:8000/?theme=dark")
	require.NoError(t, err)
	u, err := url.Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "dark", u.Query().Get("theme"))
	assert.NotEmpty(t, u.Query().Get("data"))
}

func TestRestore_NoData_ReturnsError(t *testing.T) {
	_, err := run(t, "", "restore", "--url", "http://localhost:8000/?theme=dark")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no data parameter")
}

func TestRestore_BrokenData_ReturnsInvalidJSON(t *testing.T) {
	_, err := run(t, "", "restore", "--url", "http://localhost:8000/?data=%257Bnope")
	assert.ErrorIs(t, err, trace.ErrInvalidJSON)
}

func TestRestore_RequiresURL(t *testing.T) {
	_, err := run(t, "", "restore")
	require.Error(t, err)
}

func TestInspect_PrintsStatsAndSelfTimes(t *testing.T) {
	out, err := run(t, "", "inspect", "--in", traceFile(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Trace: trace.json (")
	assert.Contains(t, out, "Nodes: 6\n")
	assert.Contains(t, out, "Max depth: 3\n")
	assert.Contains(t, out, "Total: 12.50ms\n")
	assert.Contains(t, out, "6.50")
	assert.Contains(t, out, "5.00")

	sleep := strings.Index(out, "sleep")
	compute := strings.Index(out, "compute")
	require.NotEqual(t, -1, sleep)
	require.NotEqual(t, -1, compute)
	assert.Less(t, sleep, compute)
}

func TestInspect_TopLimitsRows(t *testing.T) {
	out, err := run(t, "", "inspect", "--in", traceFile(t), "--top", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "sleep")
	assert.NotContains(t, out, "compute")
	assert.NotContains(t, out, "load")
}

func TestSnippet(t *testing.T) {
	out, err := run(t, "", "snippet", "--os", "linux", "--script", "app.py")
	require.NoError(t, err)
	assert.Equal(t, "python -m pyinstrument app.py --renderer json | xclip -sel clip\n", out)

	out, err = run(t, "", "snippet")
	require.NoError(t, err)
	assert.Equal(t, "python -m pyinstrument script.py --renderer json | pbcopy\n", out)
}

func TestSnippet_UnknownOS_ReturnsError(t *testing.T) {
	_, err := run(t, "", "snippet", "--os", "beos")
	require.Error(t, err)
}
