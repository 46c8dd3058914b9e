package help

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnippet(t *testing.T) {
	assert.Equal(t, "python -m pyinstrument script.py --renderer json | pbcopy", Snippet(Mac, ""))
	assert.Equal(t, "python -m pyinstrument script.py --renderer json | xclip -sel clip", Snippet(Linux, ""))
	assert.Equal(t, "python -m pyinstrument app.py --renderer json | clip", Snippet(Windows, "app.py"))
}

func TestParseOS(t *testing.T) {
	for in, want := range map[string]OS{
		"":        Mac,
		"macOS":   Mac,
		"darwin":  Mac,
		"Linux":   Linux,
		"windows": Windows,
		" win ":   Windows,
	} {
		got, err := ParseOS(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseOS("plan9")
	assert.Error(t, err)
}

func TestSteps(t *testing.T) {
	steps := Steps(Linux)
	require.Len(t, steps, 4)
	assert.Equal(t, Snippet(Linux, ""), steps[1])
	assert.Contains(t, steps[2], "Ctrl V")
	assert.Contains(t, Steps(Mac)[2], "⌘ V")
}

func TestTitles(t *testing.T) {
	var titles []string
	for _, os := range AllOS {
		titles = append(titles, os.Title())
	}
	assert.Equal(t, []string{"Mac OS", "Linux", "Windows"}, titles)
}
