// Package help has the instructions shown to users on how to get a trace
// into the viewer.
package help

import (
	"fmt"
	"strings"

	"go.skia.org/flamechart/go/skerr"
)

// OS is a platform with its own clipboard tool.
type OS string

const (
	Mac     OS = "mac"
	Linux   OS = "linux"
	Windows OS = "windows"
)

// AllOS is the order the platforms are shown in.
var AllOS = []OS{Mac, Linux, Windows}

// DefaultScript is the script name used in snippets.
const DefaultScript = "script.py"

type platform struct {
	title     string
	clipboard string
	pasteKeys string
}

var platforms = map[OS]platform{
	Mac:     {title: "Mac OS", clipboard: "pbcopy", pasteKeys: "⌘ V"},
	Linux:   {title: "Linux", clipboard: "xclip -sel clip", pasteKeys: "Ctrl V"},
	Windows: {title: "Windows", clipboard: "clip", pasteKeys: "Ctrl V"},
}

// ParseOS converts a name such as "linux" or "macOS" to an OS. The empty
// string is Mac, which is the first tab in the help dialog.
func ParseOS(s string) (OS, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mac", "macos", "darwin", "osx":
		return Mac, nil
	case "linux":
		return Linux, nil
	case "windows", "win":
		return Windows, nil
	}
	return "", skerr.Fmt("unknown OS %q", s)
}

// Title is the tab label for os.
func (os OS) Title() string {
	return platforms[os].title
}

// PasteKeys is the key combination that pastes on os.
func (os OS) PasteKeys() string {
	return platforms[os].pasteKeys
}

// Snippet is the terminal command that profiles script and copies the JSON
// output to the clipboard.
func Snippet(os OS, script string) string {
	if script == "" {
		script = DefaultScript
	}
	return fmt.Sprintf("python -m pyinstrument %s --renderer json | %s", script, platforms[os].clipboard)
}

// Steps are the help dialog text for os, in order.
func Steps(os OS) []string {
	return []string{
		"Run in your terminal",
		Snippet(os, DefaultScript),
		fmt.Sprintf("Paste with your keyboard (%s)", os.PasteKeys()),
		"Or drop trace file or click to select",
	}
}
