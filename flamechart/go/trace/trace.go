// Package trace maps pyinstrument JSON output into the tree consumed by the
// flame graph widget.
package trace

import "errors"

var (
	// ErrInvalidJSON is returned when the input is not parseable JSON.
	ErrInvalidJSON = errors.New("invalid JSON")

	// ErrInvalidTraceShape is returned when the input is JSON but does not
	// have the structure of a profiler frame tree.
	ErrInvalidTraceShape = errors.New("invalid trace shape")
)

// RawProfile is a single frame as written by pyinstrument's JSON renderer.
type RawProfile struct {
	Function string        `json:"function"`
	FilePath string        `json:"file_path,omitempty"`
	LineNo   int           `json:"line_no,omitempty"`
	Time     float64       `json:"time"`
	Children []*RawProfile `json:"children"`
}

// VisualNode is a node of the flame graph, in the format the widget reads.
//
// A node's Value is expected to be at least the sum of its children's values,
// but that isn't enforced.
type VisualNode struct {
	Name     string        `json:"name"`
	Value    float64       `json:"value"`
	Tooltip  string        `json:"tooltip,omitempty"`
	Children []*VisualNode `json:"children,omitempty"`
}

// Options controls the mapping from RawProfile to VisualNode.
type Options struct {
	// Tooltips adds a "<time>ms <function>" tooltip to every node.
	Tooltips bool
}

// DefaultOptions are the options used by Parse.
var DefaultOptions = Options{
	Tooltips: true,
}
