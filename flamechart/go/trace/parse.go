package trace

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Jeffail/gabs/v2"

	"go.skia.org/flamechart/go/skerr"
)

// Parse decodes raw profiler output and maps it into a VisualNode tree using
// DefaultOptions.
func Parse(raw []byte) (*VisualNode, error) {
	return ParseWithOptions(raw, DefaultOptions)
}

// ParseWithOptions decodes raw profiler output and maps it into a VisualNode
// tree.
//
// Errors wrap ErrInvalidJSON if raw isn't JSON, or ErrInvalidTraceShape if any
// node is missing a string "function" or a non-negative numeric "time".
func ParseWithOptions(raw []byte, opts Options) (*VisualNode, error) {
	parsed, err := gabs.ParseJSON(raw)
	if tooDeep(err) {
		return nil, skerr.Wrapf(ErrInvalidTraceShape, "trace is nested deeper than the JSON decoder supports: %s", err)
	}
	if err != nil {
		return nil, skerr.Wrapf(ErrInvalidJSON, "decoding %d bytes: %s", len(raw), err)
	}
	m := mapper{opts: opts}
	node, err := m.mapNode(parsed, "$")
	if err != nil {
		return nil, err
	}
	return node, nil
}

type mapper struct {
	opts Options
}

func (m mapper) mapNode(c *gabs.Container, path string) (*VisualNode, error) {
	if _, ok := c.Data().(map[string]interface{}); !ok {
		return nil, shapeErr(path, "expected an object, got %s", describe(c.Data()))
	}
	function, ok := c.S("function").Data().(string)
	if !ok {
		return nil, shapeErr(path, "\"function\" must be a string")
	}
	t, ok := number(c.S("time").Data())
	if !ok {
		return nil, shapeErr(path, "\"time\" must be a number")
	}
	if t < 0 {
		return nil, shapeErr(path, "\"time\" must not be negative, got %v", t)
	}
	// file_path and line_no aren't displayed, but must be well formed when set.
	if fp := c.S("file_path").Data(); fp != nil {
		if _, ok := fp.(string); !ok {
			return nil, shapeErr(path, "\"file_path\" must be a string")
		}
	}
	if ln := c.S("line_no").Data(); ln != nil {
		if _, ok := number(ln); !ok {
			return nil, shapeErr(path, "\"line_no\" must be a number")
		}
	}

	ret := &VisualNode{
		Name:  function,
		Value: t,
	}
	if m.opts.Tooltips {
		ret.Tooltip = Tooltip(function, t)
	}

	children := c.S("children")
	switch children.Data().(type) {
	case nil:
		// Absent or null.
	case []interface{}:
		for i, child := range children.Children() {
			vn, err := m.mapNode(child, fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return nil, err
			}
			ret.Children = append(ret.Children, vn)
		}
	default:
		return nil, shapeErr(path, "\"children\" must be an array")
	}
	return ret, nil
}

// Tooltip is the hover text for a frame, e.g. "1.50ms main".
func Tooltip(function string, timeMs float64) string {
	return fmt.Sprintf("%.2fms %s", timeMs, function)
}

func shapeErr(path, format string, args ...interface{}) error {
	return skerr.Wrapf(ErrInvalidTraceShape, "at %s: %s", path, fmt.Sprintf(format, args...))
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func describe(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case []interface{}:
		return "an array"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	}
	if _, ok := number(v); ok {
		return "a number"
	}
	return fmt.Sprintf("%T", v)
}

// tooDeep is true if err is encoding/json refusing input nested past its
// fixed limit of 10000 levels, about 5000 frames of a trace.
func tooDeep(err error) bool {
	var se *json.SyntaxError
	return errors.As(err, &se) && strings.Contains(se.Error(), "exceeded max depth")
}
