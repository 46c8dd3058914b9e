package trace

import (
	"encoding/json"

	"go.skia.org/flamechart/go/skerr"
)

// DecodeVisual decodes an already mapped VisualNode tree, as stored in the
// page URL. No structural mapping is done, so raw profiler JSON decodes into
// nodes with empty names and zero values. The JSON literal null decodes to a
// nil tree.
func DecodeVisual(raw []byte) (*VisualNode, error) {
	var ret *VisualNode
	if err := json.Unmarshal(raw, &ret); err != nil {
		return nil, skerr.Wrapf(ErrInvalidJSON, "decoding visual tree: %s", err)
	}
	return ret, nil
}

// EncodeVisual is the inverse of DecodeVisual. The encoding is deterministic
// for a given tree.
func EncodeVisual(root *VisualNode) ([]byte, error) {
	b, err := json.Marshal(root)
	if err != nil {
		return nil, skerr.Wrap(err)
	}
	return b, nil
}
