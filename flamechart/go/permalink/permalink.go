// Package permalink stores trees under short ids, for traces that produce
// URLs too long to share.
package permalink

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"regexp"

	"go.skia.org/flamechart/flamechart/go/trace"
	"go.skia.org/flamechart/go/skerr"
)

// IDParam is the query parameter that selects a stored tree.
const IDParam = "id"

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("permalink not found")

// Store is an interface for things that persist trees.
type Store interface {
	// Insert stores the tree and returns its id. Inserting the same tree
	// twice returns the same id.
	Insert(ctx context.Context, tree *trace.VisualNode) (string, error)

	// Get retrieves the tree for the given id. Unknown ids return an error
	// wrapping ErrNotFound.
	Get(ctx context.Context, id string) (*trace.VisualNode, error)
}

var validID = regexp.MustCompile(`^[0-9a-f]{32}$`)

// ValidID is true if id could have been returned by ID.
func ValidID(id string) bool {
	return validID.MatchString(id)
}

// ID returns the id of the tree along with the encoded tree, which is what
// stores persist. The id is the md5 of the encoded tree.
func ID(tree *trace.VisualNode) (string, []byte, error) {
	if tree == nil {
		return "", nil, skerr.Fmt("can not store an empty tree")
	}
	b, err := trace.EncodeVisual(tree)
	if err != nil {
		return "", nil, skerr.Wrap(err)
	}
	return fmt.Sprintf("%x", md5.Sum(b)), b, nil
}

// Decode decodes a stored tree.
func Decode(id string, b []byte) (*trace.VisualNode, error) {
	tree, err := trace.DecodeVisual(b)
	if err != nil {
		return nil, skerr.Wrapf(err, "decoding permalink %q", id)
	}
	if tree == nil {
		return nil, skerr.Wrapf(ErrNotFound, "permalink %q is empty", id)
	}
	return tree, nil
}

// NotFound returns an error wrapping ErrNotFound for id.
func NotFound(id string) error {
	return skerr.Wrapf(ErrNotFound, "id %q", id)
}
