package skerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = errors.New("sentinel")

func TestWrap_Nil_ReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil))
	assert.NoError(t, Wrapf(nil, "context %d", 1))
}

func TestWrap_AddsCallStackOnce(t *testing.T) {
	err := Wrap(errSentinel)
	require.Error(t, err)
	assert.ErrorIs(t, err, errSentinel)
	assert.Contains(t, err.Error(), "sentinel. At skerr/skerr_test.go:")

	again := Wrap(err)
	assert.Same(t, err, again)
}

func TestWrapf_ContextIsPrependedNewestFirst(t *testing.T) {
	err := Wrapf(errSentinel, "reading %s", "file.json")
	err = Wrapf(err, "importing")
	assert.ErrorIs(t, err, errSentinel)
	assert.Regexp(t, `^importing: reading file.json: sentinel\. At `, err.Error())
}

func TestWrapf_ForeignWrapper_KeepsChain(t *testing.T) {
	inner := fmt.Errorf("outer: %w", errSentinel)
	err := Wrapf(inner, "context")
	assert.ErrorIs(t, err, errSentinel)
	assert.Equal(t, inner, Unwrap(err))
}

func TestFmt_HasNoWrappedSentinel(t *testing.T) {
	err := Fmt("bad value %q", "x")
	assert.Contains(t, err.Error(), `bad value "x"`)
	assert.NotErrorIs(t, err, errSentinel)
}

func TestUnwrap_PlainError_ReturnsItself(t *testing.T) {
	assert.Equal(t, errSentinel, Unwrap(errSentinel))
}
