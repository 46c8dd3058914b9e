// Package viewstate holds the state of the viewer page and the transitions
// between states. Every transition is a pure function returning a new State.
package viewstate

import (
	"errors"

	"go.skia.org/flamechart/flamechart/go/acquire"
	"go.skia.org/flamechart/flamechart/go/trace"
)

// User visible error messages.
const (
	MsgInvalidJSON       = "Provided data is not a valid JSON"
	MsgInvalidTraceShape = "Provided JSON data is not a valid trace output"
	MsgReadFailed        = "Failed to read provided data"
	MsgUploadUnavailable = "Upload is not available"
	MsgUnknown           = "Something went wrong"
)

// State is what the page displays.
type State struct {
	// Data is the displayed tree, nil if nothing is loaded.
	Data *trace.VisualNode `json:"data"`

	// ErrorMessage is shown in the snackbar. Empty means no error.
	ErrorMessage string `json:"errorMessage,omitempty"`

	// HelpShown is true while the help dialog is open.
	HelpShown bool `json:"helpShown"`
}

// HasData is true if a tree is displayed.
func (s State) HasData() bool {
	return s.Data != nil
}

// Loaded is the state after a tree was mapped from a paste, drop or upload.
func Loaded(s State, tree *trace.VisualNode) State {
	s.Data = tree
	return s
}

// Failed is the state after an input failed. The displayed tree is kept.
func Failed(s State, err error) State {
	s.ErrorMessage = Message(err)
	return s
}

// Cleared is the state after the user reset the view.
func Cleared(s State) State {
	s.Data = nil
	return s
}

// Restored is the state after reading the tree back from the URL on load or
// navigation. A nil tree empties the view.
func Restored(s State, tree *trace.VisualNode) State {
	s.Data = tree
	return s
}

// DismissError hides the snackbar.
func DismissError(s State) State {
	s.ErrorMessage = ""
	return s
}

// ShowHelp opens the help dialog.
func ShowHelp(s State) State {
	s.HelpShown = true
	return s
}

// HideHelp closes the help dialog.
func HideHelp(s State) State {
	s.HelpShown = false
	return s
}

// Message returns the user visible message for err.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, trace.ErrInvalidJSON):
		return MsgInvalidJSON
	case errors.Is(err, trace.ErrInvalidTraceShape):
		return MsgInvalidTraceShape
	case errors.Is(err, acquire.ErrReadFailed):
		return MsgReadFailed
	case errors.Is(err, acquire.ErrUploadUnavailable):
		return MsgUploadUnavailable
	}
	return MsgUnknown
}
