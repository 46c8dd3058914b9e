package view

import (
	"context"

	"go.skia.org/flamechart/flamechart/go/acquire"
	"go.skia.org/flamechart/flamechart/go/viewstate"
	"go.skia.org/flamechart/go/skerr"
)

// Event is an input to the View. Events are applied one at a time.
type Event interface {
	apply(v *View)
}

// PasteEvent carries pasted profiler output.
type PasteEvent struct {
	Text string
}

func (e PasteEvent) apply(v *View) {
	v.load(acquire.PasteText(e.Text))
}

// DropEvent carries dropped or picked files. Reading is asynchronous when the
// event loop is running; the read result arrives as a later event, so of
// several drops the one that finishes reading last is displayed.
type DropEvent struct {
	Ctx   context.Context
	Files []acquire.File
}

func (e DropEvent) apply(v *View) {
	f, err := acquire.SelectFile(e.Files)
	if err != nil {
		v.fail(acquire.Drop, err)
		return
	}
	ctx := e.Ctx
	if ctx == nil {
		ctx = v.ctx
	}
	ch := acquire.ReadAsync(ctx, f, v.maxUploadBytes)
	if !v.running {
		readDoneEvent{result: <-ch}.apply(v)
		return
	}
	go func() {
		v.Post(readDoneEvent{result: <-ch})
	}()
}

type readDoneEvent struct {
	result acquire.Result
}

func (e readDoneEvent) apply(v *View) {
	if e.result.Err != nil {
		v.fail(acquire.Drop, e.result.Err)
		return
	}
	v.load(e.result.Input)
}

// UploadEvent opens the registered file picker and drops the chosen files.
type UploadEvent struct{}

func (UploadEvent) apply(v *View) {
	if v.opener == nil {
		v.fail(acquire.Drop, skerr.Wrapf(acquire.ErrUploadUnavailable, "no file picker registered"))
		return
	}
	files, err := v.opener(v.ctx)
	if err != nil {
		v.fail(acquire.Drop, skerr.Wrapf(acquire.ErrUploadUnavailable, "opening file picker: %s", err))
		return
	}
	DropEvent{Files: files}.apply(v)
}

// BackEvent is a history back navigation.
type BackEvent struct{}

func (BackEvent) apply(v *View) {
	v.restore(v.sync.Back())
}

// ForwardEvent is a history forward navigation.
type ForwardEvent struct{}

func (ForwardEvent) apply(v *View) {
	v.restore(v.sync.Forward())
}

// ClearEvent resets the view and removes the tree from the URL.
type ClearEvent struct{}

func (ClearEvent) apply(v *View) {
	v.state = viewstate.Cleared(v.state)
	if err := v.sync.Persist(nil); err != nil {
		v.fail(acquire.URL, err)
	}
}

// ShowHelpEvent opens the help dialog.
type ShowHelpEvent struct{}

func (ShowHelpEvent) apply(v *View) { v.state = viewstate.ShowHelp(v.state) }

// HideHelpEvent closes the help dialog.
type HideHelpEvent struct{}

func (HideHelpEvent) apply(v *View) { v.state = viewstate.HideHelp(v.state) }

// DismissErrorEvent hides the error message.
type DismissErrorEvent struct{}

func (DismissErrorEvent) apply(v *View) { v.state = viewstate.DismissError(v.state) }
