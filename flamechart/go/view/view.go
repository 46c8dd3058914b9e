// Package view is the top level of the viewer. A View owns the State, applies
// every input event on a single loop, mirrors loaded trees into the URL
// history and tells subscribers about each new State.
package view

import (
	"context"
	"net/url"
	"sync"
	"time"

	"go.skia.org/flamechart/flamechart/go/acquire"
	"go.skia.org/flamechart/flamechart/go/trace"
	"go.skia.org/flamechart/flamechart/go/urlstate"
	"go.skia.org/flamechart/flamechart/go/viewstate"
	"go.skia.org/flamechart/go/metrics2"
	"go.skia.org/flamechart/go/skerr"
	"go.skia.org/flamechart/go/sklog"
)

const eventQueueSize = 16

// Opener opens the file picker and returns the files the user chose.
type Opener func(ctx context.Context) ([]acquire.File, error)

// Option configures a View.
type Option func(*View)

// WithTraceOptions sets how pasted and dropped traces are mapped.
func WithTraceOptions(opts trace.Options) Option {
	return func(v *View) { v.traceOpts = opts }
}

// WithMaxUploadBytes limits the size of dropped files. Zero means no limit.
func WithMaxUploadBytes(n int64) Option {
	return func(v *View) { v.maxUploadBytes = n }
}

// WithUploadOpener registers the file picker used by OpenUpload.
func WithUploadOpener(o Opener) Option {
	return func(v *View) { v.opener = o }
}

// WithUploadDelay overrides acquire.UploadDelay.
func WithUploadDelay(d time.Duration) Option {
	return func(v *View) { v.uploadDelay = d }
}

// WithPasteSource subscribes the view to src for its whole lifetime.
func WithPasteSource(src acquire.PasteSource) Option {
	return func(v *View) { v.pasteSource = src }
}

// View is the viewer page.
type View struct {
	traceOpts      trace.Options
	maxUploadBytes int64
	opener         Opener
	uploadDelay    time.Duration
	pasteSource    acquire.PasteSource

	sync   *urlstate.Synchronizer
	events chan Event
	ctx    context.Context
	cancel context.CancelFunc

	// applyMutex serializes apply between Run and Dispatch.
	applyMutex sync.Mutex
	// running is true while Run is active. Only accessed under applyMutex.
	running bool
	// state is only modified by apply.
	state viewstate.State

	// mutex protects snapshot, subscribers and nextSub.
	mutex       sync.Mutex
	snapshot    viewstate.State
	subscribers map[int]func(viewstate.State)
	nextSub     int
	pasteSubbed bool
}

// New returns a View whose history starts at initial. The displayed tree is
// restored from initial; a restore failure sets the error message.
func New(initial *url.URL, opts ...Option) *View {
	ctx, cancel := context.WithCancel(context.Background())
	v := &View{
		traceOpts:   trace.DefaultOptions,
		uploadDelay: acquire.UploadDelay,
		sync:        urlstate.NewSynchronizer(urlstate.NewHistory(initial)),
		events:      make(chan Event, eventQueueSize),
		ctx:         ctx,
		cancel:      cancel,
		subscribers: map[int]func(viewstate.State){},
	}
	for _, opt := range opts {
		opt(v)
	}
	tree, err := v.sync.Restore()
	if err != nil {
		sklog.Warningf("Restoring initial URL: %s", err)
		v.state = viewstate.Failed(v.state, err)
	} else {
		v.state = viewstate.Restored(v.state, tree)
	}
	v.snapshot = v.state
	if v.pasteSource != nil {
		if err := v.SubscribePaste(v.pasteSource); err != nil {
			sklog.Errorf("Subscribing to paste: %s", err)
		}
	}
	return v
}

// Run applies posted events until ctx is cancelled or the view is closed.
func (v *View) Run(ctx context.Context) error {
	v.applyMutex.Lock()
	v.running = true
	v.applyMutex.Unlock()
	defer func() {
		v.applyMutex.Lock()
		v.running = false
		v.applyMutex.Unlock()
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-v.ctx.Done():
			return nil
		case e := <-v.events:
			v.apply(e)
		}
	}
}

// Close stops the event loop and the paste subscription.
func (v *View) Close() {
	v.cancel()
}

// Dispatch applies e immediately and returns the resulting State. It is for
// owners that don't run the loop, such as a single HTTP request.
func (v *View) Dispatch(e Event) viewstate.State {
	v.apply(e)
	return v.State()
}

// Post queues e for the event loop. It blocks if the queue is full and gives
// up once the view is closed.
func (v *View) Post(e Event) {
	select {
	case v.events <- e:
	case <-v.ctx.Done():
	}
}

func (v *View) apply(e Event) {
	v.applyMutex.Lock()
	e.apply(v)
	s := v.state
	v.applyMutex.Unlock()
	v.publish(s)
}

func (v *View) publish(s viewstate.State) {
	v.mutex.Lock()
	v.snapshot = s
	subs := make([]func(viewstate.State), 0, len(v.subscribers))
	for _, fn := range v.subscribers {
		subs = append(subs, fn)
	}
	v.mutex.Unlock()
	for _, fn := range subs {
		fn(s)
	}
}

// State returns the most recently applied State.
func (v *View) State() viewstate.State {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	return v.snapshot
}

// URL is the current history entry.
func (v *View) URL() *url.URL {
	return v.sync.History().Current()
}

// Subscribe registers fn to be called with every new State. The returned
// func removes the subscription.
func (v *View) Subscribe(fn func(viewstate.State)) func() {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	id := v.nextSub
	v.nextSub++
	v.subscribers[id] = fn
	return func() {
		v.mutex.Lock()
		defer v.mutex.Unlock()
		delete(v.subscribers, id)
	}
}

// SubscribePaste posts a PasteEvent for every text received on src, until src
// is closed or the view is closed. Only one paste source may be subscribed.
func (v *View) SubscribePaste(src acquire.PasteSource) error {
	v.mutex.Lock()
	if v.pasteSubbed {
		v.mutex.Unlock()
		return skerr.Fmt("a paste source is already subscribed")
	}
	v.pasteSubbed = true
	v.mutex.Unlock()

	go func() {
		for {
			select {
			case <-v.ctx.Done():
				return
			case text, ok := <-src:
				if !ok {
					return
				}
				v.Post(PasteEvent{Text: text})
			}
		}
	}()
	return nil
}

// Paste queues pasted profiler output.
func (v *View) Paste(text string) { v.Post(PasteEvent{Text: text}) }

// Drop queues dropped files. Only the first is read.
func (v *View) Drop(ctx context.Context, files []acquire.File) {
	v.Post(DropEvent{Ctx: ctx, Files: files})
}

// Back queues a history back navigation.
func (v *View) Back() { v.Post(BackEvent{}) }

// Forward queues a history forward navigation.
func (v *View) Forward() { v.Post(ForwardEvent{}) }

// Clear queues a reset of the view.
func (v *View) Clear() { v.Post(ClearEvent{}) }

// ShowHelp queues opening the help dialog.
func (v *View) ShowHelp() { v.Post(ShowHelpEvent{}) }

// HideHelp queues closing the help dialog.
func (v *View) HideHelp() { v.Post(HideHelpEvent{}) }

// DismissError queues hiding the error message.
func (v *View) DismissError() { v.Post(DismissErrorEvent{}) }

// OpenUpload opens the file picker after the upload delay and drops the
// chosen files.
func (v *View) OpenUpload() {
	time.AfterFunc(v.uploadDelay, func() {
		v.Post(UploadEvent{})
	})
}

// load maps text and, on success, displays and persists the tree.
func (v *View) load(in acquire.Input) {
	tree, err := trace.ParseWithOptions([]byte(in.Text), v.traceOpts)
	if err != nil {
		v.fail(in.Channel, err)
		return
	}
	v.state = viewstate.Loaded(v.state, tree)
	if err := v.sync.Persist(tree); err != nil {
		sklog.Errorf("Persisting tree from %s: %s", in.Channel, err)
	}
	recordImport(in.Channel, "success")
}

func (v *View) fail(channel acquire.Channel, err error) {
	sklog.Warningf("Import from %s failed: %s", channel, err)
	v.state = viewstate.Failed(v.state, err)
	recordImport(channel, "failure")
}

func (v *View) restore(tree *trace.VisualNode, moved bool, err error) {
	if !moved {
		return
	}
	if err != nil {
		v.fail(acquire.URL, err)
		return
	}
	v.state = viewstate.Restored(v.state, tree)
	recordImport(acquire.URL, "success")
}

func recordImport(channel acquire.Channel, result string) {
	metrics2.GetCounter("flamechart_import", map[string]string{
		"channel": string(channel),
		"result":  result,
	}).Inc(1)
}
