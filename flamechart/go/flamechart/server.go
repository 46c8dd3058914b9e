package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/unrolled/secure"

	"go.skia.org/flamechart/flamechart/go/acquire"
	"go.skia.org/flamechart/flamechart/go/config"
	"go.skia.org/flamechart/flamechart/go/help"
	"go.skia.org/flamechart/flamechart/go/permalink"
	"go.skia.org/flamechart/flamechart/go/permalink/gcsstore"
	"go.skia.org/flamechart/flamechart/go/permalink/memcachedstore"
	"go.skia.org/flamechart/flamechart/go/permalink/memstore"
	"go.skia.org/flamechart/flamechart/go/trace"
	"go.skia.org/flamechart/flamechart/go/view"
	"go.skia.org/flamechart/flamechart/go/viewstate"
	"go.skia.org/flamechart/go/baseapp"
	"go.skia.org/flamechart/go/httputils"
	"go.skia.org/flamechart/go/skerr"
	"go.skia.org/flamechart/go/sklog"
)

// MsgPermalinkNotFound is shown when ?id= names an unknown permalink.
const MsgPermalinkNotFound = "Permalink not found"

//go:embed templates/*.html
var templatesFS embed.FS

// server implements baseapp.App.
type server struct {
	cfg       *config.InstanceConfig
	store     permalink.Store
	templates *template.Template
}

// See baseapp.Constructor.
func newServer() (baseapp.App, error) {
	ctx := context.Background()
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	sklog.Infof("Using %s permalink store, max upload %d bytes", cfg.Permalink.Type, cfg.MaxUploadBytes)
	return newServerWithStore(cfg, store)
}

func newServerWithStore(cfg *config.InstanceConfig, store permalink.Store) (*server, error) {
	templates, err := template.New("").Delims("{%", "%}").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, skerr.Wrapf(err, "parsing templates")
	}
	return &server{
		cfg:       cfg,
		store:     store,
		templates: templates,
	}, nil
}

// newStore builds the permalink.Store selected in cfg.
func newStore(ctx context.Context, cfg *config.InstanceConfig) (permalink.Store, error) {
	p := cfg.Permalink
	switch p.Type {
	case config.MemoryStore:
		return memstore.New(p.CacheSize)
	case config.GCSStore:
		return gcsstore.New(ctx, p.Bucket, p.Prefix)
	case config.MemcachedStore:
		return memcachedstore.New(p.MemcachedServers...)
	}
	return nil, skerr.Fmt("unknown permalink store type %q", p.Type)
}

func (srv *server) traceOptions() trace.Options {
	return trace.Options{Tooltips: srv.cfg.Tooltips}
}

// pageURL is the URL of the page that made r, which forwards its own query.
func pageURL(r *http.Request) *url.URL {
	return &url.URL{Path: "/", RawQuery: r.URL.RawQuery}
}

// newView returns a View for a single request.
func (srv *server) newView(r *http.Request) *view.View {
	return view.New(pageURL(r),
		view.WithTraceOptions(srv.traceOptions()),
		view.WithMaxUploadBytes(srv.cfg.MaxUploadBytes))
}

// newInputView is newView for requests that bring a new trace. A page whose
// own URL failed to restore can still load one.
func (srv *server) newInputView(r *http.Request) *view.View {
	v := srv.newView(r)
	v.Dispatch(view.DismissErrorEvent{})
	return v
}

// traceResponse is the reply to every request that loads a tree.
type traceResponse struct {
	Data         *trace.VisualNode `json:"data"`
	URL          string            `json:"url,omitempty"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
}

type permalinkResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// sendJSONResponse sends a JSON representation of any data structure as an
// HTTP response. If the conversion to JSON has an error, the error is logged.
func sendJSONResponse(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		sklog.Errorf("Failed to write response: %s", err)
	}
}

func (srv *server) sendState(w http.ResponseWriter, v *view.View, s viewstate.State) {
	if s.ErrorMessage != "" {
		sendJSONResponse(w, http.StatusBadRequest, traceResponse{ErrorMessage: s.ErrorMessage})
		return
	}
	sendJSONResponse(w, http.StatusOK, traceResponse{Data: s.Data, URL: v.URL().String()})
}

// templateContext is passed to index.html.
type templateContext struct {
	// Nonce is the CSP Nonce.
	Nonce string

	// State is the initial page state.
	State viewstate.State

	// Help has one entry per OS tab.
	Help []helpTab

	UploadDelayMs int64
}

type helpTab struct {
	OS      help.OS
	Title   string
	Snippet string
	Steps   []string
}

func helpTabs() []helpTab {
	ret := make([]helpTab, 0, len(help.AllOS))
	for _, os := range help.AllOS {
		ret = append(ret, helpTab{
			OS:      os,
			Title:   os.Title(),
			Snippet: help.Snippet(os, help.DefaultScript),
			Steps:   help.Steps(os),
		})
	}
	return ret
}

// pageState restores the page state from ?data=, or from ?id= if there is no
// data.
func (srv *server) pageState(r *http.Request) viewstate.State {
	query := r.URL.Query()
	id := query.Get(permalink.IDParam)
	if id == "" || query.Has(acquire.DataParam) {
		v := srv.newView(r)
		defer v.Close()
		return v.State()
	}
	tree, err := srv.store.Get(r.Context(), id)
	if err != nil {
		sklog.Warningf("Loading permalink %q: %s", id, err)
		return viewstate.State{ErrorMessage: MsgPermalinkNotFound}
	}
	return viewstate.Restored(viewstate.State{}, tree)
}

func (srv *server) indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if err := srv.templates.ExecuteTemplate(w, "index.html", templateContext{
		Nonce:         secure.CSPNonce(r.Context()),
		State:         srv.pageState(r),
		Help:          helpTabs(),
		UploadDelayMs: acquire.UploadDelay.Milliseconds(),
	}); err != nil {
		sklog.Errorf("Failed to expand template: %s", err)
	}
}

// traceHandler maps pasted profiler output in the request body.
func (srv *server) traceHandler(w http.ResponseWriter, r *http.Request) {
	body := io.Reader(r.Body)
	if srv.cfg.MaxUploadBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, srv.cfg.MaxUploadBytes)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		sklog.Warningf("Reading pasted trace: %s", err)
		sendJSONResponse(w, http.StatusBadRequest, traceResponse{ErrorMessage: viewstate.MsgReadFailed})
		return
	}
	v := srv.newInputView(r)
	defer v.Close()
	srv.sendState(w, v, v.Dispatch(view.PasteEvent{Text: string(b)}))
}

// multipartFile adapts an uploaded file to acquire.File.
type multipartFile struct {
	fh *multipart.FileHeader
}

func (m multipartFile) Name() string { return m.fh.Filename }

func (m multipartFile) Open() (io.ReadCloser, error) { return m.fh.Open() }

// uploadHandler maps the profiler output in the "file" part of a multipart
// form, as sent by drops and the file picker.
func (srv *server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	maxMemory := srv.cfg.MaxUploadBytes
	if maxMemory > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxMemory)
	} else {
		maxMemory = 32 << 20
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		sklog.Warningf("Parsing upload: %s", err)
		sendJSONResponse(w, http.StatusBadRequest, traceResponse{ErrorMessage: viewstate.MsgReadFailed})
		return
	}
	var files []acquire.File
	for _, fh := range r.MultipartForm.File["file"] {
		files = append(files, multipartFile{fh: fh})
	}
	v := srv.newInputView(r)
	defer v.Close()
	srv.sendState(w, v, v.Dispatch(view.DropEvent{Ctx: r.Context(), Files: files}))
}

// restoreHandler returns the tree of a history entry, from ?data= or ?id=, as
// done on history navigation.
func (srv *server) restoreHandler(w http.ResponseWriter, r *http.Request) {
	s := srv.pageState(r)
	if s.ErrorMessage != "" {
		sendJSONResponse(w, http.StatusBadRequest, traceResponse{ErrorMessage: s.ErrorMessage})
		return
	}
	sendJSONResponse(w, http.StatusOK, traceResponse{Data: s.Data})
}

// permalinkHandler stores the tree in the request body.
func (srv *server) permalinkHandler(w http.ResponseWriter, r *http.Request) {
	body := io.Reader(r.Body)
	if srv.cfg.MaxUploadBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, srv.cfg.MaxUploadBytes)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		httputils.ReportError(w, err, "Failed to read request.", http.StatusBadRequest)
		return
	}
	tree, err := trace.DecodeVisual(b)
	if err != nil || tree == nil {
		sendJSONResponse(w, http.StatusBadRequest, traceResponse{ErrorMessage: viewstate.MsgInvalidJSON})
		return
	}
	id, err := srv.store.Insert(r.Context(), tree)
	if err != nil {
		httputils.ReportError(w, err, "Failed to store permalink.", http.StatusInternalServerError)
		return
	}
	sendJSONResponse(w, http.StatusOK, permalinkResponse{
		ID:  id,
		URL: srv.cfg.URL + "/?" + url.Values{permalink.IDParam: {id}}.Encode(),
	})
}

// permalinkGetHandler returns a stored tree.
func (srv *server) permalinkGetHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tree, err := srv.store.Get(r.Context(), id)
	if errors.Is(err, permalink.ErrNotFound) {
		httputils.ReportError(w, err, MsgPermalinkNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		httputils.ReportError(w, err, "Failed to load permalink.", http.StatusInternalServerError)
		return
	}
	sendJSONResponse(w, http.StatusOK, traceResponse{Data: tree})
}

// helpHandler returns the command snippet for ?os= as plain text, for the
// copy to clipboard button.
func (srv *server) helpHandler(w http.ResponseWriter, r *http.Request) {
	os, err := help.ParseOS(r.URL.Query().Get("os"))
	if err != nil {
		httputils.ReportError(w, err, "Unknown OS.", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.WriteString(w, help.Snippet(os, r.URL.Query().Get("script"))); err != nil {
		sklog.Errorf("Failed to write response: %s", err)
	}
}

// See baseapp.App.
func (srv *server) AddHandlers(r chi.Router) {
	r.Get("/", srv.indexHandler)
	r.Get("/ready", httputils.ReadyHandleFunc)
	r.Route("/_", func(r chi.Router) {
		r.Post("/trace", srv.traceHandler)
		r.Post("/upload", srv.uploadHandler)
		r.Get("/restore", srv.restoreHandler)
		r.Post("/permalink", srv.permalinkHandler)
		r.Get("/p/{id}", httputils.CorsHandler(srv.permalinkGetHandler))
		r.Get("/help", srv.helpHandler)
	})
}

// See baseapp.App.
func (srv *server) AddMiddleware() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{httputils.CrossOriginResourcePolicy}
}
