// Package baseapp provides the common setup for a web server: flags, security
// headers, logging middleware, static resources and a Prometheus endpoint.
//
// An application implements App and calls Serve from main:
//
//	func main() {
//		baseapp.Serve(new, []string{"flamechart.skia.org"})
//	}
package baseapp

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/unrolled/secure"
	"golang.org/x/sync/errgroup"

	"go.skia.org/flamechart/go/httputils"
	"go.skia.org/flamechart/go/metrics2"
	"go.skia.org/flamechart/go/sklog"
	"go.skia.org/flamechart/go/util"
)

const (
	// SERVER_ADDRESS is the address the main HTTP server listens on when
	// running locally.
	SERVER_ADDRESS = "http://localhost"

	serverReadTimeout  = 5 * time.Minute
	serverWriteTimeout = 5 * time.Minute
)

var (
	// Local is true if running locally and not in production.
	Local *bool

	// Port is the HTTP port to listen on, e.g. ":8000".
	Port *string

	// PromPort is the metrics port, e.g. ":20000".
	PromPort *string

	// ResourcesDir is the directory the static resources are served from.
	ResourcesDir *string
)

// App is the interface that Constructor returns.
type App interface {
	// AddHandlers is called by Serve and the app should add all its handlers
	// to the router.
	AddHandlers(chi.Router)

	// AddMiddleware returns a list of middleware functions to add to the
	// router. Called after AddHandlers.
	AddMiddleware() []func(http.Handler) http.Handler
}

// Constructor is a function that builds an App instance.
//
// Used as a parameter to Serve.
type Constructor func() (App, error)

// Option is an optional argument to Serve.
type Option interface {
	csp() []string
}

// AllowWASM allows 'unsafe-eval' in scripts, which WASM needs.
type AllowWASM struct{}

func (AllowWASM) csp() []string { return []string{"wasm"} }

// AllowAnyImage allows images to be loaded from any source.
type AllowAnyImage struct{}

func (AllowAnyImage) csp() []string { return []string{"img"} }

func hasOption(opts []Option, key string) bool {
	for _, o := range opts {
		for _, k := range o.csp() {
			if k == key {
				return true
			}
		}
	}
	return false
}

// RegisterFlags adds the baseapp flags to fs. It must be called once before
// Serve or NewRouter; Serve calls it on flag.CommandLine.
func RegisterFlags(fs *flag.FlagSet) {
	Local = fs.Bool("local", false, "Running locally if true. As opposed to in production.")
	Port = fs.String("port", ":8000", "HTTP service address (e.g., ':8000')")
	PromPort = fs.String("prom_port", ":20000", "Metrics service address (e.g., ':10110')")
	ResourcesDir = fs.String("resources_dir", "", "The directory to find templates, JS, and CSS files. If blank the ./dist directory relative to the executable will be used.")
}

func init() {
	// Defaults so that NewRouter can be used in tests without parsing flags.
	local := false
	port := ":8000"
	promPort := ":20000"
	resourcesDir := ""
	Local, Port, PromPort, ResourcesDir = &local, &port, &promPort, &resourcesDir
}

// cspString builds the Content-Security-Policy. $NONCE is replaced by the
// secure middleware with a fresh nonce per request.
func cspString(allowedHosts []string, local bool, options []Option) string {
	// This is a "strict" CSP, see
	// https://csp.withgoogle.com/docs/strict-csp.html
	imgSrc := "'self'"
	if hasOption(options, "img") {
		// unsafe-eval allows canvas image data to be exported.
		imgSrc = "* 'unsafe-eval' blob: data:"
	}
	addScriptSrc := ""
	if local || hasOption(options, "wasm") {
		addScriptSrc = "'unsafe-eval'"
	}
	return fmt.Sprintf("base-uri 'none';  img-src %s ; object-src 'none' ; style-src 'self'  https://fonts.googleapis.com/ https://www.gstatic.com/ 'unsafe-inline' ; script-src 'strict-dynamic' $NONCE %s 'unsafe-inline' https: http: ; report-uri /cspreport ;", imgSrc, addScriptSrc)
}

func securityMiddleware(allowedHosts []string, local bool, options []Option) func(http.Handler) http.Handler {
	opts := secure.Options{
		AllowedHosts:          allowedHosts,
		HostsProxyHeaders:     []string{"X-Forwarded-Host"},
		SSLRedirect:           true,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		STSSeconds:            60 * 60 * 24 * 365,
		STSIncludeSubdomains:  true,
		ContentSecurityPolicy: cspString(allowedHosts, local, options),
		IsDevelopment:         local,
	}
	return secure.New(opts).Handler
}

// cspReporter logs the CSP violation reports sent by browsers.
func cspReporter(w http.ResponseWriter, r *http.Request) {
	var body interface{}
	if err := json.NewDecoder(io.LimitReader(r.Body, 64*1024)).Decode(&body); err != nil {
		sklog.Errorf("Failed to decode csp report: %s", err)
		return
	}
	b, err := json.Marshal(struct {
		Type string      `json:"type"`
		Body interface{} `json:"body"`
	}{Type: "csp", Body: body})
	if err != nil {
		sklog.Errorf("Failed to encode csp report: %s", err)
		return
	}
	fmt.Fprintln(os.Stdout, string(b))
}

func resourcesDir() string {
	if *ResourcesDir != "" {
		return *ResourcesDir
	}
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "../../dist")
}

// NewRouter builds the full handler for app: the app's routes plus static
// resources, health checks, the CSP reporter, logging and security headers.
func NewRouter(app App, allowedHosts []string, options ...Option) http.Handler {
	r := chi.NewRouter()
	dir := resourcesDir()
	r.HandleFunc("/dist/*", http.StripPrefix("/dist/", http.HandlerFunc(httputils.MakeResourceHandler(dir))).ServeHTTP)
	r.HandleFunc("/static/*", http.StripPrefix("/static/", http.HandlerFunc(httputils.MakeResourceHandler(dir))).ServeHTTP)
	r.Post("/cspreport", cspReporter)
	app.AddHandlers(r)

	var h http.Handler = r
	for _, m := range app.AddMiddleware() {
		h = m(h)
	}
	h = httputils.LoggingGzipRequestResponse(h)
	if !*Local {
		h = httputils.HTTPS(h)
	}
	h = securityMiddleware(allowedHosts, *Local, options)(h)
	return httputils.Healthz(h)
}

// Serve builds and runs the App in a secure manner in our kubernetes cluster.
//
// The constructor builds an App instance. Note that we don't pass in an App
// instance directly, because we want to parse the flags before building the
// App.
//
// The allowedHosts are the list of domains that are allowed to make requests
// to this app. Make sure to include the domain name of the app itself. For
// example; []string{"am.skia.org"}.
func Serve(constructor Constructor, allowedHosts []string, options ...Option) {
	RegisterFlags(flag.CommandLine)
	flag.Parse()
	sklog.Infof("Flags: local=%v port=%s prom_port=%s resources_dir=%q", *Local, *Port, *PromPort, *ResourcesDir)

	app, err := constructor()
	if err != nil {
		sklog.Fatal(err)
	}

	g, ctx := errgroup.WithContext(context.Background())
	metricsServer := &http.Server{Addr: *PromPort, Handler: metrics2.Handler()}
	g.Go(metricsServer.ListenAndServe)

	server := &http.Server{
		Addr:           *Port,
		Handler:        NewRouter(app, allowedHosts, options...),
		ReadTimeout:    serverReadTimeout,
		WriteTimeout:   serverWriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
	sklog.Infof("Ready to serve at %s%s", SERVER_ADDRESS, strings.TrimPrefix(*Port, "localhost"))
	g.Go(server.ListenAndServe)

	// Both servers go down together.
	g.Go(func() error {
		<-ctx.Done()
		util.LogErr(server.Shutdown(context.Background()))
		util.LogErr(metricsServer.Shutdown(context.Background()))
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sklog.Fatal(err)
	}
}
