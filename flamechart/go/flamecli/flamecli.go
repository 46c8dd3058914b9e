// Package flamecli implements the subcommands of the flamecli tool, which
// runs the viewer's conversions from the command line.
package flamecli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/urfave/cli/v2"

	"go.skia.org/flamechart/flamechart/go/acquire"
	"go.skia.org/flamechart/flamechart/go/trace"
	"go.skia.org/flamechart/go/skerr"
)

// flag names
const (
	inFlagName       = "in"
	outFlagName      = "out"
	tooltipsFlagName = "tooltips"
	baseFlagName     = "base"
	urlFlagName      = "url"
	topFlagName      = "top"
	osFlagName       = "os"
	scriptFlagName   = "script"
	maxBytesFlagName = "max-bytes"
)

// stdinName is the --in value that reads from stdin.
const stdinName = "-"

// NewApp returns the flamecli application.
func NewApp() *cli.App {
	return &cli.App{
		Name:        "flamecli",
		Usage:       "Convert pyinstrument traces into flame chart data and links.",
		Description: "flamecli maps pyinstrument JSON traces the same way the flamechart server does.",
		Commands: []*cli.Command{
			ConvertCommand(),
			LinkCommand(),
			RestoreCommand(),
			InspectCommand(),
			SnippetCommand(),
		},
	}
}

// inputFlags are shared by every command that reads a trace.
type inputFlags struct {
	in       string
	tooltips bool
	maxBytes int64
}

func (f *inputFlags) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        inFlagName,
			Value:       stdinName,
			Usage:       "pyinstrument JSON trace to read, - for stdin",
			Destination: &f.in,
		},
		&cli.BoolFlag{
			Name:        tooltipsFlagName,
			Value:       true,
			Usage:       "add a tooltip to every node",
			Destination: &f.tooltips,
		},
		&cli.Int64Flag{
			Name:        maxBytesFlagName,
			Value:       0,
			Usage:       "fail on traces larger than this, 0 for no limit",
			Destination: &f.maxBytes,
		},
	}
}

// read returns the raw trace text.
func (f *inputFlags) read(ctx context.Context, stdin io.Reader) (acquire.Input, error) {
	file := acquire.LocalFile(f.in)
	if f.in == stdinName || f.in == "" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return acquire.Input{}, skerr.Wrapf(acquire.ErrReadFailed, "reading stdin: %s", err)
		}
		file = acquire.BytesFile("stdin", b)
	}
	return acquire.Read(ctx, file, f.maxBytes)
}

// parse reads and maps the trace.
func (f *inputFlags) parse(ctx context.Context, stdin io.Reader) (*trace.VisualNode, acquire.Input, error) {
	in, err := f.read(ctx, stdin)
	if err != nil {
		return nil, in, err
	}
	tree, err := trace.ParseWithOptions([]byte(in.Text), trace.Options{Tooltips: f.tooltips})
	if err != nil {
		return nil, in, skerr.Wrapf(err, "mapping %s", in.Name)
	}
	return tree, in, nil
}

func stdin(c *cli.Context) io.Reader {
	if c.App.Reader != nil {
		return c.App.Reader
	}
	return os.Stdin
}

func stdout(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

// writeJSON writes v, indented, to the file at path or to w if path is empty.
func writeJSON(w io.Writer, path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return skerr.Wrap(err)
	}
	b = append(b, '\n')
	if path != "" {
		return skerr.Wrap(os.WriteFile(path, b, 0644))
	}
	_, err = w.Write(b)
	return skerr.Wrap(err)
}

func parseBase(base string) (*url.URL, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, skerr.Wrapf(err, "parsing --%s %q", baseFlagName, base)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

func printf(w io.Writer, format string, args ...interface{}) error {
	_, err := fmt.Fprintf(w, format, args...)
	return skerr.Wrap(err)
}
