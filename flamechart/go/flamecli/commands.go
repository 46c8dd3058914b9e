package flamecli

import (
	"net/url"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"go.skia.org/flamechart/flamechart/go/help"
	"go.skia.org/flamechart/flamechart/go/trace"
	"go.skia.org/flamechart/flamechart/go/urlstate"
	"go.skia.org/flamechart/go/skerr"
	"go.skia.org/flamechart/go/sklog"
	"go.skia.org/flamechart/go/urfavecli"
)

// maxURLLength is the length above which some browsers and proxies start
// rejecting URLs.
const maxURLLength = 8000

type convertCmd struct {
	inputFlags
	out string
}

// ConvertCommand returns a [*cli.Command] that maps a trace into the tree the
// flame graph widget reads.
func ConvertCommand() *cli.Command {
	cmd := &convertCmd{}
	return &cli.Command{
		Name:  "convert",
		Usage: "flamecli convert --in trace.json --out tree.json",
		Flags: append(cmd.inputFlags.flags(), &cli.StringFlag{
			Name:        outFlagName,
			Usage:       "file to write the tree to, stdout if empty",
			Destination: &cmd.out,
		}),
		Action: cmd.action,
	}
}

func (cmd *convertCmd) action(c *cli.Context) error {
	urfavecli.LogFlags(c)
	tree, _, err := cmd.parse(c.Context, stdin(c))
	if err != nil {
		return err
	}
	return writeJSON(stdout(c), cmd.out, tree)
}

type linkCmd struct {
	inputFlags
	base string
}

// LinkCommand returns a [*cli.Command] that prints a viewer URL with the
// trace embedded in it.
func LinkCommand() *cli.Command {
	cmd := &linkCmd{}
	return &cli.Command{
		Name:  "link",
		Usage: "flamecli link --in trace.json --base https://flamechart.skia.org",
		Flags: append(cmd.inputFlags.flags(), &cli.StringFlag{
			Name:        baseFlagName,
			Value:       "http://localhost:8000/",
			Usage:       "URL of the viewer",
			Destination: &cmd.base,
		}),
		Action: cmd.action,
	}
}

func (cmd *linkCmd) action(c *cli.Context) error {
	urfavecli.LogFlags(c)
	tree, _, err := cmd.parse(c.Context, stdin(c))
	if err != nil {
		return err
	}
	base, err := parseBase(cmd.base)
	if err != nil {
		return err
	}
	u, err := urlstate.Persist(base, tree)
	if err != nil {
		return skerr.Wrap(err)
	}
	link := u.String()
	if len(link) > maxURLLength {
		sklog.Warningf("Link is %s long, consider a permalink instead.", humanize.Bytes(uint64(len(link))))
	}
	return printf(stdout(c), "%s\n", link)
}

type restoreCmd struct {
	url string
	out string
}

// RestoreCommand returns a [*cli.Command] that extracts the tree from a viewer
// URL.
func RestoreCommand() *cli.Command {
	cmd := &restoreCmd{}
	return &cli.Command{
		Name:  "restore",
		Usage: "flamecli restore --url 'https://flamechart.skia.org/?data=...'",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        urlFlagName,
				Usage:       "viewer URL",
				Required:    true,
				Destination: &cmd.url,
			},
			&cli.StringFlag{
				Name:        outFlagName,
				Usage:       "file to write the tree to, stdout if empty",
				Destination: &cmd.out,
			},
		},
		Action: cmd.action,
	}
}

func (cmd *restoreCmd) action(c *cli.Context) error {
	urfavecli.LogFlags(c)
	u, err := url.Parse(cmd.url)
	if err != nil {
		return skerr.Wrapf(err, "parsing --%s", urlFlagName)
	}
	tree, err := urlstate.Restore(u)
	if err != nil {
		return err
	}
	if tree == nil {
		return skerr.Fmt("%q has no data parameter", cmd.url)
	}
	return writeJSON(stdout(c), cmd.out, tree)
}

type inspectCmd struct {
	inputFlags
	top int
}

// InspectCommand returns a [*cli.Command] that prints a summary of a trace
// and the functions with the most self time.
func InspectCommand() *cli.Command {
	cmd := &inspectCmd{}
	return &cli.Command{
		Name:  "inspect",
		Usage: "flamecli inspect --in trace.json --top 10",
		Flags: append(cmd.inputFlags.flags(), &cli.IntFlag{
			Name:        topFlagName,
			Value:       10,
			Usage:       "number of functions to list",
			Destination: &cmd.top,
		}),
		Action: cmd.action,
	}
}

func (cmd *inspectCmd) action(c *cli.Context) error {
	urfavecli.LogFlags(c)
	tree, in, err := cmd.parse(c.Context, stdin(c))
	if err != nil {
		return err
	}
	w := stdout(c)
	stats := trace.TreeStats(tree)
	if err := printf(w, "Trace: %s (%s)\nNodes: %d\nMax depth: %d\nTotal: %.2fms\n",
		in.Name, humanize.Bytes(uint64(len(in.Text))), stats.Nodes, stats.MaxDepth, stats.RootValue); err != nil {
		return err
	}

	selfTimes := trace.SelfTimes(tree)
	if cmd.top > 0 && len(selfTimes) > cmd.top {
		selfTimes = selfTimes[:cmd.top]
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Function", "Self (ms)", "Calls"})
	for _, ft := range selfTimes {
		table.Append([]string{ft.Name, strconv.FormatFloat(ft.Self, 'f', 2, 64), strconv.Itoa(ft.Calls)})
	}
	table.Render()
	return nil
}

type snippetCmd struct {
	os     string
	script string
}

// SnippetCommand returns a [*cli.Command] that prints the command that
// profiles a script and copies the trace to the clipboard.
func SnippetCommand() *cli.Command {
	cmd := &snippetCmd{}
	return &cli.Command{
		Name:  "snippet",
		Usage: "flamecli snippet --os linux --script app.py",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        osFlagName,
				Value:       string(help.Mac),
				Usage:       "one of mac, linux, windows",
				Destination: &cmd.os,
			},
			&cli.StringFlag{
				Name:        scriptFlagName,
				Value:       help.DefaultScript,
				Usage:       "the Python script to profile",
				Destination: &cmd.script,
			},
		},
		Action: cmd.action,
	}
}

func (cmd *snippetCmd) action(c *cli.Context) error {
	os, err := help.ParseOS(cmd.os)
	if err != nil {
		return err
	}
	return printf(stdout(c), "%s\n", help.Snippet(os, cmd.script))
}
