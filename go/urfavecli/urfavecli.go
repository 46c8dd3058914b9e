// Package urfavecli contains helpers for programs built on
// github.com/urfave/cli/v2.
package urfavecli

import (
	"sort"

	cli "github.com/urfave/cli/v2"

	"go.skia.org/flamechart/go/sklog"
)

// LogFlags logs the value of every flag set on the command line for the
// running command, in sorted order.
func LogFlags(c *cli.Context) {
	names := c.FlagNames()
	sort.Strings(names)
	for _, name := range names {
		sklog.Infof("Flags: --%s=%v", name, c.Value(name))
	}
}
