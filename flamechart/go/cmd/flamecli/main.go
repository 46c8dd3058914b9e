// flamecli converts pyinstrument traces into flame chart trees and links.
package main

import (
	"os"

	"go.skia.org/flamechart/flamechart/go/flamecli"
	"go.skia.org/flamechart/go/sklog"
)

func main() {
	if err := flamecli.NewApp().Run(os.Args); err != nil {
		sklog.Fatal(err)
	}
}
