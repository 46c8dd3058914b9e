// flamechart is a web server that displays pyinstrument traces as flame
// graphs.
package main

import (
	"flag"

	"go.skia.org/flamechart/go/baseapp"
)

var configPath = flag.String("config", "", "Path to the JSON5 instance config. Defaults are used if empty.")

func main() {
	baseapp.Serve(newServer, []string{"flamechart.skia.org"})
}
