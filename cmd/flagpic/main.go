// flagpic is a CLI tool that looks up country information by code and builds
// flag profile pictures.
package main

import (
	"github.com/hightemp/flagpic/internal/cli"
)

// Build information (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.BuildTime = buildTime
	cli.Execute()
}
