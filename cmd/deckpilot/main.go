package main

import (
	"os"

	"github.com/deckpilot/deckpilot/internal/cli"
)

// Build-time variables (set via ldflags).
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	root := cli.NewRootCmd(cli.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
	})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
