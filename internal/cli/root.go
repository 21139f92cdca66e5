// Package cli provides the command-line interface for deckpilot.
package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo carries ldflags build metadata.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// NewRootCmd creates the root command for deckpilot.
func NewRootCmd(info BuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:   "deckpilot",
		Short: "Drive a web slide deck full-screen across displays",
		Long: `deckpilot drives a Google Slides presentation full-screen on configured
displays, exposes an HTTP control API for remote operators, and can mirror
operator commands to backup machines for live-event failover.`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd(info))

	return root
}

func newVersionCmd(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Printf("deckpilot %s (commit %s, built %s, %s)\n",
				info.Version, info.Commit, info.BuildDate, runtime.Version())
		},
	}
}
