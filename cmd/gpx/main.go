// Package main implements the go-path-explain CLI (gpx).
// It explains analyzer error traces recorded as YAML fixtures and dumps the
// syntax shapes of C snippets.
package main

import (
	"os"

	"github.com/l3aro/go-path-explain/cmd/gpx/commands"
)

var (
	version   = "dev"
	buildTime = ""
)

func main() {
	commands.RootCmd.Flags().BoolP("version", "v", false, "Print version information")
	commands.RootCmd.SetVersionTemplate(`gpx version {{.Version}}
`)
	commands.RootCmd.Version = version
	if buildTime != "" {
		commands.RootCmd.Version = version + " (built " + buildTime + ")"
	}

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
