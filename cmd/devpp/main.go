// Package main is the entry point for the devpp CLI.
//
// devpp turns a devcontainer.json and its local features into a plain
// multi-stage Containerfile. All functionality lives in internal/cli.
//
// Build-time variables (version, commit, date) are injected via ldflags.
// During development, they default to "dev", "none", and "unknown".
package main

import (
	"github.com/mmr-tortoise/devpp/internal/cli"
)

// version, commit, and date are set at build time via
// -ldflags "-X main.version=...". They back the --version flag output.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
