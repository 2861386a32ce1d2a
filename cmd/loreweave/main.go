// Package main is the entry point for the loreweave CLI.
package main

import (
	"github.com/loreweave/loreweave/internal/cli"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var _ = []string{commit, date}

func main() {
	cli.Execute(version)
}
