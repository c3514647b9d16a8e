// Package main provides the entry point for the globalsearch CLI.
package main

import (
	"os"

	"github.com/ravi-m-fleetenable/global-search/cmd/globalsearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
