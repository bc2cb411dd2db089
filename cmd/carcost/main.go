// Package main is the entry point for the carcost CLI.
package main

import (
	"os"

	"github.com/Simplici0/carcost/cmd/carcost/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
