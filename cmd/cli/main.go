// Package main is the entry point for the spot-advisor CLI.
package main

import (
	"os"

	"spot-advisor/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
