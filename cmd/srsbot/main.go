// Package main provides the entry point for the srsbot CLI.
package main

import (
	"os"

	"github.com/raphaelgruber/srsbot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
