// Package main is the entry point for the beacon CLI and picker.
package main

import (
	"os"

	"github.com/runger/beacon/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
