// Package cmd implements the beacon CLI.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "beacon",
	Short: "keyboard-driven application launcher",
	Long: `beacon - a keyboard-driven quick launcher
  - type a few letters to find and start applications
  - arithmetic is evaluated inline, "g <term>" searches the web
  - "lock", "sleep" and friends trigger system actions`,
	// Running beacon with no subcommand opens the picker.
	RunE: runPicker,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
