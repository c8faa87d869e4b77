package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runger/beacon/internal/config"
	"github.com/runger/beacon/internal/usage"
)

var usageTopN int

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Inspect launch history",
}

var usageTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the most frequently launched entries",
	Args:  cobra.NoArgs,
	RunE:  runUsageTop,
}

func init() {
	usageTopCmd.Flags().IntVarP(&usageTopN, "count", "n", 10, "number of entries to show")
	usageCmd.AddCommand(usageTopCmd)
	rootCmd.AddCommand(usageCmd)
}

func runUsageTop(cmd *cobra.Command, args []string) error {
	paths := config.DefaultPaths()

	store, err := usage.Open(paths.DatabaseFile())
	if err != nil {
		return fmt.Errorf("failed to open usage database: %w", err)
	}
	defer store.Close()

	entries := store.Top(usageTopN)
	if len(entries) == 0 {
		fmt.Println("No launch history yet.")
		return nil
	}

	for i, e := range entries {
		fmt.Printf("%s%2d.%s %-40s %s%d%s\n",
			colorDim, i+1, colorReset,
			e.Name,
			colorCyan, e.Count, colorReset,
		)
	}
	return nil
}
