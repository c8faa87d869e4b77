package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/runger/beacon/internal/config"
	"github.com/runger/beacon/internal/result"
)

var (
	searchJSON  bool
	searchLocal bool
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a one-shot query and print the results",
	Long: `Run a single query through the full pipeline and print the
ranked results without opening the picker.

Examples:
  beacon search fire            # Find applications matching "fire"
  beacon search "2+2"           # Inline arithmetic
  beacon search "g golang"      # Web shortcut row
  beacon search --json term     # Machine-readable output`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchLocal, "local", false, "run the engine in-process instead of using the daemon")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = engine default)")
	rootCmd.AddCommand(searchCmd)
}

type searchJSONOutput struct {
	Results []result.Result `json:"results"`
	Total   int             `json:"total"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ValidateAndFix()

	logger := newLogger(cfg)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	be, err := newBackend(ctx, cfg, config.DefaultPaths(), logger, searchLocal)
	if err != nil {
		return err
	}
	defer be.Close()

	results, err := be.Search(ctx, args[0])
	if err != nil {
		return err
	}
	if searchLimit > 0 && searchLimit < len(results) {
		results = results[:searchLimit]
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(searchJSONOutput{Results: results, Total: len(results)})
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	printResults(results)
	return nil
}

// printResults renders one row per result, truncated to the terminal.
func printResults(results []result.Result) {
	width := termWidth()
	for _, r := range results {
		badge := fmt.Sprintf("%s[%s]%s", colorCyan, r.Kind, colorReset)
		line := r.Name
		if r.Description != "" {
			line += "  " + colorDim + r.Description + colorReset
		}
		// Badge width without color codes: kind plus brackets.
		avail := width - runewidth.StringWidth(r.Kind.String()) - 3
		if avail > 0 {
			line = runewidth.Truncate(line, avail, "…")
		}
		fmt.Printf("%s %s\n", badge, line)
	}
}
