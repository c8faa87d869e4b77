package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/runger/beacon/internal/config"
	"github.com/runger/beacon/internal/picker"
)

var (
	runLocal bool
	runQuery string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the interactive launcher",
	Long: `Open the interactive launcher picker.

Type to search; Enter activates the selected result, Esc cancels.
The picker talks to the beacon daemon, spawning it on demand; with
--local it runs the whole engine in-process instead.`,
	Args: cobra.NoArgs,
	RunE: runPicker,
}

func init() {
	runCmd.Flags().BoolVar(&runLocal, "local", false, "run the engine in-process instead of using the daemon")
	runCmd.Flags().StringVarP(&runQuery, "query", "q", "", "initial query")
	rootCmd.Flags().BoolVar(&runLocal, "local", false, "run the engine in-process instead of using the daemon")
	rootCmd.Flags().StringVarP(&runQuery, "query", "q", "", "initial query")
	rootCmd.AddCommand(runCmd)
}

func runPicker(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ValidateAndFix()

	logger := newLogger(cfg)
	paths := config.DefaultPaths()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	be, err := newBackend(ctx, cfg, paths, logger, runLocal)
	if err != nil {
		return err
	}
	defer be.Close()

	lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).ColorProfile())

	opts := []picker.Option{
		picker.WithDebounce(time.Duration(cfg.Search.SearchDelayMs) * time.Millisecond),
	}
	if runQuery != "" {
		opts = append(opts, picker.WithInitialQuery(runQuery))
	}

	searcher := picker.SearcherFunc(be.Search)
	model := picker.NewModel(searcher, opts...)

	program := tea.NewProgram(model)
	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("picker failed: %w", err)
	}

	final, ok := finalModel.(picker.Model)
	if !ok || final.Choice() == nil {
		return nil // Cancelled.
	}

	activateCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := be.Activate(activateCtx, *final.Choice()); err != nil {
		return fmt.Errorf("failed to activate %q: %w", final.Choice().Name, err)
	}
	return nil
}
