package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/beacon/internal/config"
	"github.com/runger/beacon/internal/discovery"
	"github.com/runger/beacon/internal/ipc"
)

var refreshCmd = &cobra.Command{
	Use:     "refresh",
	Aliases: []string{"index"},
	Short:   "Rescan applications and indexed folders",
	Long: `Rescan the application directories and configured folders.

When the daemon is running the rescan happens in the daemon and the
refreshed catalog serves subsequent queries. Without a daemon this
performs a one-off scan and reports what it found.`,
	Args: cobra.NoArgs,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ValidateAndFix()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	socketPath := ipc.SocketPath(cfg.Daemon.SocketPath)
	if ipc.IsDaemonRunning(socketPath) {
		client := ipc.NewClient(socketPath)
		defer client.Close()

		start := time.Now()
		entries, err := client.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("daemon refresh failed: %w", err)
		}
		fmt.Printf("%sCatalog refreshed%s: %d entries in %s\n",
			colorGreen, colorReset, entries, time.Since(start).Round(time.Millisecond))
		return nil
	}

	logger := newLogger(cfg)
	scanner := discovery.NewScanner(cfg.Search, logger)

	start := time.Now()
	snap, err := scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	fmt.Printf("%sScanned%s: %d entries in %s (no daemon running)\n",
		colorGreen, colorReset, snap.Len(), time.Since(start).Round(time.Millisecond))
	return nil
}
