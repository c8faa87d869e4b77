package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/beacon/internal/config"
	"github.com/runger/beacon/internal/daemon"
	"github.com/runger/beacon/internal/ipc"
	"github.com/runger/beacon/internal/usage"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the background daemon",
	Long: `Manage the beacon daemon that keeps the application catalog warm
and serves queries over a local socket.

The daemon starts on demand when the picker first connects, so these
commands are mostly useful for debugging and service management.`,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon in the background",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStop,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStatus,
}

var daemonRunCmd = &cobra.Command{
	Use:    "run",
	Short:  "Run the daemon in the foreground",
	Args:   cobra.NoArgs,
	Hidden: true,
	RunE:   runDaemonForeground,
}

func init() {
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonRunCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ValidateAndFix()

	socketPath := ipc.SocketPath(cfg.Daemon.SocketPath)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if ipc.IsDaemonRunning(socketPath) {
		fmt.Printf("Daemon already running (socket: %s)\n", socketPath)
		return nil
	}
	if err := ipc.EnsureDaemon(ctx, socketPath, 5*time.Second); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	fmt.Printf("%sDaemon started%s (socket: %s)\n", colorGreen, colorReset, socketPath)
	return nil
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	paths := config.DefaultPaths()

	pid, held, err := daemon.ReadHeldPID(paths.LockFile())
	if err != nil {
		return fmt.Errorf("failed to read lock file: %w", err)
	}
	if !held {
		fmt.Println("Daemon is not running.")
		return nil
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find daemon process %d: %w", pid, err)
	}
	if runtime.GOOS == "windows" {
		err = proc.Kill()
	} else {
		err = proc.Signal(syscall.SIGTERM)
	}
	if err != nil {
		return fmt.Errorf("failed to stop daemon (PID %d): %w", pid, err)
	}

	fmt.Printf("%sDaemon stopped%s (PID %d)\n", colorGreen, colorReset, pid)
	return nil
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ValidateAndFix()

	socketPath := ipc.SocketPath(cfg.Daemon.SocketPath)
	client := ipc.NewClient(socketPath)
	defer client.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	status, err := client.Status(ctx)
	if err != nil {
		fmt.Printf("%sDaemon is not running%s (socket: %s)\n", colorDim, colorReset, socketPath)
		return nil
	}

	fmt.Printf("%sDaemon is running%s\n", colorGreen, colorReset)
	fmt.Printf("  Version:  %s\n", status.Version)
	fmt.Printf("  PID:      %d\n", status.PID)
	fmt.Printf("  Uptime:   %s\n", (time.Duration(status.UptimeSeconds) * time.Second).String())
	fmt.Printf("  Catalog:  %d entries\n", status.CatalogSize)
	fmt.Printf("  Socket:   %s\n", status.SocketPath)
	return nil
}

// runDaemonForeground runs the daemon in the current process until it
// receives SIGINT or SIGTERM. The beacond binary and the hidden
// "daemon run" subcommand share this path.
func runDaemonForeground(cmd *cobra.Command, args []string) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return RunDaemon(parent)
}

// RunDaemon builds and runs a foreground daemon with signal handling.
func RunDaemon(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ValidateAndFix()

	paths := config.DefaultPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	logger := newLogger(cfg)

	store, err := usage.Open(paths.DatabaseFile())
	if err != nil {
		return fmt.Errorf("failed to open usage database: %w", err)
	}
	defer store.Close()

	srv, err := daemon.NewServer(&daemon.ServerConfig{
		Config: cfg,
		Paths:  paths,
		Logger: logger,
		Store:  store,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}
