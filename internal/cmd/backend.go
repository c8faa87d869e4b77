package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/runger/beacon/internal/config"
	"github.com/runger/beacon/internal/discovery"
	"github.com/runger/beacon/internal/engine"
	"github.com/runger/beacon/internal/intent"
	"github.com/runger/beacon/internal/ipc"
	"github.com/runger/beacon/internal/launch"
	"github.com/runger/beacon/internal/result"
	"github.com/runger/beacon/internal/usage"
)

// backend answers queries and performs activations, either through the
// daemon or fully in-process.
type backend interface {
	Search(ctx context.Context, query string) ([]result.Result, error)
	Activate(ctx context.Context, res result.Result) error
	Close() error
}

// daemonBackend proxies to a running daemon over IPC.
type daemonBackend struct {
	client *ipc.Client
}

func (b *daemonBackend) Search(ctx context.Context, query string) ([]result.Result, error) {
	return b.client.Search(ctx, query, 0)
}

func (b *daemonBackend) Activate(ctx context.Context, res result.Result) error {
	_, err := b.client.Activate(ctx, res)
	return err
}

func (b *daemonBackend) Close() error {
	return b.client.Close()
}

// localBackend runs the engine in-process: it scans the catalog once at
// startup and launches results itself.
type localBackend struct {
	eng      *engine.Engine
	store    *usage.Store
	launcher *launch.Launcher
}

func (b *localBackend) Search(_ context.Context, query string) ([]result.Result, error) {
	return b.eng.Search(query), nil
}

func (b *localBackend) Activate(ctx context.Context, res result.Result) error {
	if err := b.launcher.Activate(ctx, res); err != nil {
		return err
	}
	if b.store != nil && (res.Kind == result.KindApp || res.Kind == result.KindFile) {
		// Best effort; a recording failure does not undo the launch.
		_ = b.store.Record(ctx, res.Name)
	}
	return nil
}

func (b *localBackend) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}

// newDaemonBackend connects to the daemon, spawning it when needed.
func newDaemonBackend(ctx context.Context, cfg *config.Config) (backend, error) {
	socketPath := ipc.SocketPath(cfg.Daemon.SocketPath)
	if err := ipc.EnsureDaemon(ctx, socketPath, 5*time.Second); err != nil {
		return nil, err
	}
	return &daemonBackend{client: ipc.NewClient(socketPath)}, nil
}

// newLocalBackend builds the full in-process pipeline.
func newLocalBackend(ctx context.Context, cfg *config.Config, paths *config.Paths, logger *slog.Logger) (backend, error) {
	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}

	store, err := usage.Open(paths.DatabaseFile())
	if err != nil {
		return nil, fmt.Errorf("open usage store: %w", err)
	}

	scanner := discovery.NewScanner(cfg.Search, logger)
	snap, err := scanner.Scan(ctx)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("scan catalog: %w", err)
	}

	eng := engine.New(nil, store,
		engine.WithMaxResults(cfg.Search.MaxResults),
		engine.WithFuzzySearch(cfg.Search.FuzzySearch),
		engine.WithWebSearcher(webSearcherFromConfig(cfg)),
	)
	eng.Catalog().Replace(snap)

	return &localBackend{
		eng:      eng,
		store:    store,
		launcher: launch.New(logger),
	}, nil
}

// webSearcherFromConfig appends user shortcuts from config to the
// built-in web shortcuts.
func webSearcherFromConfig(cfg *config.Config) *intent.WebSearcher {
	extra := make([]intent.Shortcut, 0, len(cfg.Web.Shortcuts))
	for _, s := range cfg.Web.Shortcuts {
		prefix := strings.TrimSpace(s.Prefix)
		if prefix == "" || s.URL == "" {
			continue
		}
		// Shortcut prefixes must carry the trailing space that separates
		// them from the search term.
		extra = append(extra, intent.Shortcut{
			Prefixes: []string{strings.ToLower(prefix) + " "},
			Name:     s.Name,
			URL:      s.URL,
		})
	}
	return intent.NewWebSearcher(extra...)
}

// newBackend picks the daemon when possible and falls back to local.
func newBackend(ctx context.Context, cfg *config.Config, paths *config.Paths, logger *slog.Logger, forceLocal bool) (backend, error) {
	if !forceLocal {
		if b, err := newDaemonBackend(ctx, cfg); err == nil {
			return b, nil
		} else {
			logger.Debug("daemon unavailable, falling back to local engine", "error", err)
		}
	}
	return newLocalBackend(ctx, cfg, paths, logger)
}

// newLogger builds the CLI logger honoring the configured level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Daemon.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
