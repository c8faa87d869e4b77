package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/runger/beacon/internal/catalog"
	"github.com/runger/beacon/internal/config"
	"github.com/runger/beacon/internal/discovery"
	"github.com/runger/beacon/internal/engine"
	"github.com/runger/beacon/internal/intent"
	"github.com/runger/beacon/internal/launch"
	"github.com/runger/beacon/internal/transport"
	"github.com/runger/beacon/internal/usage"
)

// Version is set at build time.
var Version = "dev"

// Server is the beacon daemon. It scans the application catalog, serves
// queries over the IPC transport, and records activations.
type Server struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger

	tr         transport.Transport
	httpServer *http.Server
	lock       *LockFile

	store   *usage.Store
	holder  *catalog.Holder
	eng     *engine.Engine
	scanner *discovery.Scanner
	watcher *discovery.Watcher

	startTime    time.Time
	lastActivity time.Time
	idleTimeout  time.Duration
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
	mu           sync.RWMutex
}

// ServerConfig contains configuration options for the daemon server.
type ServerConfig struct {
	// Config is the loaded beacon configuration (required).
	Config *config.Config

	// Paths is the path layout (optional, uses defaults if nil).
	Paths *config.Paths

	// Logger is the structured logger (optional, uses default if nil).
	Logger *slog.Logger

	// Transport overrides the platform IPC transport (optional).
	Transport transport.Transport

	// Store is the usage store (required).
	Store *usage.Store
}

// NewServer creates a daemon server with the given configuration.
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Config == nil {
		return nil, fmt.Errorf("beacon config is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("usage store is required")
	}

	paths := cfg.Paths
	if paths == nil {
		paths = config.DefaultPaths()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tr := cfg.Transport
	if tr == nil {
		tr = transport.New(cfg.Config.Daemon.SocketPath)
	}

	idleTimeout := time.Duration(cfg.Config.Daemon.IdleTimeoutMins) * time.Minute

	holder := catalog.NewHolder()
	eng := engine.New(holder, cfg.Store,
		engine.WithMaxResults(cfg.Config.Search.MaxResults),
		engine.WithFuzzySearch(cfg.Config.Search.FuzzySearch),
		engine.WithWebSearcher(webSearcherFromConfig(cfg.Config)),
	)

	now := time.Now()
	return &Server{
		cfg:          cfg.Config,
		paths:        paths,
		logger:       logger,
		tr:           tr,
		store:        cfg.Store,
		holder:       holder,
		eng:          eng,
		scanner:      discovery.NewScanner(cfg.Config.Search, logger),
		startTime:    now,
		lastActivity: now,
		idleTimeout:  idleTimeout,
		shutdownChan: make(chan struct{}),
	}, nil
}

// webSearcherFromConfig builds the web shortcut matcher with any
// user-defined shortcuts from config appended to the built-ins.
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

// Engine returns the query engine, for direct in-process use.
func (s *Server) Engine() *engine.Engine {
	return s.eng
}

// Start runs the daemon until ctx is cancelled or a fatal error occurs.
// It acquires the single-instance lock, performs the initial catalog
// scan, starts the filesystem watcher, and serves the HTTP API over the
// IPC transport.
func (s *Server) Start(ctx context.Context) error {
	if err := s.paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	s.lock = NewLockFile(s.paths.LockFile())
	if err := s.lock.Acquire(); err != nil {
		return err
	}

	if _, err := s.refresh(ctx); err != nil {
		// A failed initial scan leaves an empty catalog; the daemon still
		// serves calculator, web, and action queries.
		s.logger.Warn("initial catalog scan failed", "error", err)
	}

	s.startWatcher()

	listener, err := s.tr.Listen()
	if err != nil {
		s.lock.Release()
		return err
	}

	handler := NewHandler(HandlerDependencies{
		Searcher:   s.eng,
		Recorder:   s.store,
		Activator:  launch.New(s.logger),
		RefreshFn:  s.refresh,
		Status:     s.statusSnapshot,
		Logger:     s.logger,
		OnActivity: s.touchActivity,
	})
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("daemon starting",
		"socket", s.tr.SocketPath(),
		"pid", os.Getpid(),
		"version", Version,
	)

	if s.idleTimeout > 0 {
		s.wg.Add(1)
		go s.watchIdle(ctx)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		} else {
			errChan <- nil
		}
	}()

	select {
	case <-ctx.Done():
		s.Shutdown()
		<-errChan
		return nil
	case err := <-errChan:
		s.Shutdown()
		return err
	}
}

// Shutdown gracefully stops the daemon. Safe to call more than once.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.logger.Info("daemon shutting down")

		close(s.shutdownChan)

		if s.watcher != nil {
			if err := s.watcher.Close(); err != nil {
				s.logger.Warn("failed to close watcher", "error", err)
			}
		}

		if s.httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Warn("http shutdown", "error", err)
			}
			cancel()
		}

		s.wg.Wait()

		if err := s.tr.Close(); err != nil {
			s.logger.Warn("failed to close transport", "error", err)
		}

		if s.lock != nil {
			if err := s.lock.Release(); err != nil {
				s.logger.Warn("failed to release lock", "error", err)
			}
		}

		s.logger.Info("daemon stopped")
	})
}

// refresh rescans the catalog and swaps in the new snapshot.
func (s *Server) refresh(ctx context.Context) (int, error) {
	snap, err := s.scanner.Scan(ctx)
	if err != nil {
		return 0, err
	}
	s.holder.Replace(snap)
	s.logger.Info("catalog refreshed", "entries", snap.Len())
	return snap.Len(), nil
}

// startWatcher begins watching application directories and configured
// folders, triggering a rescan when they change.
func (s *Server) startWatcher() {
	dirs := make([]string, 0, len(s.scanner.AppDirs)+len(s.scanner.Folders))
	dirs = append(dirs, s.scanner.AppDirs...)
	dirs = append(dirs, s.scanner.Folders...)

	w, err := discovery.NewWatcher(dirs, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.refresh(ctx); err != nil {
			s.logger.Warn("watcher-triggered rescan failed", "error", err)
		}
	}, s.logger)
	if err != nil {
		s.logger.Warn("filesystem watcher unavailable", "error", err)
		return
	}
	s.watcher = w
}

// statusSnapshot reports daemon state for the /status endpoint.
func (s *Server) statusSnapshot() StatusResponse {
	return StatusResponse{
		Version:       Version,
		PID:           os.Getpid(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		CatalogSize:   s.holder.Load().Len(),
		SocketPath:    s.tr.SocketPath(),
	}
}

// touchActivity updates the last activity timestamp.
func (s *Server) touchActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// lastActivityTime returns the last activity timestamp.
func (s *Server) lastActivityTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// watchIdle shuts the daemon down after the configured idle period.
func (s *Server) watchIdle(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdownChan:
			return
		case <-ticker.C:
			since := time.Since(s.lastActivityTime())
			if since > s.idleTimeout {
				s.logger.Info("idle timeout reached",
					"idle_duration", since,
					"timeout", s.idleTimeout,
				)
				go s.Shutdown()
				return
			}
		}
	}
}
