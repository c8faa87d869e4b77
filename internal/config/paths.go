// Package config provides configuration management for beacon.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Paths holds the directory layout for beacon's files.
type Paths struct {
	// ConfigDir is the directory for configuration files (~/.config/beacon)
	ConfigDir string

	// DataDir is the directory for data files (~/.local/share/beacon)
	DataDir string

	// RuntimeDir is the directory for runtime files like sockets and lock files
	RuntimeDir string
}

// DefaultPaths returns the default paths based on the XDG Base Directory
// spec. On Windows it uses %APPDATA% / %LOCALAPPDATA% instead.
func DefaultPaths() *Paths {
	home := homeDir()

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(home, "AppData", "Local")
		}
		return &Paths{
			ConfigDir:  filepath.Join(appData, "beacon"),
			DataDir:    filepath.Join(localAppData, "beacon"),
			RuntimeDir: filepath.Join(localAppData, "beacon", "run"),
		}
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = filepath.Join(home, ".beacon", "run")
	} else {
		runtimeDir = filepath.Join(runtimeDir, "beacon")
	}

	return &Paths{
		ConfigDir:  filepath.Join(configHome, "beacon"),
		DataDir:    filepath.Join(dataHome, "beacon"),
		RuntimeDir: runtimeDir,
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// DatabaseFile returns the path to the usage database.
func (p *Paths) DatabaseFile() string {
	return filepath.Join(p.DataDir, "usage.db")
}

// SocketFile returns the path to the daemon socket.
func (p *Paths) SocketFile() string {
	return filepath.Join(p.RuntimeDir, "daemon.sock")
}

// LockFile returns the path to the daemon lock file.
func (p *Paths) LockFile() string {
	return filepath.Join(p.RuntimeDir, "beacon.lock")
}

// LogFile returns the default daemon log file path.
func (p *Paths) LogFile() string {
	return filepath.Join(p.DataDir, "daemon.log")
}

// EnsureDirectories creates all beacon directories if they do not exist.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ConfigDir, p.DataDir, p.RuntimeDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
