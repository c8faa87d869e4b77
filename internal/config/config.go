package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the beacon configuration.
type Config struct {
	Daemon DaemonConfig `yaml:"daemon"`
	Search SearchConfig `yaml:"search"`
	Hotkey HotkeyConfig `yaml:"hotkey"`
	Web    WebConfig    `yaml:"web"`
}

// DaemonConfig holds daemon-related settings.
type DaemonConfig struct {
	SocketPath      string `yaml:"socket_path"`       // Socket path (empty = default from paths)
	LogLevel        string `yaml:"log_level"`         // debug, info, warn, error
	LogFile         string `yaml:"log_file"`          // Log file path (empty = stderr)
	IdleTimeoutMins int    `yaml:"idle_timeout_mins"` // Auto-shutdown after idle (0 = never)
}

// SearchConfig holds query engine settings.
type SearchConfig struct {
	MaxResults      int      `yaml:"max_results"`      // Cap on catalog rows per search
	FuzzySearch     bool     `yaml:"fuzzy_search"`     // Enable the subsequence/substring tiers
	SearchDelayMs   int      `yaml:"search_delay_ms"`  // Keystroke debounce, consumed by the UI
	Folders         []string `yaml:"folders"`          // Extra folders indexed as File entries
	ExcludedFolders []string `yaml:"excluded_folders"` // Folders skipped during discovery
}

// HotkeyConfig holds the activation hotkey. It is consumed by the host
// shell integration, not by the engine.
type HotkeyConfig struct {
	Modifiers []string `yaml:"modifiers"`
	Key       string   `yaml:"key"`
}

// WebShortcut is a user-defined web-search shortcut appended after the
// built-in table.
type WebShortcut struct {
	Prefix string `yaml:"prefix"` // e.g. "ddg" (trailing space implied)
	Name   string `yaml:"name"`   // display name
	URL    string `yaml:"url"`    // base URL the encoded term is appended to
}

// WebConfig holds web-search settings.
type WebConfig struct {
	Shortcuts []WebShortcut `yaml:"shortcuts"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Daemon: DaemonConfig{
			SocketPath:      "",
			LogLevel:        "info",
			LogFile:         "",
			IdleTimeoutMins: 0,
		},
		Search: SearchConfig{
			MaxResults:    8,
			FuzzySearch:   true,
			SearchDelayMs: 150,
		},
		Hotkey: HotkeyConfig{
			Modifiers: []string{"alt"},
			Key:       "space",
		},
		Web: WebConfig{},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	return LoadFromFile(DefaultPaths().ConfigFile())
}

// LoadFromFile loads configuration from the specified file. If the file
// does not exist, defaults are returned.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveToFile(DefaultPaths().ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Get retrieves a configuration value by dot-separated key, for example
// "search.max_results" or "daemon.log_level".
func (c *Config) Get(key string) (string, error) {
	section, field, ok := strings.Cut(key, ".")
	if !ok {
		return "", fmt.Errorf("invalid key %q: expected section.field", key)
	}

	switch section {
	case "daemon":
		return c.getDaemonField(field)
	case "search":
		return c.getSearchField(field)
	case "hotkey":
		return c.getHotkeyField(field)
	default:
		return "", fmt.Errorf("unknown config section %q", section)
	}
}

// Set sets a configuration value by dot-separated key.
func (c *Config) Set(key, value string) error {
	section, field, ok := strings.Cut(key, ".")
	if !ok {
		return fmt.Errorf("invalid key %q: expected section.field", key)
	}

	switch section {
	case "daemon":
		return c.setDaemonField(field, value)
	case "search":
		return c.setSearchField(field, value)
	case "hotkey":
		return c.setHotkeyField(field, value)
	default:
		return fmt.Errorf("unknown config section %q", section)
	}
}

func (c *Config) getDaemonField(field string) (string, error) {
	switch field {
	case "socket_path":
		return c.Daemon.SocketPath, nil
	case "log_level":
		return c.Daemon.LogLevel, nil
	case "log_file":
		return c.Daemon.LogFile, nil
	case "idle_timeout_mins":
		return strconv.Itoa(c.Daemon.IdleTimeoutMins), nil
	default:
		return "", fmt.Errorf("unknown daemon field %q", field)
	}
}

func (c *Config) setDaemonField(field, value string) error {
	switch field {
	case "socket_path":
		c.Daemon.SocketPath = value
	case "log_level":
		if !isValidLogLevel(value) {
			return fmt.Errorf("invalid log level %q", value)
		}
		c.Daemon.LogLevel = value
	case "log_file":
		c.Daemon.LogFile = value
	case "idle_timeout_mins":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid idle_timeout_mins %q", value)
		}
		c.Daemon.IdleTimeoutMins = n
	default:
		return fmt.Errorf("unknown daemon field %q", field)
	}
	return nil
}

func (c *Config) getSearchField(field string) (string, error) {
	switch field {
	case "max_results":
		return strconv.Itoa(c.Search.MaxResults), nil
	case "fuzzy_search":
		return strconv.FormatBool(c.Search.FuzzySearch), nil
	case "search_delay_ms":
		return strconv.Itoa(c.Search.SearchDelayMs), nil
	case "folders":
		return strings.Join(c.Search.Folders, ","), nil
	case "excluded_folders":
		return strings.Join(c.Search.ExcludedFolders, ","), nil
	default:
		return "", fmt.Errorf("unknown search field %q", field)
	}
}

func (c *Config) setSearchField(field, value string) error {
	switch field {
	case "max_results":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid max_results %q", value)
		}
		c.Search.MaxResults = n
	case "fuzzy_search":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid fuzzy_search %q", value)
		}
		c.Search.FuzzySearch = b
	case "search_delay_ms":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid search_delay_ms %q", value)
		}
		c.Search.SearchDelayMs = n
	case "folders":
		c.Search.Folders = splitList(value)
	case "excluded_folders":
		c.Search.ExcludedFolders = splitList(value)
	default:
		return fmt.Errorf("unknown search field %q", field)
	}
	return nil
}

func (c *Config) getHotkeyField(field string) (string, error) {
	switch field {
	case "modifiers":
		return strings.Join(c.Hotkey.Modifiers, "+"), nil
	case "key":
		return c.Hotkey.Key, nil
	default:
		return "", fmt.Errorf("unknown hotkey field %q", field)
	}
}

func (c *Config) setHotkeyField(field, value string) error {
	switch field {
	case "modifiers":
		c.Hotkey.Modifiers = strings.Split(strings.ToLower(value), "+")
	case "key":
		c.Hotkey.Key = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown hotkey field %q", field)
	}
	return nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ListKeys returns the user-facing configuration keys.
func ListKeys() []string {
	return []string{
		"daemon.socket_path",
		"daemon.log_level",
		"daemon.log_file",
		"daemon.idle_timeout_mins",
		"search.max_results",
		"search.fuzzy_search",
		"search.search_delay_ms",
		"search.folders",
		"search.excluded_folders",
		"hotkey.modifiers",
		"hotkey.key",
	}
}

// ValidationWarning describes a config value that was fixed up at load.
type ValidationWarning struct {
	Field   string
	Message string
}

// ValidateAndFix clamps out-of-range values to their defaults. Validation
// never prevents startup; max_results = 0 is a legal degenerate value that
// suppresses catalog rows.
func (c *Config) ValidateAndFix() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Search.MaxResults < 0 {
		warnings = append(warnings, ValidationWarning{
			Field:   "search.max_results",
			Message: fmt.Sprintf("negative value %d reset to 8", c.Search.MaxResults),
		})
		c.Search.MaxResults = 8
	}
	if c.Search.SearchDelayMs < 0 {
		warnings = append(warnings, ValidationWarning{
			Field:   "search.search_delay_ms",
			Message: fmt.Sprintf("negative value %d reset to 150", c.Search.SearchDelayMs),
		})
		c.Search.SearchDelayMs = 150
	}
	if !isValidLogLevel(c.Daemon.LogLevel) {
		warnings = append(warnings, ValidationWarning{
			Field:   "daemon.log_level",
			Message: fmt.Sprintf("unknown level %q reset to info", c.Daemon.LogLevel),
		})
		c.Daemon.LogLevel = "info"
	}
	if c.Daemon.IdleTimeoutMins < 0 {
		warnings = append(warnings, ValidationWarning{
			Field:   "daemon.idle_timeout_mins",
			Message: fmt.Sprintf("negative value %d reset to 0", c.Daemon.IdleTimeoutMins),
		})
		c.Daemon.IdleTimeoutMins = 0
	}

	return warnings
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
