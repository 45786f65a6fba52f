package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and socket configuration.
type Paths struct {
	WorkingDir string `toml:"working_dir"`
	LogDir     string `toml:"log_dir"`
	SocketPath string `toml:"socket_path"`
	// NotifySocketPath is where the default out-of-process sink writes
	// NDJSON notifications. Empty disables the file sink.
	NotifySocketPath string `toml:"notify_socket_path"`
}

// Mother contains configuration for the remote catalog (cloud database).
type Mother struct {
	Endpoint       string `toml:"endpoint"`
	Role           string `toml:"role"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Audio contains configuration for the render clock.
type Audio struct {
	SampleRate   int     `toml:"sample_rate"`
	DefaultTempo float64 `toml:"default_tempo"`
}

// Bus contains configuration for the request/notification bus.
type Bus struct {
	DeliveryBuffer int `toml:"delivery_buffer"`
	RequestTimeout int `toml:"request_timeout"`
}

// Workers contains configuration for the background worker processes.
type Workers struct {
	InboxSize   int `toml:"inbox_size"`
	SyncTimeout int `toml:"sync_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Cadenza.
//
// Configuration sections by subsystem:
//   - Paths: working directory (daughter db, lock file), logs, sockets
//   - Mother: remote catalog endpoint and request timeout
//   - Audio: render clock sample rate and initial tempo
//   - Bus: notification delivery buffer and default request timeout
//   - Workers: worker inbox sizing and synchronous wrapper timeout
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Mother  Mother  `toml:"mother"`
	Audio   Audio   `toml:"audio"`
	Bus     Bus     `toml:"bus"`
	Workers Workers `toml:"workers"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/cadenza/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cadenza.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for engine operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the daughter SQLite database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.WorkingDir, "daughter.db")
}

// LockPath returns the location of the single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.WorkingDir, "cadenza.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
