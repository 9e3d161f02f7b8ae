// Package config holds the caff command line configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the default configuration file name, looked up in the user
// config directory.
const FileName = "caff.toml"

// Config is the CLI configuration.
type Config struct {
	// LenientMagic keeps decoding archives whose signature is not "CAFF".
	LenientMagic bool `toml:"lenient_magic"`

	// LogLevel is one of "debug", "info", "warn" or "error".
	LogLevel string `toml:"log_level"`

	// Workers bounds how many archives are decoded concurrently.
	// Zero or negative means runtime.NumCPU().
	Workers int `toml:"workers"`

	// MaxTrailingSize caps the trailing bytes accepted after the last
	// payload; 0 disables the cap.
	MaxTrailingSize uint64 `toml:"max_trailing_size"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel: "warn",
		Workers:  runtime.NumCPU(),
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from r, starting from the defaults.
// Unknown keys are rejected.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Write encodes a Config to w.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config at path. An empty path falls back to FileName in
// the user config directory, and a missing default file yields Default().
func Load(path string) (*Config, error) {
	if path != "" {
		return ReadFromFile(path)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return Default(), nil //nolint:nilerr // no config dir, no config file
	}
	cfg, err := ReadFromFile(filepath.Join(dir, "caff", FileName))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Level parses LogLevel. An empty level means warn.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// WorkerCount returns Workers, or runtime.NumCPU() when it is not positive.
func (c *Config) WorkerCount() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}
