// Package config provides configuration management for the editor agent.
// Values come from built-in defaults, then an optional YAML file, then
// environment variables, each layer overriding the one before.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// Default values
	DefaultPort         = 8797
	DefaultLogLevel     = "info"
	DefaultDataDir      = ".genesis-editor"
	DefaultHistoryDepth = 50

	// Environment variable names
	EnvPort         = "GENESIS_PORT"
	EnvLogLevel     = "GENESIS_LOG_LEVEL"
	EnvDataDir      = "GENESIS_DATA_DIR"
	EnvHistoryDepth = "GENESIS_HISTORY_DEPTH"
	EnvConfigFile   = "GENESIS_CONFIG_FILE"

	// Database filename
	DBFilename = "editor.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	ExportDir() string
	HistoryDepth() int
}

// fileConfig is the YAML file layout. Zero values mean "not set".
type fileConfig struct {
	Port         int    `yaml:"port"`
	LogLevel     string `yaml:"log_level"`
	DataDir      string `yaml:"data_dir"`
	HistoryDepth int    `yaml:"history_depth"`
}

// EnvConfig reads configuration from a YAML file and environment variables
type EnvConfig struct {
	port         int
	logLevel     string
	dataDir      string
	historyDepth int
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none
// are named) into the process environment. Missing files are not an error;
// variables already set are left alone.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// New creates a new EnvConfig with defaults, file and environment overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:         DefaultPort,
		logLevel:     DefaultLogLevel,
		dataDir:      defaultDataDir(),
		historyDepth: DefaultHistoryDepth,
	}

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if hd := os.Getenv(EnvHistoryDepth); hd != "" {
		depth, err := strconv.Atoi(hd)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHistoryDepth, err)
		}
		cfg.historyDepth = depth
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *EnvConfig) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if fc.Port != 0 {
		c.port = fc.Port
	}
	if fc.LogLevel != "" {
		c.logLevel = fc.LogLevel
	}
	if fc.DataDir != "" {
		c.dataDir = fc.DataDir
	}
	if fc.HistoryDepth != 0 {
		c.historyDepth = fc.HistoryDepth
	}
	return nil
}

func (c *EnvConfig) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.port)
	}
	if c.historyDepth < 1 {
		return fmt.Errorf("invalid history depth %d: must be at least 1", c.historyDepth)
	}
	return nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// ExportDir is where EDL exports land when a request names no directory.
func (c *EnvConfig) ExportDir() string {
	return filepath.Join(c.dataDir, "exports")
}

// HistoryDepth is the undo/redo stack bound per open project.
func (c *EnvConfig) HistoryDepth() int {
	return c.historyDepth
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
