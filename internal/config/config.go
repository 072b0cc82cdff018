// Package config handles loading and managing chatvault configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DataConfig holds data storage configuration.
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// ImportConfig holds archive import configuration.
type ImportConfig struct {
	ArchivePath  string `toml:"archive_path"`  // source chat.db
	ContactsPath string `toml:"contacts_path"` // optional vCard file
	BatchSize    int    `toml:"batch_size"`    // messages per committed batch
}

// AskConfig holds answering-model configuration.
type AskConfig struct {
	Server          string `toml:"server"`            // OpenAI-compatible base URL; empty = default endpoint
	APIKey          string `toml:"api_key"`           // provider API key
	Model           string `toml:"model"`             // model name
	MaxContextChars int    `toml:"max_context_chars"` // transcript budget
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"` // answer cache TTL
}

// ServerConfig holds HTTP API server configuration.
type ServerConfig struct {
	BindAddr string `toml:"bind_addr"` // default 127.0.0.1
	APIPort  int    `toml:"api_port"`  // default 8080
	APIKey   string `toml:"api_key"`   // API authentication key; empty disables auth
}

// Config represents the chatvault configuration.
type Config struct {
	Data   DataConfig   `toml:"data"`
	Import ImportConfig `toml:"import"`
	Ask    AskConfig    `toml:"ask"`
	Server ServerConfig `toml:"server"`

	// Computed at load time, not from the config file.
	HomeDir string `toml:"-"`
}

// DefaultHome returns the default chatvault home directory.
// Respects the CHATVAULT_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("CHATVAULT_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chatvault"
	}
	return filepath.Join(home, ".chatvault")
}

// Load reads the configuration from the specified file.
// If path is empty, uses the default location (~/.chatvault/config.toml).
// A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	homeDir := DefaultHome()

	if path == "" {
		path = filepath.Join(homeDir, "config.toml")
	}

	cfg := &Config{
		HomeDir: homeDir,
		Data: DataConfig{
			DataDir: homeDir,
		},
		Import: ImportConfig{
			ArchivePath: expandPath("~/Library/Messages/chat.db"),
			BatchSize:   5000,
		},
		Ask: AskConfig{
			Model:           "gpt-4o-mini",
			MaxContextChars: 6000,
			CacheTTLSeconds: 3600,
		},
		Server: ServerConfig{
			BindAddr: "127.0.0.1",
			APIPort:  8080,
		},
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Data.DataDir = expandPath(cfg.Data.DataDir)
	cfg.Import.ArchivePath = expandPath(cfg.Import.ArchivePath)
	cfg.Import.ContactsPath = expandPath(cfg.Import.ContactsPath)

	return cfg, nil
}

// DatabasePath returns the path to the normalized SQLite store.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.DataDir, "chatvault.db")
}

// WorkDir returns the scratch directory for archive snapshots.
func (c *Config) WorkDir() string {
	return filepath.Join(c.Data.DataDir, "work")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
