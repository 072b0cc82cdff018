package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("CHATVAULT_HOME", tmpDir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Data.DataDir != tmpDir {
		t.Errorf("Data.DataDir = %q, want %q", cfg.Data.DataDir, tmpDir)
	}
	if cfg.Import.BatchSize != 5000 {
		t.Errorf("Import.BatchSize = %d, want 5000", cfg.Import.BatchSize)
	}
	if cfg.Ask.MaxContextChars != 6000 {
		t.Errorf("Ask.MaxContextChars = %d, want 6000", cfg.Ask.MaxContextChars)
	}
	if cfg.Ask.CacheTTLSeconds != 3600 {
		t.Errorf("Ask.CacheTTLSeconds = %d, want 3600", cfg.Ask.CacheTTLSeconds)
	}
	if cfg.Server.APIPort != 8080 || cfg.Server.BindAddr != "127.0.0.1" {
		t.Errorf("server defaults wrong: %+v", cfg.Server)
	}
	if cfg.Server.APIKey != "" {
		t.Errorf("Server.APIKey = %q, want empty", cfg.Server.APIKey)
	}

	if got, want := cfg.DatabasePath(), filepath.Join(tmpDir, "chatvault.db"); got != want {
		t.Errorf("DatabasePath() = %q, want %q", got, want)
	}
	if got, want := cfg.WorkDir(), filepath.Join(tmpDir, "work"); got != want {
		t.Errorf("WorkDir() = %q, want %q", got, want)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("CHATVAULT_HOME", tmpDir)

	content := `
[data]
data_dir = "` + tmpDir + `"

[import]
archive_path = "/backups/chat.db"
batch_size = 100

[ask]
model = "gpt-4o"
max_context_chars = 2000

[server]
api_port = 9090
api_key = "test-secret-key"
`
	path := filepath.Join(tmpDir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Import.ArchivePath != "/backups/chat.db" {
		t.Errorf("Import.ArchivePath = %q", cfg.Import.ArchivePath)
	}
	if cfg.Import.BatchSize != 100 {
		t.Errorf("Import.BatchSize = %d, want 100", cfg.Import.BatchSize)
	}
	if cfg.Ask.Model != "gpt-4o" || cfg.Ask.MaxContextChars != 2000 {
		t.Errorf("ask config wrong: %+v", cfg.Ask)
	}
	// Values the file does not set keep their defaults.
	if cfg.Ask.CacheTTLSeconds != 3600 {
		t.Errorf("Ask.CacheTTLSeconds = %d, want default 3600", cfg.Ask.CacheTTLSeconds)
	}
	if cfg.Server.APIPort != 9090 || cfg.Server.APIKey != "test-secret-key" {
		t.Errorf("server config wrong: %+v", cfg.Server)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("CHATVAULT_HOME", tmpDir)

	cfg, err := Load(filepath.Join(tmpDir, "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.APIPort != 8080 {
		t.Errorf("Server.APIPort = %d, want 8080", cfg.Server.APIPort)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := expandPath("~/x"); got != filepath.Join(home, "x") {
		t.Errorf("expandPath(~/x) = %q", got)
	}
	if got := expandPath("/abs/x"); got != "/abs/x" {
		t.Errorf("expandPath(/abs/x) = %q", got)
	}
	if got := expandPath(""); got != "" {
		t.Errorf("expandPath(\"\") = %q", got)
	}
}
