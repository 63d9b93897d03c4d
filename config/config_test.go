package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Index.Includes) != 1 {
		t.Errorf("expected 1 include pattern, got %d", len(cfg.Index.Includes))
	}
	if !cfg.Index.RespectGitignore {
		t.Error("expected RespectGitignore=true")
	}
	if cfg.Index.Workers != 4 {
		t.Errorf("expected Workers=4, got %d", cfg.Index.Workers)
	}
	if cfg.Pipeline.MaxChunkSize != 1200 {
		t.Errorf("expected MaxChunkSize=1200, got %d", cfg.Pipeline.MaxChunkSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected Level=info, got %s", cfg.Logging.Level)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for non-existent file, got %v", err)
	}
	if cfg.Index.Workers != 4 {
		t.Error("expected default config")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
index:
  workers: 8
  respect_gitignore: false
pipeline:
  max_chunk_size: 2000
  greedy_merge: false
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Index.Workers != 8 {
		t.Errorf("expected Workers=8, got %d", cfg.Index.Workers)
	}
	if cfg.Index.RespectGitignore {
		t.Error("expected RespectGitignore=false")
	}
	if cfg.Pipeline.MaxChunkSize != 2000 {
		t.Errorf("expected MaxChunkSize=2000, got %d", cfg.Pipeline.MaxChunkSize)
	}
	if cfg.Pipeline.MinChunkSize != 50 {
		t.Errorf("expected unset MinChunkSize to keep default 50, got %d", cfg.Pipeline.MinChunkSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected Level=debug, got %s", cfg.Logging.Level)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("index: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tcpou.yaml")

	content := `
pipeline:
  safe_token_limit: 8000
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Pipeline.SafeTokenLimit != 8000 {
		t.Errorf("expected SafeTokenLimit=8000, got %d", cfg.Pipeline.SafeTokenLimit)
	}
}

func TestLoadFromDir_DataDirFallback(t *testing.T) {
	tmpDir := t.TempDir()
	if err := EnsureDataDir(tmpDir); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Index.Workers = 2
	if err := cfg.Save(filepath.Join(tmpDir, DataDirName, "config.yaml")); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Index.Workers != 2 {
		t.Errorf("expected Workers=2, got %d", loaded.Index.Workers)
	}
}

func TestPipelineSettings(t *testing.T) {
	s := DefaultConfig().Pipeline.Settings()
	if s.MaxChunkSize != 1200 || s.MinChunkSize != 50 || s.SafeTokenLimit != 6000 {
		t.Errorf("unexpected settings: %+v", s)
	}
	if !s.GreedyMerge || s.MergeThreshold != 0.8 {
		t.Errorf("unexpected merge settings: %+v", s)
	}
}

func TestIndexDBPath(t *testing.T) {
	path := IndexDBPath("/home/user/project")
	expected := filepath.Join("/home/user/project", ".tcpou", "index.db")
	if path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}
}
