package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if len(cfg.Sources.Feeds) == 0 {
		t.Error("expected feeds to be populated")
	}

	if cfg.Model.Name != "llama3" {
		t.Errorf("expected model 'llama3', got %q", cfg.Model.Name)
	}

	if cfg.Fetch.ProxyHost != "r.jina.ai" {
		t.Errorf("expected proxy host 'r.jina.ai', got %q", cfg.Fetch.ProxyHost)
	}

	if cfg.Retention.Days != 30 {
		t.Errorf("expected 30 retention days, got %d", cfg.Retention.Days)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}

	if len(cfg.Personas) == 0 {
		t.Error("expected at least one persona")
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
model:
  name: qwen2.5:7b
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Model.Name != "qwen2.5:7b" {
		t.Errorf("expected model 'qwen2.5:7b', got %q", cfg.Model.Name)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Model.URL != "http://localhost:11434" {
		t.Errorf("expected default model url, got %q", cfg.Model.URL)
	}
	if cfg.Fetch.MinUsableChars != 200 {
		t.Errorf("expected default min_usable_chars 200, got %d", cfg.Fetch.MinUsableChars)
	}
}

func TestPersonaOrder(t *testing.T) {
	data := []byte(`
personas:
  - name: Alex
    profile: profile one
  - name: Jordan
    profile: profile two
  - name: Sam
    profile: profile three
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}

	names := cfg.PersonaNames()
	want := []string{"Alex", "Jordan", "Sam"}
	if len(names) != len(want) {
		t.Fatalf("expected %d personas, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("persona %d: expected %q, got %q", i, want[i], names[i])
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Sources.Feeds) == 0 {
		t.Error("expected feeds to be populated from file")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}
