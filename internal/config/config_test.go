package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom missing file: %v", err)
	}
	if cfg.General.Currency != "kr" {
		t.Errorf("Currency = %q, want kr", cfg.General.Currency)
	}
	if !cfg.Detection.SkipReviewed {
		t.Error("SkipReviewed = false, want true by default")
	}
}

func TestSaveToLoadFrom_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.General.InputDir = "/tmp/statements"
	cfg.Detection.MaxGroups = 250
	cfg.Appearance.Theme = "tokyo-night"

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.General.InputDir != "/tmp/statements" {
		t.Errorf("InputDir = %q, want /tmp/statements", got.General.InputDir)
	}
	if got.Detection.MaxGroups != 250 {
		t.Errorf("MaxGroups = %d, want 250", got.Detection.MaxGroups)
	}
	if got.Appearance.Theme != "tokyo-night" {
		t.Errorf("Theme = %q, want tokyo-night", got.Appearance.Theme)
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[general\ninput_dir = "), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom accepted malformed TOML")
	}
}

func TestGetInputDir_EnvWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.InputDir = "/from/config"

	t.Setenv("RECUR_INPUT_DIR", "/from/env")
	if got := GetInputDir(cfg); got != "/from/env" {
		t.Fatalf("GetInputDir = %q, want /from/env", got)
	}

	t.Setenv("RECUR_INPUT_DIR", "")
	if got := GetInputDir(cfg); got != "/from/config" {
		t.Fatalf("GetInputDir = %q, want /from/config", got)
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	tests := map[string]string{
		"~":            "/home/tester",
		"~/statements": "/home/tester/statements",
		"/abs/path":    "/abs/path",
		"rel/~/x":      "rel/~/x",
		"~other":       "~other",
	}
	for in, want := range tests {
		if got := ExpandHome(in); got != want {
			t.Errorf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}
