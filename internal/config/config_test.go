package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if cfg.Syntax != "json" || cfg.Target != "ark" || cfg.Trace {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFillsOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ursa.yaml")
	if err := os.WriteFile(path, []byte("trace: true\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Trace {
		t.Fatalf("expected trace true from file")
	}
	if cfg.Syntax != "json" || cfg.Target != "ark" {
		t.Fatalf("expected omitted fields to fall back to defaults, got %+v", cfg)
	}
}

func TestLoadParsesPreludePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ursa.yaml")
	content := "preludePaths:\n  - ./vendor/prelude\n  - /usr/share/ursa/prelude\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.PreludePaths) != 2 {
		t.Fatalf("expected 2 prelude paths, got %d", len(cfg.PreludePaths))
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/ursa.yaml"); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}
