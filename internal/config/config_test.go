package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ziadkadry99/stitch/internal/assets"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Port != 8686 {
		t.Errorf("expected default port 8686, got %d", cfg.Port)
	}
	if cfg.PublishDir != "public" {
		t.Errorf("expected default publish_dir %q, got %q", "public", cfg.PublishDir)
	}
	if cfg.OutDir != "dist" {
		t.Errorf("expected default out_dir %q, got %q", "dist", cfg.OutDir)
	}
	if cfg.Diagram.Mode != DiagramClient {
		t.Errorf("expected default diagram mode %q, got %q", DiagramClient, cfg.Diagram.Mode)
	}
	if len(cfg.Assets) != 4 {
		t.Errorf("expected 4 default asset pairs, got %d", len(cfg.Assets))
	}
	if cfg.Entries["main"] != "index.html" {
		t.Errorf("expected main entry index.html, got %q", cfg.Entries["main"])
	}
	if d, err := cfg.Timeout(); err != nil || d != 0 {
		t.Errorf("expected no default fetch timeout, got %v (err %v)", d, err)
	}

	// Defaults must not share state between calls.
	cfg.Entries["main"] = "changed.html"
	cfg.Exclude[0] = "changed"
	if DefaultConfig().Entries["main"] != "index.html" || assets.DefaultExcludes[0] != "**/script.js" {
		t.Error("DefaultConfig leaked mutable package state")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stitch.yml")

	original := DefaultConfig()
	original.SiteDir = "site"
	original.Port = 9000
	original.Origin = "https://example.com"
	original.Diagram.Mode = DiagramCLI
	original.Diagram.Command = "/usr/local/bin/mmdc"
	original.Assets = []AssetPair{{Src: "content", Dest: "public/content"}}
	original.Entries = map[string]string{"main": "index.html"}
	original.FetchTimeout = "3s"

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify round-trip.
	if loaded.SiteDir != original.SiteDir {
		t.Errorf("site_dir: got %q, want %q", loaded.SiteDir, original.SiteDir)
	}
	if loaded.Port != original.Port {
		t.Errorf("port: got %d, want %d", loaded.Port, original.Port)
	}
	if loaded.Origin != original.Origin {
		t.Errorf("origin: got %q, want %q", loaded.Origin, original.Origin)
	}
	if loaded.Diagram.Mode != DiagramCLI || loaded.Diagram.Command != original.Diagram.Command {
		t.Errorf("diagram: got %+v, want %+v", loaded.Diagram, original.Diagram)
	}
	if len(loaded.Assets) != 1 || loaded.Assets[0] != original.Assets[0] {
		t.Errorf("assets: got %+v, want %+v", loaded.Assets, original.Assets)
	}
	if len(loaded.Entries) != 1 {
		t.Errorf("entries should replace the defaults, got %v", loaded.Entries)
	}
	if d, err := loaded.Timeout(); err != nil || d != 3*time.Second {
		t.Errorf("timeout: got %v (%v), want 3s", d, err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("expected default port, got %d", cfg.Port)
	}
	if len(cfg.Entries) != len(DefaultEntries) {
		t.Errorf("expected default entries, got %v", cfg.Entries)
	}
}

func TestLoadPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stitch.yml")
	if err := os.WriteFile(path, []byte("publish_dir: www\ndiagram:\n  mode: none\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PublishDir != "www" {
		t.Errorf("publish_dir: got %q", cfg.PublishDir)
	}
	if cfg.Diagram.Mode != DiagramNone {
		t.Errorf("diagram.mode: got %q", cfg.Diagram.Mode)
	}
	if cfg.Diagram.Keyword != "mermaid" {
		t.Errorf("unset nested keys keep defaults, got keyword %q", cfg.Diagram.Keyword)
	}
	if cfg.OutDir != "dist" {
		t.Errorf("out_dir: got %q", cfg.OutDir)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stitch.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("STITCH_PORT", "9191")
	t.Setenv("STITCH_DIAGRAM__MODE", "none")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Port != 9191 {
		t.Errorf("env override failed: got port %d, want 9191", loaded.Port)
	}
	if loaded.Diagram.Mode != DiagramNone {
		t.Errorf("nested env override failed: got %q", loaded.Diagram.Mode)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty site_dir", func(c *Config) { c.SiteDir = "" }},
		{"empty publish_dir", func(c *Config) { c.PublishDir = "" }},
		{"empty out_dir", func(c *Config) { c.OutDir = "" }},
		{"relative origin", func(c *Config) { c.Origin = "/site" }},
		{"port out of range", func(c *Config) { c.Port = 70000 }},
		{"asset without dest", func(c *Config) { c.Assets = []AssetPair{{Src: "css"}} }},
		{"entry without path", func(c *Config) { c.Entries = map[string]string{"main": ""} }},
		{"unknown diagram mode", func(c *Config) { c.Diagram.Mode = "png" }},
		{"bad timeout", func(c *Config) { c.FetchTimeout = "soon" }},
		{"negative timeout", func(c *Config) { c.FetchTimeout = "-1s" }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestTimeoutEmpty(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FetchTimeout = ""
	d, err := cfg.Timeout()
	if err != nil || d != 0 {
		t.Errorf("empty timeout: got %v, %v", d, err)
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"**/*.map", []string{"**/*.map"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}
