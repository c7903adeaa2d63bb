package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix marks environment overrides. Nested keys use a double
// underscore: STITCH_DIAGRAM__MODE -> diagram.mode.
const EnvPrefix = "STITCH_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (STITCH_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	// Configured lists and maps replace the defaults instead of merging.
	if k.Exists("assets") {
		cfg.Assets = nil
	}
	if k.Exists("exclude") {
		cfg.Exclude = nil
	}
	if k.Exists("entries") {
		cfg.Entries = nil
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validDiagramModes = map[DiagramMode]bool{
	DiagramClient: true,
	DiagramCLI:    true,
	DiagramNone:   true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.SiteDir == "" {
		return fmt.Errorf("site_dir is required")
	}
	if c.PublishDir == "" {
		return fmt.Errorf("publish_dir is required")
	}
	if c.OutDir == "" {
		return fmt.Errorf("out_dir is required")
	}

	u, err := url.Parse(c.Origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid origin %q: must be an absolute URL", c.Origin)
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	for i, a := range c.Assets {
		if a.Src == "" || a.Dest == "" {
			return fmt.Errorf("assets[%d] needs both src and dest", i)
		}
	}

	for name, path := range c.Entries {
		if path == "" {
			return fmt.Errorf("entry %q has no path", name)
		}
	}

	if c.Diagram.Mode != "" && !validDiagramModes[c.Diagram.Mode] {
		return fmt.Errorf("invalid diagram.mode %q: must be one of client, cli, none", c.Diagram.Mode)
	}

	if _, err := c.Timeout(); err != nil {
		return err
	}

	return nil
}

// Timeout parses fetch_timeout. An empty value means no timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.FetchTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid fetch_timeout %q: %w", c.FetchTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("fetch_timeout must be non-negative")
	}
	return d, nil
}
