// Package config loads the visualizer's TOML configuration.
package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/psidex/visualizer/internal/graphs/cytoscape"
	"github.com/psidex/visualizer/internal/lib"
)

// Engines that can be selected with page.engine.
var Engines = []string{"cytoscape", "echarts", "dot", "json"}

// Config holds visualizer configuration.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Source   SourceConfig   `toml:"source"`
	Page     PageConfig     `toml:"page"`
	Layout   map[string]any `toml:"layout"`
	Server   ServerConfig   `toml:"server"`
	Stream   StreamConfig   `toml:"stream"`
	Snapshot SnapshotConfig `toml:"snapshot"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// SourceConfig says where the graph document comes from.
type SourceConfig struct {
	// URL is an http(s) URL, a file URL or a path.
	URL             string       `toml:"url"`
	Timeout         lib.Duration `toml:"timeout"` // 0 means no client timeout
	RandomUserAgent bool         `toml:"random_user_agent"`
}

// PageConfig controls how the page is built.
type PageConfig struct {
	Engine    string `toml:"engine"`
	Container string `toml:"container"`
	// Host is a path to the host HTML document, empty for the built-in one.
	Host         string `toml:"host"`
	CytoscapeURL string `toml:"cytoscape_url"`
}

type ServerConfig struct {
	Address        string   `toml:"address"`
	AllowedOrigins []string `toml:"allowed_origins"`
	// FetchElements makes the page load /elements.json in the browser instead of
	// embedding the elements.
	FetchElements   bool         `toml:"fetch_elements"`
	ShutdownTimeout lib.Duration `toml:"shutdown_timeout"`
}

type StreamConfig struct {
	Interval lib.Duration `toml:"interval"`
}

type SnapshotConfig struct {
	Timeout lib.Duration `toml:"timeout"`
	Settle  lib.Duration `toml:"settle"`
	Quality int          `toml:"quality"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info"},
		Source: SourceConfig{URL: "elements.json"},
		Page: PageConfig{
			Engine:       "cytoscape",
			Container:    "app",
			CytoscapeURL: cytoscape.DefaultScriptURL,
		},
		Layout: map[string]any{},
		Server: ServerConfig{
			Address:         "127.0.0.1:8080",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: lib.DurationFrom(5 * time.Second),
		},
		Stream: StreamConfig{Interval: lib.DurationFrom(50 * time.Millisecond)},
		Snapshot: SnapshotConfig{
			Timeout: lib.DurationFrom(30 * time.Second),
			Settle:  lib.DurationFrom(1500 * time.Millisecond),
			Quality: 90,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that have a fixed set of choices.
func (c *Config) Validate() error {
	if !slices.Contains(Engines, c.Page.Engine) {
		return fmt.Errorf("unknown engine %q, expected one of %v", c.Page.Engine, Engines)
	}
	if c.Page.Container == "" {
		return fmt.Errorf("page.container must not be empty")
	}
	if _, err := lib.ParseSLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Snapshot.Quality < 0 || c.Snapshot.Quality > 100 {
		return fmt.Errorf("snapshot.quality must be within 0-100, got %d", c.Snapshot.Quality)
	}
	return nil
}

// HostDocument returns the configured host page, or nil for the built-in one.
func (c *Config) HostDocument() ([]byte, error) {
	if c.Page.Host == "" {
		return nil, nil
	}
	return os.ReadFile(c.Page.Host)
}
