// Package config loads wildcards.hcl, the per-project settings file for the
// CLI, watcher and MCP server.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/agentic-research/wildcards/api"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// FileName is the config file looked up in the working directory.
const FileName = "wildcards.hcl"

// Defaults.
const (
	DefaultMaxDepth = 12
	DefaultSamples  = 5
	DefaultDebounce = 200 * time.Millisecond
)

// Fail thresholds for the validate command.
const (
	FailOnError   = "error"
	FailOnWarning = "warning"
	FailOnNever   = "never"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

type Config struct {
	MaxDepth    int    `hcl:"max_depth,optional"`
	Samples     int    `hcl:"samples,optional"`
	Seed        *int64 `hcl:"seed,optional"`
	FailOn      string `hcl:"fail_on,optional"`
	MinSeverity string `hcl:"min_severity,optional"`
	Format      string `hcl:"format,optional"`
	LogLevel    string `hcl:"log_level,optional"`
	Watch       *Watch `hcl:"watch,block"`
}

type Watch struct {
	Debounce string `hcl:"debounce,optional"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path. An empty path means FileName in the working directory,
// which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}
	src, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, src)
}

// Parse decodes HCL source. filename is used in diagnostics and must end
// in .hcl.
func Parse(filename string, src []byte) (*Config, error) {
	var c Config
	if err := hclsimple.Decode(filename, src, nil, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.Samples <= 0 {
		c.Samples = DefaultSamples
	}
	if c.FailOn == "" {
		c.FailOn = FailOnError
	}
	if c.MinSeverity == "" {
		c.MinSeverity = "all"
	}
	if c.Format == "" {
		c.Format = FormatText
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Watch == nil {
		c.Watch = &Watch{}
	}
}

// Validate rejects values no consumer understands.
func (c *Config) Validate() error {
	switch c.FailOn {
	case FailOnError, FailOnWarning, FailOnNever:
	default:
		return fmt.Errorf("fail_on must be error, warning or never, got %q", c.FailOn)
	}
	if c.MinSeverity != "all" {
		if _, ok := api.ParseSeverity(c.MinSeverity); !ok {
			return fmt.Errorf("invalid min_severity %q", c.MinSeverity)
		}
	}
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("format must be text or json, got %q", c.Format)
	}
	if c.Watch.Debounce != "" {
		if d, err := time.ParseDuration(c.Watch.Debounce); err != nil || d < 0 {
			return fmt.Errorf("invalid watch debounce %q", c.Watch.Debounce)
		}
	}
	return nil
}

// DebounceDuration is the watcher's quiet period.
func (c *Config) DebounceDuration() time.Duration {
	if c.Watch == nil || c.Watch.Debounce == "" {
		return DefaultDebounce
	}
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return DefaultDebounce
	}
	return d
}

// FailsOn reports whether counts should fail a validate run.
func (c *Config) FailsOn(counts api.IssueCounts) bool {
	switch c.FailOn {
	case FailOnWarning:
		return counts.Errors+counts.Warnings > 0
	case FailOnNever:
		return false
	default:
		return counts.Errors > 0
	}
}
