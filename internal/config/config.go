// Package config loads and saves the raketracker HCL configuration file.
package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/lox/raketracker/internal/fileutil"
)

// DefaultFile is the config file looked up when none is given.
const DefaultFile = "raketracker.hcl"

// Config represents the complete configuration. Every block is optional.
type Config struct {
	Tracker  *TrackerSettings  `hcl:"tracker,block"`
	Database *DatabaseSettings `hcl:"database,block"`
	Log      *LogSettings      `hcl:"log,block"`
	Chart    *ChartSettings    `hcl:"chart,block"`
}

// TrackerSettings controls whose results are reported and where hands are
// imported from.
type TrackerSettings struct {
	Player    string `hcl:"player,optional"`
	ImportDir string `hcl:"import_dir,optional"`
	Timezone  string `hcl:"timezone,optional"`
	Workers   int    `hcl:"workers,optional"`
}

// DatabaseSettings locates the SQLite file.
type DatabaseSettings struct {
	Path string `hcl:"path,optional"`
}

// LogSettings configures logging.
type LogSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// ChartSettings sizes the profit chart and says where saved charts go.
type ChartSettings struct {
	OutputDir string `hcl:"output_dir,optional"`
	Width     int    `hcl:"width,optional"`
	Height    int    `hcl:"height,optional"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Tracker: &TrackerSettings{
			ImportDir: "hands",
			Timezone:  "Asia/Tbilisi",
			Workers:   4,
		},
		Database: &DatabaseSettings{
			Path: "raketracker.db",
		},
		Log: &LogSettings{
			Level: "info",
		},
		Chart: &ChartSettings{
			OutputDir: "charts",
			Width:     72,
			Height:    16,
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults; settings the file leaves out keep their default values.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()

	if c.Tracker == nil {
		c.Tracker = def.Tracker
	}
	if c.Tracker.ImportDir == "" {
		c.Tracker.ImportDir = def.Tracker.ImportDir
	}
	if c.Tracker.Timezone == "" {
		c.Tracker.Timezone = def.Tracker.Timezone
	}
	if c.Tracker.Workers == 0 {
		c.Tracker.Workers = def.Tracker.Workers
	}

	if c.Database == nil {
		c.Database = def.Database
	}
	if c.Database.Path == "" {
		c.Database.Path = def.Database.Path
	}

	if c.Log == nil {
		c.Log = def.Log
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}

	if c.Chart == nil {
		c.Chart = def.Chart
	}
	if c.Chart.OutputDir == "" {
		c.Chart.OutputDir = def.Chart.OutputDir
	}
	if c.Chart.Width == 0 {
		c.Chart.Width = def.Chart.Width
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = def.Chart.Height
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Tracker.Workers < 1 {
		return fmt.Errorf("workers must be positive: %d", c.Tracker.Workers)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path must be set")
	}
	if c.Chart.Width < 20 || c.Chart.Height < 4 {
		return fmt.Errorf("chart must be at least 20x4, got %dx%d", c.Chart.Width, c.Chart.Height)
	}
	return nil
}

// Location loads the timezone hand-history timestamps are written in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Tracker.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Tracker.Timezone, err)
	}
	return loc, nil
}

// Save writes the configuration to filename, creating its directory.
func (c *Config) Save(filename string) error {
	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(c, f.Body())

	if err := fileutil.WriteAtomic(filename, f.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
