package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds application settings (in-memory representation).
type Config struct {
	LogDirectory   string `yaml:"log_directory" json:"log_directory"`
	CacheDirectory string `yaml:"cache_directory" json:"cache_directory"`
	BlueprintFile  string `yaml:"blueprint_file" json:"blueprint_file"`
	DatabasePath   string `yaml:"database_path" json:"database_path"`

	// Aggregation settings.
	BatchSize      int `yaml:"batch_size" json:"batch_size"`             // items per catalog build batch
	IndexProbeRows int `yaml:"index_probe_rows" json:"index_probe_rows"` // data rows read when indexing a log file
	TopOrders      int `yaml:"top_orders" json:"top_orders"`             // orders kept per side in an item summary

	// Resolver defaults.
	MaxDepth           int     `yaml:"max_depth" json:"max_depth"`
	MaterialEfficiency int     `yaml:"material_efficiency" json:"material_efficiency"`
	TimeEfficiency     int     `yaml:"time_efficiency" json:"time_efficiency"`
	FacilityBonus      float64 `yaml:"facility_bonus" json:"facility_bonus"`

	// Scanner defaults.
	MinMarginPercent   float64 `yaml:"min_margin_percent" json:"min_margin_percent"`
	MaxResults         int     `yaml:"max_results" json:"max_results"`
	IncludeComponents  bool    `yaml:"include_components" json:"include_components"`
	OnlyManufacturable bool    `yaml:"only_manufacturable" json:"only_manufacturable"`
	ScanWorkers        int     `yaml:"scan_workers" json:"scan_workers"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		LogDirectory:       "marketlogs",
		CacheDirectory:     "cache",
		BlueprintFile:      "data/blueprints.json",
		DatabasePath:       "forge.db",
		BatchSize:          10,
		IndexProbeRows:     5,
		TopOrders:          20,
		MaxDepth:           3,
		MinMarginPercent:   5,
		MaxResults:         100,
		IncludeComponents:  true,
		OnlyManufacturable: true,
		ScanWorkers:        8,
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, falling back to defaults when the
// file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks that loaded settings are within their allowed ranges.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.IndexProbeRows <= 0 {
		return fmt.Errorf("index_probe_rows must be positive, got %d", c.IndexProbeRows)
	}
	if c.TopOrders <= 0 {
		return fmt.Errorf("top_orders must be positive, got %d", c.TopOrders)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	}
	if c.MaterialEfficiency < 0 || c.MaterialEfficiency > 10 {
		return fmt.Errorf("material_efficiency must be 0-10, got %d", c.MaterialEfficiency)
	}
	if c.TimeEfficiency < 0 || c.TimeEfficiency > 20 {
		return fmt.Errorf("time_efficiency must be 0-20, got %d", c.TimeEfficiency)
	}
	if c.FacilityBonus < 0 || c.FacilityBonus > 1 {
		return fmt.Errorf("facility_bonus must be 0.0-1.0, got %v", c.FacilityBonus)
	}
	return nil
}
