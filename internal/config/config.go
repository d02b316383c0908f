package config

import (
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/dsdsmelo/gridnote/pkg/sheet"
)

// RedisConfig specifies the Redis connection
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`     // Default: localhost:6379
	Password string `yaml:"password,omitempty"` // Default: no auth
	DB       int    `yaml:"db,omitempty"`       // Default: 0
}

// DefaultsConfig specifies the shape of newly created sheets
type DefaultsConfig struct {
	Rows        *int   `yaml:"rows,omitempty"`         // Initial row count (default = 10)
	Columns     *int   `yaml:"columns,omitempty"`      // Initial column count (default = 4)
	ColumnType  string `yaml:"column_type,omitempty"`  // Type of initial columns (default = text)
	ColumnWidth *int   `yaml:"column_width,omitempty"` // Display width of initial columns (default = 120)
}

// GridnoteConfig represents the top-level gridnote.yml configuration
type GridnoteConfig struct {
	Version  string          `yaml:"version"`
	Project  string          `yaml:"project"`
	Redis    *RedisConfig    `yaml:"redis,omitempty"`
	Defaults *DefaultsConfig `yaml:"defaults,omitempty"`
}

// Validate performs strict validation on the configuration
func (c *GridnoteConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	// Required: project
	if c.Project == "" {
		return fmt.Errorf("project is required")
	}

	// Apply default Redis config if missing
	if c.Redis == nil {
		c.Redis = &RedisConfig{}
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must be >= 0, got %d", c.Redis.DB)
	}

	// Apply default sheet shape if missing
	if c.Defaults == nil {
		c.Defaults = &DefaultsConfig{}
	}
	if c.Defaults.Rows == nil {
		defaultRows := 10
		c.Defaults.Rows = &defaultRows
	}
	if c.Defaults.Columns == nil {
		defaultColumns := 4
		c.Defaults.Columns = &defaultColumns
	}
	if c.Defaults.ColumnType == "" {
		c.Defaults.ColumnType = string(sheet.ColumnTypeText)
	}
	if c.Defaults.ColumnWidth == nil {
		defaultWidth := 120
		c.Defaults.ColumnWidth = &defaultWidth
	}

	if *c.Defaults.Rows < 0 {
		return fmt.Errorf("defaults.rows must be >= 0, got %d", *c.Defaults.Rows)
	}
	if *c.Defaults.Columns < 0 {
		return fmt.Errorf("defaults.columns must be >= 0, got %d", *c.Defaults.Columns)
	}
	if *c.Defaults.ColumnWidth < 1 {
		return fmt.Errorf("defaults.column_width must be >= 1, got %d", *c.Defaults.ColumnWidth)
	}
	if err := sheet.ColumnType(c.Defaults.ColumnType).Validate(); err != nil {
		return fmt.Errorf("defaults.column_type: %w", err)
	}

	return nil
}

// RedisOptions builds the go-redis connection options from the config.
// Call only after Validate has applied defaults.
func (c *GridnoteConfig) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}

// Load reads and validates gridnote.yml from the specified path
func Load(path string) (*GridnoteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config GridnoteConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
