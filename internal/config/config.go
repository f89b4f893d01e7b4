// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the tableview YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/magpierre/tableview/datatable"
)

// Environment variables that override file settings.
const (
	EnvPageSize = "TABLEVIEW_PAGE_SIZE"
	EnvLogLevel = "TABLEVIEW_LOG_LEVEL"
	EnvLogFile  = "TABLEVIEW_LOG_FILE"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the top-level configuration file.
type Config struct {
	Table   TableConfig   `yaml:"table"`
	Logging LoggingConfig `yaml:"logging"`
}

// TableConfig holds table model defaults.
type TableConfig struct {
	PageSize        int    `yaml:"page_size"`
	PageSizeOptions []int  `yaml:"page_size_options"`
	DefaultSort     string `yaml:"default_sort"`
	SortScope       string `yaml:"sort_scope"`
	EnableSorting   bool   `yaml:"enable_sorting"`
	EnableFiltering bool   `yaml:"enable_filtering"`
	EnablePaging    bool   `yaml:"enable_pagination"`
	MaxCellWidth    int    `yaml:"max_cell_width"`
}

// LoggingConfig controls the zap logger and its rotating file.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Table: TableConfig{
			PageSize:        datatable.DefaultPageSize,
			PageSizeOptions: append([]int(nil), datatable.DefaultPageSizeOptions...),
			SortScope:       datatable.SortScopePage.String(),
			EnableSorting:   true,
			EnableFiltering: true,
			EnablePaging:    true,
			MaxCellWidth:    32,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  15,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// DefaultPath returns the per-user config file location, or "" when the
// user config directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tableview", "config.yaml")
}

// Load reads path over the defaults and applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvPageSize, v)
		}
		c.Table.PageSize = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Logging.File = v
	}
	return nil
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	if c.Table.PageSize < 1 {
		return fmt.Errorf("%w: page_size must be at least 1, got %d", ErrInvalidConfig, c.Table.PageSize)
	}
	for _, n := range c.Table.PageSizeOptions {
		if n < 1 {
			return fmt.Errorf("%w: page_size_options must be positive, got %d", ErrInvalidConfig, n)
		}
	}
	if _, err := datatable.ParseSortScope(c.Table.SortScope); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// ModelOptions converts the table section into datatable options.
func (c *Config) ModelOptions(logger *zap.Logger) []datatable.Option {
	scope, _ := datatable.ParseSortScope(c.Table.SortScope)
	opts := []datatable.Option{
		datatable.WithPageSize(c.Table.PageSize),
		datatable.WithSorting(c.Table.EnableSorting),
		datatable.WithFiltering(c.Table.EnableFiltering),
		datatable.WithPagination(c.Table.EnablePaging),
		datatable.WithSortScope(scope),
	}
	if len(c.Table.PageSizeOptions) > 0 {
		opts = append(opts, datatable.WithPageSizeOptions(c.Table.PageSizeOptions...))
	}
	if c.Table.DefaultSort != "" {
		opts = append(opts, datatable.WithDefaultSort(c.Table.DefaultSort))
	}
	if logger != nil {
		opts = append(opts, datatable.WithLogger(logger))
	}
	return opts
}
