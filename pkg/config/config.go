// Package config provides configuration loading and management for voxelops.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"voxelops/pkg/kernel"
)

// Kernel selector values accepted in the processing section.
const (
	KernelSerial   = "serial"
	KernelParallel = "parallel"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// Kernel selects the resize kernel implementation: "serial" or
		// "parallel"
		Kernel string `yaml:"kernel"`

		// Workers specifies how many workers the parallel kernel uses;
		// zero or negative means one per CPU core
		Workers int `yaml:"workers"`

		// InterpolationOrder is the default interpolation order for image
		// resampling (0 nearest-neighbour, 3 cubic)
		InterpolationOrder int `yaml:"interpolationOrder"`

		// CropPadding is the default per-axis margin in voxels added
		// around a cropped bounding box
		CropPadding int `yaml:"cropPadding"`
	} `yaml:"processing"`

	// Tool parameters
	Tool struct {
		// C3DBinary is the command name or path of the external c3d tool
		C3DBinary string `yaml:"c3dBinary"`
	} `yaml:"tool"`

	// Output parameters
	Output struct {
		// CompressOutput determines whether written NIfTI files are
		// gzip-compressed
		CompressOutput bool `yaml:"compressOutput"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.Kernel = KernelParallel
	cfg.Processing.Workers = runtime.NumCPU() // Use all available cores by default
	cfg.Processing.InterpolationOrder = 3
	cfg.Processing.CropPadding = 10

	// Set default tool parameters
	cfg.Tool.C3DBinary = "c3d"

	// Set default output parameters
	cfg.Output.CompressOutput = true
	cfg.Output.Verbose = true

	return cfg
}

// Resizer builds the resize kernel selected by the processing section.
func (c *Config) Resizer() (kernel.Resizer, error) {
	switch c.Processing.Kernel {
	case KernelSerial:
		return kernel.NewSerial(), nil
	case KernelParallel, "":
		return kernel.NewParallel(c.Processing.Workers), nil
	}
	return nil, fmt.Errorf("unknown kernel %q (must be %q or %q)", c.Processing.Kernel, KernelSerial, KernelParallel)
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
