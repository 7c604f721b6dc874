// Package config provides configuration loading and management for phasereg.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"phasereg/pkg/phasecorr"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Registration parameters
	Registration struct {
		// ControlPoints are the four band-pass thresholds as fractions of
		// the maximum radial frequency distance, strictly increasing
		// within [0, 1]
		ControlPoints []float64 `yaml:"controlPoints"`

		// NumWorkers specifies how many workers to use for parallel processing
		NumWorkers int `yaml:"numWorkers"`
	} `yaml:"registration"`

	// Peak detection parameters
	Peak struct {
		// SubPixel enables quadratic sub-pixel refinement of the
		// correlation peak
		SubPixel bool `yaml:"subPixel"`

		// MinConfidence is the minimum peak height in standard deviations
		// above the surface mean for a result to be considered valid
		MinConfidence float64 `yaml:"minConfidence"`
	} `yaml:"peak"`

	// Output parameters
	Output struct {
		// SurfacePath, when non-empty, is where the correlation surface
		// is saved as a JPEG image
		SurfacePath string `yaml:"surfacePath"`

		// CenterSurface renders the surface with the zero-shift peak at
		// the image center
		CenterSurface bool `yaml:"centerSurface"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default registration parameters
	points := phasecorr.DefaultControlPoints()
	cfg.Registration.ControlPoints = points[:]
	cfg.Registration.NumWorkers = runtime.NumCPU() // Use all available cores by default

	// Set default peak detection parameters
	cfg.Peak.SubPixel = true
	cfg.Peak.MinConfidence = 5.0

	// Set default output parameters
	cfg.Output.SurfacePath = ""
	cfg.Output.CenterSurface = true
	cfg.Output.Verbose = true

	return cfg
}

// ControlPoints converts the configured thresholds into the operator's
// control point tuple, validating the count.
func (c *Config) ControlPoints() (phasecorr.ControlPoints, error) {
	var points phasecorr.ControlPoints
	if len(c.Registration.ControlPoints) != 4 {
		return points, fmt.Errorf("expected 4 band-pass control points, got %d", len(c.Registration.ControlPoints))
	}
	copy(points[:], c.Registration.ControlPoints)
	return points, nil
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
