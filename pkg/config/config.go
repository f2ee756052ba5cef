// Package config provides configuration loading and management for ridgecount.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// BlockSize is the side W of the square blocks used by every
		// block-resolution field
		BlockSize int `yaml:"blockSize"`

		// Workers specifies how many goroutines process row bands in parallel
		Workers int `yaml:"workers"`

		// SmoothOrientation enables doubled-angle Gaussian smoothing of the
		// orientation field
		SmoothOrientation bool `yaml:"smoothOrientation"`
	} `yaml:"processing"`

	// Segmentation and normalization parameters
	Segmentation struct {
		// StdThreshold is the fraction of the global standard deviation a block
		// needs to be kept in the region of interest
		StdThreshold float64 `yaml:"stdThreshold"`

		// TargetMean and TargetVariance are the normalization targets
		TargetMean     float64 `yaml:"targetMean"`
		TargetVariance float64 `yaml:"targetVariance"`

		// StatsRegion selects the pixels used for ROI re-normalization:
		// "foreground" or "background"
		StatsRegion string `yaml:"statsRegion"`
	} `yaml:"segmentation"`

	// Ridge frequency estimation parameters
	Frequency struct {
		// MinWaveLength and MaxWaveLength bound accepted ridge periods in pixels
		MinWaveLength float64 `yaml:"minWaveLength"`
		MaxWaveLength float64 `yaml:"maxWaveLength"`

		// PeakWindow is the size of the max filter used to find projection peaks
		PeakWindow int `yaml:"peakWindow"`

		// PeakNoise is the tolerance between a sample and its max-filtered value
		PeakNoise float64 `yaml:"peakNoise"`
	} `yaml:"frequency"`

	// Gabor enhancement parameters
	Enhancement struct {
		// Kx and Ky scale the Gaussian envelope relative to the ridge period
		Kx float64 `yaml:"kx"`
		Ky float64 `yaml:"ky"`

		// AngleStep is the angular resolution of the filter bank in degrees
		AngleStep float64 `yaml:"angleStep"`
	} `yaml:"enhancement"`

	// Minutiae extraction parameters
	Minutiae struct {
		// RingSize is the side of the crossing-number ring: 3 or 5
		RingSize int `yaml:"ringSize"`
	} `yaml:"minutiae"`

	// Singularity detection parameters
	Singularity struct {
		// Tolerance is the allowed deviation of the Poincaré index in degrees
		Tolerance float64 `yaml:"tolerance"`
	} `yaml:"singularity"`

	// Output parameters
	Output struct {
		// SaveStages determines whether every intermediate stage is written
		SaveStages bool `yaml:"saveStages"`

		// Montage enables the 2x4 overview of the pipeline stages
		Montage bool `yaml:"montage"`

		// MontageTile is the side of one montage tile in pixels
		MontageTile int `yaml:"montageTile"`
	} `yaml:"output"`

	// Logging parameters
	Logging struct {
		// Level is a zerolog level name: debug, info, warn, error
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.BlockSize = 16
	cfg.Processing.Workers = runtime.NumCPU() // Use all available cores by default
	cfg.Processing.SmoothOrientation = false

	// Set default segmentation parameters
	cfg.Segmentation.StdThreshold = 0.2
	cfg.Segmentation.TargetMean = 100
	cfg.Segmentation.TargetVariance = 100
	cfg.Segmentation.StatsRegion = "foreground"

	// Set default frequency parameters
	cfg.Frequency.MinWaveLength = 5
	cfg.Frequency.MaxWaveLength = 15
	cfg.Frequency.PeakWindow = 5
	cfg.Frequency.PeakNoise = 2

	// Set default enhancement parameters
	cfg.Enhancement.Kx = 0.65
	cfg.Enhancement.Ky = 0.65
	cfg.Enhancement.AngleStep = 3

	cfg.Minutiae.RingSize = 3
	cfg.Singularity.Tolerance = 1

	// Set default output parameters
	cfg.Output.SaveStages = false
	cfg.Output.Montage = false
	cfg.Output.MontageTile = 256

	cfg.Logging.Level = "info"

	return cfg
}

// Validate checks that every parameter is usable by the pipeline
func (c *Config) Validate() error {
	var errs []error
	if c.Processing.BlockSize < 3 {
		errs = append(errs, fmt.Errorf("processing.blockSize must be at least 3, got %d", c.Processing.BlockSize))
	}
	if c.Segmentation.StdThreshold < 0 {
		errs = append(errs, fmt.Errorf("segmentation.stdThreshold must not be negative, got %g", c.Segmentation.StdThreshold))
	}
	if c.Segmentation.TargetVariance <= 0 {
		errs = append(errs, fmt.Errorf("segmentation.targetVariance must be positive, got %g", c.Segmentation.TargetVariance))
	}
	switch c.Segmentation.StatsRegion {
	case "", "foreground", "background":
	default:
		errs = append(errs, fmt.Errorf("segmentation.statsRegion must be foreground or background, got %q", c.Segmentation.StatsRegion))
	}
	if c.Frequency.MinWaveLength <= 0 || c.Frequency.MaxWaveLength < c.Frequency.MinWaveLength {
		errs = append(errs, fmt.Errorf("frequency wavelength range [%g, %g] is invalid",
			c.Frequency.MinWaveLength, c.Frequency.MaxWaveLength))
	}
	if c.Frequency.PeakWindow < 1 {
		errs = append(errs, fmt.Errorf("frequency.peakWindow must be at least 1, got %d", c.Frequency.PeakWindow))
	}
	if c.Enhancement.Kx <= 0 || c.Enhancement.Ky <= 0 {
		errs = append(errs, fmt.Errorf("enhancement kx/ky must be positive, got %g/%g", c.Enhancement.Kx, c.Enhancement.Ky))
	}
	if c.Enhancement.AngleStep <= 0 || c.Enhancement.AngleStep > 180 {
		errs = append(errs, fmt.Errorf("enhancement.angleStep must be in (0, 180], got %g", c.Enhancement.AngleStep))
	}
	if c.Minutiae.RingSize != 3 && c.Minutiae.RingSize != 5 {
		errs = append(errs, fmt.Errorf("minutiae.ringSize must be 3 or 5, got %d", c.Minutiae.RingSize))
	}
	if c.Singularity.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("singularity.tolerance must not be negative, got %g", c.Singularity.Tolerance))
	}
	if c.Output.Montage && c.Output.MontageTile < 16 {
		errs = append(errs, fmt.Errorf("output.montageTile must be at least 16, got %d", c.Output.MontageTile))
	}
	return errors.Join(errs...)
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

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
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
