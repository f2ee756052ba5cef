package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestLoadMissingConfig verifies that a missing file yields the defaults
func TestLoadMissingConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Processing.BlockSize != 16 {
		t.Errorf("Expected default block size 16, got %d", cfg.Processing.BlockSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

// TestSaveAndLoadConfig verifies that saved values are read back
func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Processing.BlockSize = 32
	cfg.Segmentation.StatsRegion = "background"
	cfg.Enhancement.AngleStep = 5
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Processing.BlockSize != 32 || loaded.Segmentation.StatsRegion != "background" ||
		loaded.Enhancement.AngleStep != 5 {
		t.Errorf("Loaded config differs from saved one: %+v", loaded)
	}
}

// TestPartialConfigKeepsDefaults verifies that unspecified keys keep their defaults
func TestPartialConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("frequency:\n  peakNoise: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Frequency.PeakNoise != 3 {
		t.Errorf("Expected peakNoise 3, got %g", cfg.Frequency.PeakNoise)
	}
	if cfg.Frequency.PeakWindow != 5 || cfg.Enhancement.Kx != 0.65 {
		t.Errorf("Expected defaults for unspecified keys, got %+v", cfg.Frequency)
	}
}

// TestValidate checks rejection of unusable parameters
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"block size", func(c *Config) { c.Processing.BlockSize = 1 }, "blockSize"},
		{"variance", func(c *Config) { c.Segmentation.TargetVariance = 0 }, "targetVariance"},
		{"stats region", func(c *Config) { c.Segmentation.StatsRegion = "roi" }, "statsRegion"},
		{"wavelength", func(c *Config) { c.Frequency.MaxWaveLength = 2 }, "wavelength"},
		{"angle step", func(c *Config) { c.Enhancement.AngleStep = 0 }, "angleStep"},
		{"ring size", func(c *Config) { c.Minutiae.RingSize = 4 }, "ringSize"},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.modify(cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: expected error mentioning %q, got %v", tt.name, tt.want, err)
		}
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("processing:\n  blockSize: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Errorf("Expected LoadConfig to reject an invalid file")
	}
}
