package pipeline

import (
	"fmt"
	"runtime"

	"ridgecount/pkg/config"
	"ridgecount/pkg/frequency"
	"ridgecount/pkg/gabor"
	"ridgecount/pkg/preprocess"
	"ridgecount/pkg/singularity"
	"ridgecount/pkg/skeleton"
)

// Params holds every tunable of the feature extraction pipeline.
// A Params value is immutable once handed to NewAnalyzer.
type Params struct {
	// BlockSize is the side W of the square blocks shared by the mask, the
	// orientation field and the frequency field.
	BlockSize int

	// Workers bounds the goroutines used for row-parallel stages.
	// Zero or less means one per CPU.
	Workers int

	// TargetMean and TargetVariance are the global normalization targets.
	TargetMean     float64
	TargetVariance float64

	// StdThreshold is the fraction of the global standard deviation a block
	// needs to be part of the region of interest.
	StdThreshold float64

	// StatsRegion selects the pixels that provide the ROI re-normalization
	// statistics.
	StatsRegion preprocess.StatsRegion

	// SmoothOrientation enables doubled-angle smoothing of the orientation
	// field before it is used.
	SmoothOrientation bool

	// Frequency controls ridge frequency estimation.
	Frequency frequency.Params

	// Enhancement controls the Gabor filter bank.
	Enhancement gabor.Params

	// MinutiaeRing is the side of the crossing-number ring, 3 or 5.
	MinutiaeRing int

	// SingularityTolerance is the accepted deviation of the Poincaré index
	// in degrees.
	SingularityTolerance float64
}

// DefaultParams returns the parameters used for 500 dpi prints
func DefaultParams() Params {
	return Params{
		BlockSize:            16,
		Workers:              runtime.NumCPU(),
		TargetMean:           100,
		TargetVariance:       100,
		StdThreshold:         preprocess.DefaultStdThreshold,
		StatsRegion:          preprocess.StatsForeground,
		Frequency:            frequency.DefaultParams(),
		Enhancement:          gabor.DefaultParams(),
		MinutiaeRing:         skeleton.RingSize3,
		SingularityTolerance: singularity.DefaultTolerance,
	}
}

// ParamsFromConfig builds pipeline parameters from a loaded configuration
func ParamsFromConfig(cfg *config.Config) (Params, error) {
	if err := cfg.Validate(); err != nil {
		return Params{}, err
	}
	region, err := preprocess.ParseStatsRegion(cfg.Segmentation.StatsRegion)
	if err != nil {
		return Params{}, fmt.Errorf("segmentation: %w", err)
	}

	p := DefaultParams()
	p.BlockSize = cfg.Processing.BlockSize
	p.Workers = cfg.Processing.Workers
	p.SmoothOrientation = cfg.Processing.SmoothOrientation
	p.TargetMean = cfg.Segmentation.TargetMean
	p.TargetVariance = cfg.Segmentation.TargetVariance
	p.StdThreshold = cfg.Segmentation.StdThreshold
	p.StatsRegion = region
	p.Frequency = frequency.Params{
		MinWaveLength: cfg.Frequency.MinWaveLength,
		MaxWaveLength: cfg.Frequency.MaxWaveLength,
		PeakWindow:    cfg.Frequency.PeakWindow,
		PeakNoise:     cfg.Frequency.PeakNoise,
		Workers:       cfg.Processing.Workers,
	}
	p.Enhancement = gabor.Params{
		Kx:        cfg.Enhancement.Kx,
		Ky:        cfg.Enhancement.Ky,
		AngleStep: cfg.Enhancement.AngleStep,
		Workers:   cfg.Processing.Workers,
	}
	p.MinutiaeRing = cfg.Minutiae.RingSize
	p.SingularityTolerance = cfg.Singularity.Tolerance
	return p, nil
}
