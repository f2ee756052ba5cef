// Package pipeline composes the feature extraction stages into one ordered
// run over a single fingerprint image.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"ridgecount/internal/models"
	"ridgecount/pkg/frequency"
	"ridgecount/pkg/gabor"
	"ridgecount/pkg/orientation"
	"ridgecount/pkg/preprocess"
	"ridgecount/pkg/raster"
	"ridgecount/pkg/region"
	"ridgecount/pkg/singularity"
	"ridgecount/pkg/skeleton"
)

// Result holds the output of every stage of one run.
type Result struct {
	// Input is the 8-bit grayscale input
	Input *image.Gray

	// Normalized is the globally normalized image
	Normalized *raster.Gray

	// Segmented is the normalized image multiplied by the ROI mask
	Segmented *raster.Gray

	// ROINormalized is the normalized image re-normalized over the ROI; it
	// feeds frequency estimation and enhancement
	ROINormalized *raster.Gray

	// Mask is the block-resolution region of interest
	Mask *raster.Mask

	// Orientation holds one ridge angle in [0, π) per block
	Orientation *raster.BlockGrid

	// Frequency holds the per-block estimates and the print frequency
	Frequency *frequency.Field

	// Enhanced is the binary Gabor-filtered ridge image
	Enhanced *image.Gray

	// Skeleton is the one-pixel-wide ridge image
	Skeleton *image.Gray

	// Minutiae and MinutiaeWeights describe the skeleton landmarks
	Minutiae        []models.Minutia
	MinutiaeWeights *raster.Gray

	// Region is the selected window, nil when none fits inside the ROI
	Region *models.Region

	// RidgeCount is measured along the winning diagonal of Region
	RidgeCount models.RidgeCount

	// RidgeImage is the colour input with the region and count drawn on it
	RidgeImage *image.RGBA

	// Singularities are the detected loops, deltas and whorls
	Singularities []models.Singularity

	// SingularityImage is the colour skeleton with singular blocks outlined
	SingularityImage *image.RGBA

	// Elapsed is the wall time of the run
	Elapsed time.Duration
}

// Analyzer runs the feature extraction pipeline.
//
// The run consists of these steps:
// 1. Global normalization
// 2. Segmentation and ROI re-normalization
// 3. Orientation field estimation
// 4. Ridge frequency estimation
// 5. Gabor enhancement
// 6. Thinning and minutiae extraction
// 7. Region selection and ridge counting
// 8. Singularity detection
type Analyzer struct {
	// params stores the pipeline configuration
	params Params

	// logger receives one debug event per step
	logger zerolog.Logger
}

// NewAnalyzer creates an analyzer with the provided parameters and logger.
// Use zerolog.Nop() to silence it.
func NewAnalyzer(params Params, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		params: params,
		logger: logger.With().Str("component", "pipeline").Logger(),
	}
}

// Params returns the analyzer configuration
func (a *Analyzer) Params() Params {
	return a.params
}

// Process runs every stage on img. The context is checked between stages;
// a cancelled run returns ctx.Err() and no partial result.
func (a *Analyzer) Process(ctx context.Context, img image.Image) (*Result, error) {
	start := time.Now()
	p := a.params
	w := p.BlockSize
	if w <= 0 {
		return nil, fmt.Errorf("invalid block size %d", w)
	}

	input := raster.FromImage(img)
	if input.Empty() {
		return nil, raster.ErrEmptyImage
	}
	res := &Result{Input: input.Image()}

	// Step 1: Normalization
	stepStart := time.Now()
	normalized, err := preprocess.Normalize(input, p.TargetMean, p.TargetVariance)
	switch {
	case errors.Is(err, raster.ErrDomain):
		a.logger.Warn().Err(err).Msg("input has no contrast, continuing with a flat image")
		normalized = preprocess.Constant(input.Rows, input.Cols, p.TargetMean)
	case err != nil:
		return nil, fmt.Errorf("normalization failed: %w", err)
	}
	res.Normalized = normalized
	if err := a.step(ctx, 1, "normalization", stepStart); err != nil {
		return nil, err
	}

	// Step 2: Segmentation
	stepStart = time.Now()
	seg, err := preprocess.Segment(normalized, w, p.StdThreshold, p.StatsRegion)
	if err != nil {
		return nil, fmt.Errorf("segmentation failed: %w", err)
	}
	res.Mask, res.Segmented, res.ROINormalized = seg.Mask, seg.Segmented, seg.Normalized
	if err := a.step(ctx, 2, "segmentation", stepStart); err != nil {
		return nil, err
	}

	// Step 3: Orientation field
	stepStart = time.Now()
	orient := orientation.Estimate(normalized, w, p.Workers)
	if p.SmoothOrientation {
		orient = orientation.Smooth(orient)
	}
	res.Orientation = orient
	if err := a.step(ctx, 3, "orientation", stepStart); err != nil {
		return nil, err
	}

	// Step 4: Ridge frequency
	stepStart = time.Now()
	freqParams := p.Frequency
	freqParams.Workers = p.Workers
	field, err := frequency.Estimate(seg.Normalized, orient, seg.Mask, freqParams)
	if err != nil {
		return nil, fmt.Errorf("frequency estimation failed: %w", err)
	}
	res.Frequency = field
	if err := a.step(ctx, 4, "frequency", stepStart); err != nil {
		return nil, err
	}

	// Step 5: Gabor enhancement
	stepStart = time.Now()
	gaborParams := p.Enhancement
	gaborParams.Workers = p.Workers
	enhanced, err := gabor.Enhance(seg.Normalized, orient, field, gaborParams)
	if err != nil {
		return nil, fmt.Errorf("enhancement failed: %w", err)
	}
	res.Enhanced = enhanced
	if err := a.step(ctx, 5, "enhancement", stepStart); err != nil {
		return nil, err
	}

	// Step 6: Skeleton and minutiae
	stepStart = time.Now()
	detector, err := skeleton.NewDetector(p.MinutiaeRing)
	if err != nil {
		return nil, fmt.Errorf("minutiae extraction failed: %w", err)
	}
	res.Skeleton = skeleton.Thin(enhanced)
	res.Minutiae = detector.Detect(res.Skeleton)
	res.MinutiaeWeights = detector.Weights(res.Skeleton)
	if err := a.step(ctx, 6, "skeleton", stepStart); err != nil {
		return nil, err
	}

	// Step 7: Region selection and ridge count
	stepStart = time.Now()
	reg, err := region.Select(res.MinutiaeWeights, seg.Mask, w)
	switch {
	case errors.Is(err, raster.ErrNoRegion):
		a.logger.Warn().Err(err).Msg("ridge count skipped")
	case err != nil:
		return nil, fmt.Errorf("region selection failed: %w", err)
	default:
		res.Region = &reg
	}
	res.RidgeImage, res.RidgeCount, err = region.Render(res.Input, res.Skeleton, res.Region, w)
	if err != nil {
		return nil, fmt.Errorf("ridge count rendering failed: %w", err)
	}
	if err := a.step(ctx, 7, "ridge count", stepStart); err != nil {
		return nil, err
	}

	// Step 8: Singularities
	stepStart = time.Now()
	res.Singularities, err = singularity.Detect(orient, seg.Mask, p.SingularityTolerance)
	if err != nil {
		return nil, fmt.Errorf("singularity detection failed: %w", err)
	}
	res.SingularityImage, err = singularity.Render(res.Skeleton, res.Singularities, w)
	if err != nil {
		return nil, fmt.Errorf("singularity rendering failed: %w", err)
	}
	if err := a.step(ctx, 8, "singularities", stepStart); err != nil {
		return nil, err
	}

	res.Elapsed = time.Since(start)
	a.logger.Debug().
		Int("minutiae", len(res.Minutiae)).
		Float64("frequency", field.Value).
		Int("ridges", res.RidgeCount.Count).
		Int("singularities", len(res.Singularities)).
		Dur("elapsed", res.Elapsed).
		Msg("analysis complete")
	return res, nil
}

// step logs a finished stage and reports whether the run was cancelled
func (a *Analyzer) step(ctx context.Context, n int, stage string, started time.Time) error {
	a.logger.Debug().
		Int("step", n).
		Str("stage", stage).
		Dur("elapsed", time.Since(started)).
		Msg("stage complete")
	return ctx.Err()
}
