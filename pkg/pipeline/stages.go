package pipeline

import (
	"fmt"
	"image"

	"ridgecount/pkg/visualization"
)

// Stage names, in the order Viewer lists them
const (
	StageInput         = "input"
	StageNormalized    = "normalized"
	StageSegmented     = "segmented"
	StageOrientation   = "orientation"
	StageEnhanced      = "gabor"
	StageSkeleton      = "skeleton"
	StageMinutiae      = "minutiae"
	StageSingularities = "singularities"
	StageRidgeCount    = "ridge_count"
)

// MontageColumns is the number of stages per montage row
const MontageColumns = 4

// Viewer returns the displayable stages of the run. The ridge count image
// is the last stage so a montage of the first eight keeps a 4×2 layout.
func (r *Result) Viewer() (*visualization.Viewer, error) {
	orient, err := visualization.Orientation(r.Orientation, r.Mask)
	if err != nil {
		return nil, fmt.Errorf("orientation view: %w", err)
	}
	minutiae, err := visualization.Minutiae(r.Skeleton, r.Minutiae)
	if err != nil {
		return nil, fmt.Errorf("minutiae view: %w", err)
	}

	v := visualization.NewViewer()
	v.Add(StageInput, r.Input)
	v.Add(StageNormalized, r.Normalized.ScaledImage())
	v.Add(StageSegmented, r.Segmented.ScaledImage())
	v.Add(StageOrientation, orient)
	v.Add(StageEnhanced, r.Enhanced)
	v.Add(StageSkeleton, r.Skeleton)
	v.Add(StageMinutiae, minutiae)
	v.Add(StageSingularities, r.SingularityImage)
	v.Add(StageRidgeCount, r.RidgeImage)
	return v, nil
}

// SaveStages writes every stage of the run into dir as NN_name.png
func (r *Result) SaveStages(dir string) error {
	v, err := r.Viewer()
	if err != nil {
		return err
	}
	return v.SaveStageSequence(dir)
}

// Montage composes the eight analysis stages into one overview image with
// tile pixels per column.
func (r *Result) Montage(tile int) (*image.RGBA, error) {
	v, err := r.Viewer()
	if err != nil {
		return nil, err
	}
	stages := v.Stages()
	if len(stages) > 2*MontageColumns {
		stages = stages[:2*MontageColumns]
	}
	return visualization.NewViewer(stages...).Montage(MontageColumns, tile)
}
