// Package region finds the cleanest square window of a fingerprint and
// counts the ridges crossing its diagonals.
package region

import (
	"fmt"
	"image"
	"math"

	"ridgecount/internal/models"
	"ridgecount/pkg/raster"
)

// WindowBlocks is the side of the search window in blocks.
const WindowBlocks = 8

// Select slides an 8w×8w window over the image in steps of w, in raster
// order, and returns the position fully inside the ROI whose minutiae
// weight sum is lowest. The first window wins ties. When no window fits
// inside the ROI it returns raster.ErrNoRegion.
func Select(weights *raster.Gray, mask *raster.Mask, w int) (models.Region, error) {
	want := raster.Shape{Rows: weights.Rows, Cols: weights.Cols, W: w}
	if got := mask.Shape(); got != want {
		return models.Region{}, &raster.ShapeMismatchError{What: "region selection mask", Want: want, Got: got}
	}
	if w <= 0 {
		return models.Region{}, fmt.Errorf("region: invalid block size %d", w)
	}

	side := WindowBlocks * w
	full := float64(side * side)
	coverage := mask.Integral()
	score := raster.NewIntegral(weights)

	best := models.Region{Score: math.Inf(1)}
	found := false
	for r0 := 0; r0+side <= weights.Rows; r0 += w {
		for c0 := 0; c0+side <= weights.Cols; c0 += w {
			if coverage.Sum(r0, r0+side, c0, c0+side) != full {
				continue
			}
			if s := score.Sum(r0, r0+side, c0, c0+side); s < best.Score {
				best = models.Region{Row0: r0, Row1: r0 + side, Col0: c0, Col1: c0 + side, Score: s}
				found = true
			}
		}
	}
	if !found {
		return models.Region{}, raster.ErrNoRegion
	}
	return best, nil
}

// Crop copies the part of img covered by the region.
func Crop(img *image.Gray, reg models.Region) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, reg.Col1-reg.Col0, reg.Row1-reg.Row0))
	for r := reg.Row0; r < reg.Row1; r++ {
		src := img.Pix[r*img.Stride+reg.Col0 : r*img.Stride+reg.Col1]
		copy(out.Pix[(r-reg.Row0)*out.Stride:], src)
	}
	return out
}
