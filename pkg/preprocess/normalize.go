// Package preprocess implements the first pipeline stage: global intensity
// normalization and block-variance segmentation of the region of interest.
package preprocess

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"ridgecount/pkg/raster"
)

// minStdDev is the smallest standard deviation treated as signal.
const minStdDev = 1e-12

// Normalize rescales g to mean m0 and variance v0 (Hong, Wan and Jain).
// Every pixel keeps the sign of its deviation from the global mean; only the
// magnitude is rescaled. A constant image has no spread to rescale and
// yields raster.ErrDomain without producing output.
func Normalize(g *raster.Gray, m0, v0 float64) (*raster.Gray, error) {
	if g.Empty() {
		return nil, raster.ErrEmptyImage
	}

	m, std := stat.PopMeanStdDev(g.Pix, nil)
	if std < minStdDev {
		return nil, fmt.Errorf("normalize: %w", raster.ErrDomain)
	}
	v := std * std

	out := raster.NewGray(g.Rows, g.Cols)
	for i, x := range g.Pix {
		dev := math.Sqrt(v0 * (x - m) * (x - m) / v)
		if x > m {
			out.Pix[i] = m0 + dev
		} else {
			out.Pix[i] = m0 - dev
		}
	}
	return out, nil
}

// Constant returns a raster of the given size filled with v. The pipeline
// uses it as the no-signal substitute when Normalize reports ErrDomain.
func Constant(rows, cols int, v float64) *raster.Gray {
	g := raster.NewGray(rows, cols)
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

// zscore returns (g - mean) / std over the whole raster, or zeros when the
// raster is flat.
func zscore(g *raster.Gray) *raster.Gray {
	out := raster.NewGray(g.Rows, g.Cols)
	m, std := stat.PopMeanStdDev(g.Pix, nil)
	if std < minStdDev {
		return out
	}
	for i, x := range g.Pix {
		out.Pix[i] = (x - m) / std
	}
	return out
}
