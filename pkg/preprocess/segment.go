package preprocess

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"ridgecount/pkg/raster"
)

// StatsRegion selects which pixels provide the mean and standard deviation
// of the ROI re-normalization.
type StatsRegion int

const (
	// StatsForeground uses the ROI pixels, so ridges end up with zero mean
	// and unit variance.
	StatsForeground StatsRegion = iota

	// StatsBackground uses the pixels outside the ROI. Kept for parity with
	// older outputs that were produced this way.
	StatsBackground
)

// ParseStatsRegion maps the configuration strings "foreground" and
// "background" to a StatsRegion.
func ParseStatsRegion(s string) (StatsRegion, error) {
	switch s {
	case "", "foreground":
		return StatsForeground, nil
	case "background":
		return StatsBackground, nil
	}
	return StatsForeground, fmt.Errorf("unknown stats region %q", s)
}

func (r StatsRegion) String() string {
	if r == StatsBackground {
		return "background"
	}
	return "foreground"
}

// DefaultStdThreshold is the fraction of the global standard deviation a
// block must reach to count as foreground.
const DefaultStdThreshold = 0.2

// Segmentation is the output of Segment.
type Segmentation struct {
	// Mask is the smoothed region of interest
	Mask *raster.Mask

	// Segmented is the input multiplied by the mask
	Segmented *raster.Gray

	// Normalized is the input re-normalized with the statistics of the
	// selected StatsRegion
	Normalized *raster.Gray
}

// Segment splits g into w×w blocks and keeps those whose standard deviation
// reaches threshold·std(g). The block mask is smoothed with a morphological
// opening then closing using a 2w elliptical kernel and re-quantized to
// blocks. A flat image yields an all-background mask.
func Segment(g *raster.Gray, w int, threshold float64, region StatsRegion) (*Segmentation, error) {
	if g.Empty() {
		return nil, raster.ErrEmptyImage
	}
	if w <= 0 {
		return nil, fmt.Errorf("segment: invalid block size %d", w)
	}

	mask := raster.NewMask(g.Rows, g.Cols, w)
	_, globalStd := stat.PopMeanStdDev(g.Pix, nil)
	if globalStd >= minStdDev {
		limit := globalStd * threshold
		br, bc := mask.BlockDims()
		values := make([]float64, 0, w*w)
		for i := 0; i < br; i++ {
			for j := 0; j < bc; j++ {
				r0, r1, c0, c1 := mask.BlockBounds(i, j)
				values = values[:0]
				for r := r0; r < r1; r++ {
					values = append(values, g.Row(r)[c0:c1]...)
				}
				_, blockStd := stat.PopMeanStdDev(values, nil)
				mask.SetBlock(i, j, blockStd >= limit)
			}
		}

		smoothed, err := smoothMask(mask)
		if err != nil {
			return nil, fmt.Errorf("segment: %w", err)
		}
		mask = smoothed
	}

	segmented := raster.NewGray(g.Rows, g.Cols)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if mask.At(r, c) {
				segmented.Set(r, c, g.At(r, c))
			}
		}
	}

	return &Segmentation{
		Mask:       mask,
		Segmented:  segmented,
		Normalized: renormalize(g, mask, region),
	}, nil
}

// smoothMask opens then closes the pixel-resolution mask with an elliptical
// kernel of twice the block size, then assigns each block the majority value
// of its smoothed pixels.
func smoothMask(mask *raster.Mask) (*raster.Mask, error) {
	shape := mask.Shape()
	data := make([]byte, shape.Rows*shape.Cols)
	for r := 0; r < shape.Rows; r++ {
		for c := 0; c < shape.Cols; c++ {
			if mask.At(r, c) {
				data[r*shape.Cols+c] = 1
			}
		}
	}

	src, err := gocv.NewMatFromBytes(shape.Rows, shape.Cols, gocv.MatTypeCV8UC1, data)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap mask: %w", err)
	}
	defer src.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(2*shape.W, 2*shape.W))
	defer kernel.Close()

	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyEx(src, &opened, gocv.MorphOpen, kernel)

	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(opened, &closed, gocv.MorphClose, kernel)

	pixels := closed.ToBytes()
	if len(pixels) != len(data) {
		return nil, fmt.Errorf("morphology returned %d pixels, expected %d", len(pixels), len(data))
	}

	out := raster.NewMask(shape.Rows, shape.Cols, shape.W)
	br, bc := out.BlockDims()
	for i := 0; i < br; i++ {
		for j := 0; j < bc; j++ {
			r0, r1, c0, c1 := out.BlockBounds(i, j)
			kept := 0
			for r := r0; r < r1; r++ {
				for c := c0; c < c1; c++ {
					if pixels[r*shape.Cols+c] != 0 {
						kept++
					}
				}
			}
			out.SetBlock(i, j, 2*kept >= (r1-r0)*(c1-c0))
		}
	}
	return out, nil
}

// renormalize z-scores g globally, then shifts and scales it by the mean and
// standard deviation of the pixels in the chosen region. An empty or flat
// region leaves the global z-score unchanged.
func renormalize(g *raster.Gray, mask *raster.Mask, region StatsRegion) *raster.Gray {
	z := zscore(g)

	wantForeground := region == StatsForeground
	values := make([]float64, 0, len(z.Pix))
	for r := 0; r < z.Rows; r++ {
		for c := 0; c < z.Cols; c++ {
			if mask.At(r, c) == wantForeground {
				values = append(values, z.At(r, c))
			}
		}
	}
	if len(values) == 0 {
		return z
	}

	m, std := stat.PopMeanStdDev(values, nil)
	if std < minStdDev {
		return z
	}
	for i, x := range z.Pix {
		z.Pix[i] = (x - m) / std
	}
	return z
}
