// Package frequency estimates the ridge frequency of a fingerprint by
// projecting oriented blocks onto the ridge normal and measuring the
// spacing between projection peaks.
package frequency

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
	"sync"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"

	"ridgecount/pkg/raster"
)

// Params controls frequency estimation
type Params struct {
	// MinWaveLength and MaxWaveLength bound the accepted ridge period in pixels
	MinWaveLength float64
	MaxWaveLength float64

	// PeakWindow is the size of the max filter run over the projection
	PeakWindow int

	// PeakNoise is the largest gap between a sample and the max-filtered
	// projection that still marks the sample as a peak
	PeakNoise float64

	// Workers bounds the number of block rows processed concurrently
	Workers int
}

// DefaultParams returns the parameters used for 500 dpi prints
func DefaultParams() Params {
	return Params{
		MinWaveLength: 5,
		MaxWaveLength: 15,
		PeakWindow:    5,
		PeakNoise:     2,
	}
}

// Field holds the per-block estimates and the single frequency that
// represents the print.
type Field struct {
	// Blocks are the raw per-block frequencies, 0 where no estimate exists
	Blocks *raster.BlockGrid

	// Value is the median of the positive in-mask estimates, 0 if none
	Value float64

	mask *raster.Mask
}

// At returns the frequency at pixel (r, c): Value inside the ROI, 0 outside.
func (f *Field) At(r, c int) float64 {
	if f.mask == nil || !f.mask.At(r, c) {
		return 0
	}
	return f.Value
}

// Shape implements raster.Shaped.
func (f *Field) Shape() raster.Shape { return f.Blocks.Shape() }

// Pixels broadcasts the field to pixel resolution.
func (f *Field) Pixels() *raster.Gray {
	s := f.Shape()
	g := raster.NewGray(s.Rows, s.Cols)
	for r := 0; r < g.Rows; r++ {
		row := g.Row(r)
		for c := range row {
			row[c] = f.At(r, c)
		}
	}
	return g
}

// Estimate runs Block on every full block inside the ROI and collapses the
// positive estimates to their median.
func Estimate(g *raster.Gray, orient *raster.BlockGrid, mask *raster.Mask, p Params) (*Field, error) {
	if err := raster.CheckShape("frequency estimation", orient, mask); err != nil {
		return nil, err
	}
	s := orient.Shape()
	if img := (raster.Shape{Rows: g.Rows, Cols: g.Cols, W: s.W}); img != s {
		return nil, &raster.ShapeMismatchError{What: "frequency estimation image", Want: s, Got: img}
	}

	w := s.W
	blocks := raster.NewBlockGrid(s.Rows, s.Cols, w)
	br, bc := blocks.Dims()

	var mu sync.Mutex
	var estimates []float64
	raster.ParallelRows(br, p.Workers, func(i0, i1 int) {
		block := raster.NewGray(w, w)
		var local []float64
		for i := i0; i < i1; i++ {
			for j := 0; j < bc; j++ {
				r0, r1, c0, c1 := blocks.BlockBounds(i, j)
				if r1-r0 != w || c1-c0 != w || !mask.Block(i, j) {
					continue
				}
				for r := r0; r < r1; r++ {
					copy(block.Row(r-r0), g.Row(r)[c0:c1])
				}
				f := Block(block, orient.At(i, j), p)
				blocks.Set(i, j, f)
				if f > 0 {
					local = append(local, f)
				}
			}
		}
		mu.Lock()
		estimates = append(estimates, local...)
		mu.Unlock()
	})

	return &Field{Blocks: blocks, Value: median(estimates), mask: mask}, nil
}

// Block estimates the ridge frequency of one square block whose ridges run
// at angle theta. It returns 0 when fewer than two peaks are found or the
// wavelength falls outside [MinWaveLength, MaxWaveLength].
func Block(block *raster.Gray, theta float64, p Params) float64 {
	w := block.Rows
	if w == 0 || block.Cols != w {
		return 0
	}

	rotated := rotateVertical(block, theta)

	// Crop the square inscribed in every rotation of the block
	crop := int(float64(w) / math.Sqrt2)
	if crop < 2 {
		return 0
	}
	off := (w - crop) / 2
	proj := make([]float64, crop)
	for r := off; r < off+crop; r++ {
		floats.Add(proj, rotated.Row(r)[off:off+crop])
	}

	peaks := findPeaks(proj, p.PeakWindow, p.PeakNoise)
	if len(peaks) < 2 {
		return 0
	}
	waveLength := float64(peaks[len(peaks)-1]-peaks[0]) / float64(len(peaks)-1)
	if waveLength < p.MinWaveLength || waveLength > p.MaxWaveLength {
		return 0
	}
	return 1 / waveLength
}

// rotateVertical turns the block about its centre so that ridges with
// direction theta become vertical. Bicubic interpolation, replicated border.
func rotateVertical(block *raster.Gray, theta float64) *raster.Gray {
	w := block.Rows
	src := gocv.NewMatWithSize(w, w, gocv.MatTypeCV32F)
	defer src.Close()
	for r := 0; r < w; r++ {
		for c := 0; c < w; c++ {
			src.SetFloatAt(r, c, float32(block.At(r, c)))
		}
	}

	alpha := math.Pi/2 - theta
	cos, sin := math.Cos(alpha), math.Sin(alpha)
	centre := float64(w-1) / 2

	// Forward map: x' = cx + cos·(x-cx) - sin·(y-cy), y' = cy + sin·(x-cx) + cos·(y-cy)
	m := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	defer m.Close()
	m.SetDoubleAt(0, 0, cos)
	m.SetDoubleAt(0, 1, -sin)
	m.SetDoubleAt(0, 2, centre-cos*centre+sin*centre)
	m.SetDoubleAt(1, 0, sin)
	m.SetDoubleAt(1, 1, cos)
	m.SetDoubleAt(1, 2, centre-sin*centre-cos*centre)

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.WarpAffineWithParams(src, &dst, m, image.Pt(w, w),
		gocv.InterpolationCubic, gocv.BorderReplicate, color.RGBA{})

	out := raster.NewGray(w, w)
	for r := 0; r < w; r++ {
		for c := 0; c < w; c++ {
			out.Set(r, c, float64(dst.GetFloatAt(r, c)))
		}
	}
	return out
}

// findPeaks returns the indices whose value is within noise of the local
// maximum over a window of the given size and above the projection mean.
// The window is mirrored at the ends (d c b a | a b c d).
func findPeaks(proj []float64, window int, noise float64) []int {
	n := len(proj)
	if n == 0 {
		return nil
	}
	if window < 1 {
		window = 1
	}
	mean := floats.Sum(proj) / float64(n)
	lo := window / 2

	var peaks []int
	for i, v := range proj {
		localMax := math.Inf(-1)
		for k := i - lo; k < i-lo+window; k++ {
			localMax = math.Max(localMax, proj[reflect(k, n)])
		}
		if math.Abs(localMax-v) < noise && v > mean {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// reflect maps an index into [0, n) by mirroring about the array ends,
// repeating the edge sample.
func reflect(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - 1 - i
		}
	}
	return i
}

// median returns the median of values, or 0 for an empty slice
func median(values []float64) float64 {
	// Create a copy to avoid modifying the original
	valuesCopy := make([]float64, len(values))
	copy(valuesCopy, values)

	// Sort the values
	sort.Float64s(valuesCopy)

	// Calculate median
	n := len(valuesCopy)
	if n == 0 {
		return 0
	}

	if n%2 == 0 {
		return (valuesCopy[n/2-1] + valuesCopy[n/2]) / 2
	}

	return valuesCopy[n/2]
}

// String describes the field for logs.
func (f *Field) String() string {
	br, bc := f.Blocks.Dims()
	return fmt.Sprintf("frequency %.4f over %dx%d blocks", f.Value, br, bc)
}
