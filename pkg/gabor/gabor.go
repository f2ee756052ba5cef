// Package gabor implements contextual ridge enhancement with a bank of
// oriented even-symmetric Gabor filters tuned to the print's ridge frequency.
package gabor

import (
	"errors"
	"fmt"
	"image"
	"math"

	"ridgecount/pkg/frequency"
	"ridgecount/pkg/raster"
)

// Params controls the filter bank
type Params struct {
	// Kx and Ky scale the Gaussian envelope across and along the ridges,
	// relative to the ridge period
	Kx float64
	Ky float64

	// AngleStep is the angular distance between filters in degrees
	AngleStep float64

	// Workers bounds the number of goroutines filtering row bands
	Workers int
}

// DefaultParams returns the standard envelope and a 3° bank
func DefaultParams() Params {
	return Params{Kx: 0.65, Ky: 0.65, AngleStep: 3}
}

// Bank is a set of Gabor kernels sharing one frequency, one per multiple of
// the angle step in [0°, 180°).
type Bank struct {
	Frequency float64
	Step      float64 // degrees
	HalfWidth int

	kernels [][]float64
}

// Representative returns the frequency the bank is tuned to: the field's
// value rounded to two decimals. A field without estimates yields 0.
func Representative(field *frequency.Field) float64 {
	if field == nil || field.Value <= 0 {
		return 0
	}
	return math.Round(field.Value*100) / 100
}

// NewBank builds the kernels for frequency freq. Each kernel is
// exp(-(u²/σx² + v²/σy²))·cos(2πfu) with σx = kx/f and σy = ky/f, where u
// runs along the ridge normal and v along the ridge.
func NewBank(freq, kx, ky, step float64) (*Bank, error) {
	if freq <= 0 {
		return nil, errors.New("gabor: frequency must be positive")
	}
	if step <= 0 || step > 180 {
		return nil, fmt.Errorf("gabor: invalid angle step %g", step)
	}

	sigmaX, sigmaY := kx/freq, ky/freq
	hw := int(math.Round(3 * math.Max(sigmaX, sigmaY)))
	count := int(math.Round(180 / step))
	if count < 1 {
		count = 1
	}

	b := &Bank{Frequency: freq, Step: step, HalfWidth: hw, kernels: make([][]float64, count)}
	side := 2*hw + 1
	for k := range b.kernels {
		theta := float64(k) * step * math.Pi / 180
		alpha := theta + math.Pi/2
		cos, sin := math.Cos(alpha), math.Sin(alpha)

		kernel := make([]float64, side*side)
		for dy := -hw; dy <= hw; dy++ {
			for dx := -hw; dx <= hw; dx++ {
				u := float64(dx)*cos + float64(dy)*sin
				v := -float64(dx)*sin + float64(dy)*cos
				envelope := math.Exp(-(u*u/(sigmaX*sigmaX) + v*v/(sigmaY*sigmaY)))
				kernel[(dy+hw)*side+dx+hw] = envelope * math.Cos(2*math.Pi*freq*u)
			}
		}
		b.kernels[k] = kernel
	}
	return b, nil
}

// Len returns the number of orientations in the bank.
func (b *Bank) Len() int { return len(b.kernels) }

// Index returns the kernel closest to ridge angle theta (radians).
func (b *Bank) Index(theta float64) int {
	n := len(b.kernels)
	idx := int(math.Round(theta*180/math.Pi/b.Step)) % n
	if idx < 0 {
		idx += n
	}
	return idx
}

// Kernel returns kernel k as a (2·HalfWidth+1)² row-major slice.
func (b *Bank) Kernel(k int) []float64 { return b.kernels[k] }

// Response correlates kernel k with g centred at (r, c). The window must lie
// inside g.
func (b *Bank) Response(g *raster.Gray, k, r, c int) float64 {
	hw := b.HalfWidth
	side := 2*hw + 1
	kernel := b.kernels[k]
	var sum float64
	for dy := -hw; dy <= hw; dy++ {
		row := g.Row(r + dy)[c-hw : c+hw+1]
		krow := kernel[(dy+hw)*side : (dy+hw+1)*side]
		for i, v := range row {
			sum += krow[i] * v
		}
	}
	return sum
}

// Enhance filters every pixel that has a frequency and lies strictly more
// than the half width from each border with the kernel matching its block
// orientation. Negative responses become raster.Ridge, everything else
// raster.Background. Without a representative frequency the result is
// entirely Background.
func Enhance(g *raster.Gray, orient *raster.BlockGrid, freq *frequency.Field, p Params) (*image.Gray, error) {
	if err := raster.CheckShape("gabor enhancement", orient, freq); err != nil {
		return nil, err
	}
	s := orient.Shape()
	if img := (raster.Shape{Rows: g.Rows, Cols: g.Cols, W: s.W}); img != s {
		return nil, &raster.ShapeMismatchError{What: "gabor enhancement image", Want: s, Got: img}
	}

	out := raster.NewBinary(g.Rows, g.Cols)
	f := Representative(freq)
	if f == 0 {
		return out, nil
	}
	bank, err := NewBank(f, p.Kx, p.Ky, p.AngleStep)
	if err != nil {
		return nil, err
	}

	hw := bank.HalfWidth
	raster.ParallelRows(g.Rows, p.Workers, func(r0, r1 int) {
		for r := max(r0, hw+1); r < min(r1, g.Rows-hw); r++ {
			for c := hw + 1; c < g.Cols-hw; c++ {
				if freq.At(r, c) <= 0 {
					continue
				}
				k := bank.Index(orient.AtPixel(r, c))
				if bank.Response(g, k, r, c) < 0 {
					out.Pix[r*out.Stride+c] = raster.Ridge
				}
			}
		}
	})
	return out, nil
}
