// Package raster holds the grid types shared by every stage of the
// fingerprint pipeline: pixel-resolution float rasters, block-resolution
// grids, the ROI mask and summed-area tables.
package raster

import (
	"image"
	"image/color"
	"math"
)

// Pixel values of two-valued ridge images. Ridges are dark.
const (
	Ridge      uint8 = 0
	Background uint8 = 255
)

// Gray is a pixel-resolution raster of float64 values in row-major order.
type Gray struct {
	Rows, Cols int
	Pix        []float64
}

// NewGray allocates a zeroed rows×cols raster.
func NewGray(rows, cols int) *Gray {
	return &Gray{Rows: rows, Cols: cols, Pix: make([]float64, rows*cols)}
}

// FromImage converts an image to a raster of 0..255 luminance values.
func FromImage(img image.Image) *Gray {
	b := img.Bounds()
	g := NewGray(b.Dy(), b.Dx())
	if src, ok := img.(*image.Gray); ok {
		for y := 0; y < g.Rows; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+g.Cols]
			for x, v := range row {
				g.Pix[y*g.Cols+x] = float64(v)
			}
		}
		return g
	}
	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; x++ {
			c := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			g.Pix[y*g.Cols+x] = float64(c.Y)
		}
	}
	return g
}

// At returns the value at row r, column c.
func (g *Gray) At(r, c int) float64 { return g.Pix[r*g.Cols+c] }

// Set stores v at row r, column c.
func (g *Gray) Set(r, c int, v float64) { g.Pix[r*g.Cols+c] = v }

// Row returns the backing slice of row r.
func (g *Gray) Row(r int) []float64 { return g.Pix[r*g.Cols : (r+1)*g.Cols] }

// Clone returns a deep copy of g.
func (g *Gray) Clone() *Gray {
	out := NewGray(g.Rows, g.Cols)
	copy(out.Pix, g.Pix)
	return out
}

// Empty reports whether g has no pixels.
func (g *Gray) Empty() bool { return g == nil || g.Rows == 0 || g.Cols == 0 }

// Image clamps the raster into an 8-bit grayscale image.
func (g *Gray) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Cols, g.Rows))
	for i, v := range g.Pix {
		img.Pix[i] = clamp8(v)
	}
	return img
}

// ScaledImage stretches the raster's value range onto 0..255. A constant
// raster maps to mid-gray.
func (g *Gray) ScaledImage() *image.Gray {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range g.Pix {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	img := image.NewGray(image.Rect(0, 0, g.Cols, g.Rows))
	for i, v := range g.Pix {
		if hi > lo {
			img.Pix[i] = clamp8((v - lo) / (hi - lo) * 255)
		} else {
			img.Pix[i] = 128
		}
	}
	return img
}

func clamp8(v float64) uint8 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.Round(v))
}

// NewBinary returns a rows×cols two-valued image filled with Background.
func NewBinary(rows, cols int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for i := range img.Pix {
		img.Pix[i] = Background
	}
	return img
}

// CloneGray returns a copy of an 8-bit image with its origin at (0, 0).
func CloneGray(src *image.Gray) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], src.Pix[y*src.Stride:y*src.Stride+b.Dx()])
	}
	return out
}
