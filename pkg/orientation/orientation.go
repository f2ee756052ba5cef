// Package orientation estimates the block-wise ridge orientation field with
// the least-squares gradient method.
//
// Angles are ridge directions in image coordinates (x to the right, y down),
// measured like atan2(dy, dx) and reduced to [0, π). A block with no gradient
// energy gets the sentinel value 0.
package orientation

import (
	"image"
	"math"

	"gocv.io/x/gocv"

	"ridgecount/pkg/raster"
)

// Smoothing kernel of the doubled-angle representation.
const (
	smoothKernel = 5
	smoothSigma  = 1.0
)

// Gradients returns the horizontal and vertical 3×3 Sobel derivatives of g.
// Out-of-range neighbours are mirrored without repeating the edge pixel.
func Gradients(g *raster.Gray) (gx, gy *raster.Gray) {
	src := toMat(g)
	defer src.Close()

	dx := gocv.NewMat()
	defer dx.Close()
	gocv.Sobel(src, &dx, gocv.MatTypeCV64F, 1, 0, 3, 1, 0, gocv.BorderDefault)

	dy := gocv.NewMat()
	defer dy.Close()
	gocv.Sobel(src, &dy, gocv.MatTypeCV64F, 0, 1, 3, 1, 0, gocv.BorderDefault)

	return fromMat(dx, g.Rows, g.Cols), fromMat(dy, g.Rows, g.Cols)
}

// toMat copies a raster into a single-channel CV64F matrix.
func toMat(g *raster.Gray) gocv.Mat {
	m := gocv.NewMatWithSize(g.Rows, g.Cols, gocv.MatTypeCV64F)
	for r := 0; r < g.Rows; r++ {
		for c, v := range g.Row(r) {
			m.SetDoubleAt(r, c, v)
		}
	}
	return m
}

// fromMat copies a CV64F matrix back into a raster.
func fromMat(m gocv.Mat, rows, cols int) *raster.Gray {
	g := raster.NewGray(rows, cols)
	for r := 0; r < rows; r++ {
		row := g.Row(r)
		for c := range row {
			row[c] = m.GetDoubleAt(r, c)
		}
	}
	return g
}

// Estimate computes one ridge orientation per w×w block of g. Trailing
// partial blocks use the pixels they have.
func Estimate(g *raster.Gray, w, workers int) *raster.BlockGrid {
	field := raster.NewBlockGrid(g.Rows, g.Cols, w)
	if g.Empty() {
		return field
	}
	gx, gy := Gradients(g)

	br, bc := field.Dims()
	raster.ParallelRows(br, workers, func(i0, i1 int) {
		for i := i0; i < i1; i++ {
			for j := 0; j < bc; j++ {
				r0, r1, c0, c1 := field.BlockBounds(i, j)
				var num, den float64
				for r := r0; r < r1; r++ {
					for c := c0; c < c1; c++ {
						dx, dy := gx.At(r, c), gy.At(r, c)
						num += 2 * dx * dy
						den += dx*dx - dy*dy
					}
				}
				field.Set(i, j, blockAngle(num, den))
			}
		}
	})
	return field
}

// blockAngle turns the doubled-angle gradient sums into a ridge direction.
func blockAngle(num, den float64) float64 {
	if num == 0 && den == 0 {
		return 0
	}
	return wrap((math.Pi + math.Atan2(num, den)) / 2)
}

// wrap reduces an angle into [0, π).
func wrap(theta float64) float64 {
	theta = math.Mod(theta, math.Pi)
	if theta < 0 {
		theta += math.Pi
	}
	if theta >= math.Pi {
		theta = 0
	}
	return theta
}

// Smooth low-pass filters the field in the doubled-angle domain, where θ and
// θ+π coincide, using a 5×5 Gaussian with σ = 1 and replicated borders.
func Smooth(field *raster.BlockGrid) *raster.BlockGrid {
	br, bc := field.Dims()
	if br == 0 || bc == 0 {
		return field.Clone()
	}
	cos2 := gocv.NewMatWithSize(br, bc, gocv.MatTypeCV64F)
	defer cos2.Close()
	sin2 := gocv.NewMatWithSize(br, bc, gocv.MatTypeCV64F)
	defer sin2.Close()
	for i := 0; i < br; i++ {
		for j := 0; j < bc; j++ {
			theta := field.At(i, j)
			cos2.SetDoubleAt(i, j, math.Cos(2*theta))
			sin2.SetDoubleAt(i, j, math.Sin(2*theta))
		}
	}

	ksize := image.Point{X: smoothKernel, Y: smoothKernel}
	cosBlur := gocv.NewMat()
	defer cosBlur.Close()
	gocv.GaussianBlur(cos2, &cosBlur, ksize, smoothSigma, smoothSigma, gocv.BorderReplicate)
	sinBlur := gocv.NewMat()
	defer sinBlur.Close()
	gocv.GaussianBlur(sin2, &sinBlur, ksize, smoothSigma, smoothSigma, gocv.BorderReplicate)

	out := field.Clone()
	for i := 0; i < br; i++ {
		for j := 0; j < bc; j++ {
			out.Set(i, j, wrap(math.Atan2(sinBlur.GetDoubleAt(i, j), cosBlur.GetDoubleAt(i, j))/2))
		}
	}
	return out
}
