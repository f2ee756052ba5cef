// Package skeleton thins binary ridge images to one-pixel-wide skeletons and
// extracts minutiae from them with the crossing number.
package skeleton

import (
	"image"

	"ridgecount/pkg/raster"
)

// isRidge reports whether an 8-bit pixel belongs to a ridge.
func isRidge(v uint8) bool { return v < 128 }

// Thin reduces the ridges of a two-valued image to one-pixel-wide curves
// with the Guo-Hall parallel algorithm. A pixel is only removed when it is
// a simple point (Hilditch crossing number 1), so every 8-connected ridge
// component survives, including 2×2 blobs and two-pixel-thick diagonals.
// Each pass runs both sub-iterations; thinning stops after a pass that
// removes nothing, so thinning a skeleton returns it unchanged. Pixels
// outside the image count as background.
func Thin(img *image.Gray) *image.Gray {
	b := img.Bounds()
	rows, cols := b.Dy(), b.Dx()

	grid := make([]uint8, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if isRidge(img.Pix[y*img.Stride+x]) {
				grid[y*cols+x] = 1
			}
		}
	}

	at := func(r, c int) uint8 {
		if r < 0 || r >= rows || c < 0 || c >= cols {
			return 0
		}
		return grid[r*cols+c]
	}

	var remove []int
	for {
		removed := 0
		for step := 0; step < 2; step++ {
			remove = remove[:0]
			for r := 0; r < rows; r++ {
				for c := 0; c < cols; c++ {
					if grid[r*cols+c] == 0 {
						continue
					}
					// x1..x8 counter-clockwise from east
					x := [8]uint8{
						at(r, c+1), at(r-1, c+1), at(r-1, c), at(r-1, c-1),
						at(r, c-1), at(r+1, c-1), at(r+1, c), at(r+1, c+1),
					}
					if shouldRemove(x, step) {
						remove = append(remove, r*cols+c)
					}
				}
			}
			for _, i := range remove {
				grid[i] = 0
			}
			removed += len(remove)
		}
		if removed == 0 {
			break
		}
	}

	out := raster.NewBinary(rows, cols)
	for i, v := range grid {
		if v == 1 {
			out.Pix[(i/cols)*out.Stride+i%cols] = raster.Ridge
		}
	}
	return out
}

// shouldRemove applies the Guo-Hall deletion test to the neighbours x1..x8
// of a ridge pixel (x1 east, counter-clockwise) in the given sub-iteration.
func shouldRemove(x [8]uint8, step int) bool {
	// nb returns x_k for k in 1..9, with x9 = x1
	nb := func(k int) uint8 { return x[(k-1)%8] }

	crossings := 0
	for i := 1; i <= 4; i++ {
		if nb(2*i-1) == 0 && (nb(2*i) == 1 || nb(2*i+1) == 1) {
			crossings++
		}
	}
	if crossings != 1 {
		return false
	}

	n1, n2 := 0, 0
	for k := 1; k <= 4; k++ {
		n1 += int(nb(2*k-1) | nb(2*k))
		n2 += int(nb(2*k) | nb(2*k+1))
	}
	if m := min(n1, n2); m < 2 || m > 3 {
		return false
	}

	if step == 0 {
		return (nb(2)|nb(3)|(1-nb(8)))&nb(1) == 0
	}
	return (nb(6)|nb(7)|(1-nb(4)))&nb(5) == 0
}
