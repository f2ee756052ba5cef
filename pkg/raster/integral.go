package raster

// Integral is a summed-area table: Sum over any rectangle costs four lookups.
type Integral struct {
	rows, cols int
	sums       []float64 // (rows+1)×(cols+1), first row and column zero
}

// NewIntegral builds the summed-area table of g.
func NewIntegral(g *Gray) *Integral {
	it := &Integral{rows: g.Rows, cols: g.Cols, sums: make([]float64, (g.Rows+1)*(g.Cols+1))}
	stride := g.Cols + 1
	for r := 0; r < g.Rows; r++ {
		var rowSum float64
		for c := 0; c < g.Cols; c++ {
			rowSum += g.At(r, c)
			it.sums[(r+1)*stride+c+1] = it.sums[r*stride+c+1] + rowSum
		}
	}
	return it
}

// Sum returns the total over rows [r0, r1) and columns [c0, c1). The
// rectangle must lie inside the raster.
func (it *Integral) Sum(r0, r1, c0, c1 int) float64 {
	stride := it.cols + 1
	return it.sums[r1*stride+c1] - it.sums[r0*stride+c1] - it.sums[r1*stride+c0] + it.sums[r0*stride+c0]
}
