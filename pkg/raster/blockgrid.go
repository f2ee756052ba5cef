package raster

import (
	"gonum.org/v1/gonum/mat"
)

// BlockGrid holds one scalar per W×W block of a rows×cols raster. The
// values live in a gonum dense matrix indexed by block row and block column.
type BlockGrid struct {
	*mat.Dense
	shape Shape
}

// NewBlockGrid allocates a zeroed grid for a rows×cols raster split into
// W×W blocks. Trailing partial blocks get their own cell.
func NewBlockGrid(rows, cols, w int) *BlockGrid {
	s := Shape{Rows: rows, Cols: cols, W: w}
	br, bc := s.Blocks()
	return &BlockGrid{Dense: mat.NewDense(br, bc, nil), shape: s}
}

// Shape implements Shaped.
func (b *BlockGrid) Shape() Shape { return b.shape }

// W returns the block size.
func (b *BlockGrid) W() int { return b.shape.W }

// AtPixel returns the value of the block containing pixel (r, c).
func (b *BlockGrid) AtPixel(r, c int) float64 {
	return b.At(r/b.shape.W, c/b.shape.W)
}

// BlockBounds returns the half-open pixel extent of block (i, j), clipped to
// the raster.
func (b *BlockGrid) BlockBounds(i, j int) (r0, r1, c0, c1 int) {
	return blockBounds(b.shape, i, j)
}

// Clone returns a deep copy of b.
func (b *BlockGrid) Clone() *BlockGrid {
	out := &BlockGrid{Dense: mat.DenseCopyOf(b.Dense), shape: b.shape}
	return out
}

// Expand broadcasts every block value over its pixels.
func (b *BlockGrid) Expand() *Gray {
	g := NewGray(b.shape.Rows, b.shape.Cols)
	for r := 0; r < g.Rows; r++ {
		row := g.Row(r)
		for c := range row {
			row[c] = b.AtPixel(r, c)
		}
	}
	return g
}

func blockBounds(s Shape, i, j int) (r0, r1, c0, c1 int) {
	r0, c0 = i*s.W, j*s.W
	r1, c1 = min(r0+s.W, s.Rows), min(c0+s.W, s.Cols)
	return r0, r1, c0, c1
}
