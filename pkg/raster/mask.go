package raster

import (
	"image"
)

// Mask is the region of interest. It stores one flag per W×W block and
// answers pixel queries by looking up the containing block, so it is
// piecewise-constant over blocks by construction.
type Mask struct {
	shape  Shape
	br, bc int
	blocks []bool
}

// NewMask returns an all-background mask for a rows×cols raster.
func NewMask(rows, cols, w int) *Mask {
	s := Shape{Rows: rows, Cols: cols, W: w}
	br, bc := s.Blocks()
	return &Mask{shape: s, br: br, bc: bc, blocks: make([]bool, br*bc)}
}

// Shape implements Shaped.
func (m *Mask) Shape() Shape { return m.shape }

// BlockDims returns the number of block rows and block columns.
func (m *Mask) BlockDims() (int, int) { return m.br, m.bc }

// Block reports whether block (i, j) is foreground.
func (m *Mask) Block(i, j int) bool { return m.blocks[i*m.bc+j] }

// SetBlock marks block (i, j).
func (m *Mask) SetBlock(i, j int, v bool) { m.blocks[i*m.bc+j] = v }

// At reports whether pixel (r, c) is foreground.
func (m *Mask) At(r, c int) bool {
	return m.blocks[(r/m.shape.W)*m.bc+c/m.shape.W]
}

// BlockBounds returns the half-open pixel extent of block (i, j).
func (m *Mask) BlockBounds(i, j int) (r0, r1, c0, c1 int) {
	return blockBounds(m.shape, i, j)
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for i := 0; i < m.br; i++ {
		for j := 0; j < m.bc; j++ {
			if m.Block(i, j) {
				r0, r1, c0, c1 := m.BlockBounds(i, j)
				n += (r1 - r0) * (c1 - c0)
			}
		}
	}
	return n
}

// Empty reports whether no block is foreground.
func (m *Mask) Empty() bool {
	for _, v := range m.blocks {
		if v {
			return false
		}
	}
	return true
}

// Covers reports whether every pixel of rect (x = column, y = row) lies
// inside the raster and inside the ROI.
func (m *Mask) Covers(rect image.Rectangle) bool {
	if rect.Empty() || rect.Min.X < 0 || rect.Min.Y < 0 ||
		rect.Max.X > m.shape.Cols || rect.Max.Y > m.shape.Rows {
		return false
	}
	w := m.shape.W
	for i := rect.Min.Y / w; i <= (rect.Max.Y-1)/w; i++ {
		for j := rect.Min.X / w; j <= (rect.Max.X-1)/w; j++ {
			if !m.Block(i, j) {
				return false
			}
		}
	}
	return true
}

// Pixels expands the mask into a pixel raster of 0 and 1.
func (m *Mask) Pixels() *Gray {
	g := NewGray(m.shape.Rows, m.shape.Cols)
	for r := 0; r < g.Rows; r++ {
		row := g.Row(r)
		for c := range row {
			if m.At(r, c) {
				row[c] = 1
			}
		}
	}
	return g
}

// Image renders the mask as a black/white image, white = foreground.
func (m *Mask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.shape.Cols, m.shape.Rows))
	for r := 0; r < m.shape.Rows; r++ {
		for c := 0; c < m.shape.Cols; c++ {
			if m.At(r, c) {
				img.Pix[r*img.Stride+c] = 255
			}
		}
	}
	return img
}

// Equal reports whether two masks have the same shape and blocks.
func (m *Mask) Equal(o *Mask) bool {
	if m.shape != o.shape {
		return false
	}
	for i, v := range m.blocks {
		if o.blocks[i] != v {
			return false
		}
	}
	return true
}

// Integral returns the summed-area table of the 0/1 pixel mask, so the
// foreground coverage of any rectangle is one lookup.
func (m *Mask) Integral() *Integral {
	return NewIntegral(m.Pixels())
}
