package raster

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain reports degenerate numeric input, such as an image with zero
	// variance, that would otherwise divide by zero.
	ErrDomain = errors.New("degenerate input: zero variance")

	// ErrNoRegion reports that no 8W×8W window lies fully inside the ROI.
	ErrNoRegion = errors.New("no region fully inside the region of interest")

	// ErrShapeMismatch is matched by every ShapeMismatchError.
	ErrShapeMismatch = errors.New("grid shape mismatch")

	// ErrEmptyImage reports a zero-sized input raster.
	ErrEmptyImage = errors.New("empty image")
)

// ShapeMismatchError describes two grids that cannot be used together
// because their block size or pixel dimensions differ.
type ShapeMismatchError struct {
	What      string
	Want, Got Shape
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: want %v, got %v", e.What, e.Want, e.Got)
}

// Is lets errors.Is(err, ErrShapeMismatch) succeed.
func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

// Shape identifies the pixel dimensions and block size a grid was derived from.
type Shape struct {
	Rows, Cols int
	W          int
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d/W%d", s.Rows, s.Cols, s.W)
}

// Blocks returns the block-resolution dimensions of s.
func (s Shape) Blocks() (int, int) {
	return BlockCount(s.Rows, s.W), BlockCount(s.Cols, s.W)
}

// Shaped is implemented by every block-granularity grid.
type Shaped interface {
	Shape() Shape
}

// CheckShape returns a *ShapeMismatchError when any of the grids disagrees
// with the first one.
func CheckShape(what string, grids ...Shaped) error {
	if len(grids) < 2 {
		return nil
	}
	want := grids[0].Shape()
	for _, g := range grids[1:] {
		if got := g.Shape(); got != want {
			return &ShapeMismatchError{What: what, Want: want, Got: got}
		}
	}
	return nil
}

// BlockCount returns how many W-sized blocks are needed to cover n pixels.
// The last block may be partial.
func BlockCount(n, w int) int {
	if w <= 0 {
		return 0
	}
	return (n + w - 1) / w
}
