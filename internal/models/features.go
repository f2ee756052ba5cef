package models

import (
	"image"
)

// MinutiaKind classifies a local ridge landmark
type MinutiaKind int

const (
	// Ending is a ridge termination (crossing number 1)
	Ending MinutiaKind = iota + 1

	// Bifurcation is a ridge split (crossing number 3)
	Bifurcation
)

func (k MinutiaKind) String() string {
	switch k {
	case Ending:
		return "ending"
	case Bifurcation:
		return "bifurcation"
	}
	return "none"
}

// Minutia is a classified skeleton pixel
type Minutia struct {
	// Row and Col locate the minutia in pixel coordinates
	Row, Col int

	// Kind is either Ending or Bifurcation
	Kind MinutiaKind
}

// Region is the cleanest 8W×8W window found inside the ROI.
// Rows and columns are half-open: [Row0, Row1) × [Col0, Col1).
type Region struct {
	Row0, Row1 int
	Col0, Col1 int

	// Score is the sum of minutiae weights inside the window (lower is cleaner)
	Score float64
}

// Rect returns the region as an image rectangle (x = column, y = row)
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Col0, r.Row0, r.Col1, r.Row1)
}

// Diagonal names the line of a region along which ridges were counted
type Diagonal int

const (
	// MainDiagonal runs from the top-left to the bottom-right corner
	MainDiagonal Diagonal = iota

	// AntiDiagonal runs from the top-right to the bottom-left corner
	AntiDiagonal
)

func (d Diagonal) String() string {
	if d == AntiDiagonal {
		return "anti_diagonal"
	}
	return "main_diagonal"
}

// RidgeCount is the number of ridges crossed by the winning diagonal
type RidgeCount struct {
	Count    int
	Diagonal Diagonal
}

// SingularityKind classifies a Poincaré-index singular point
type SingularityKind int

const (
	Loop SingularityKind = iota + 1
	Delta
	Whorl
)

func (k SingularityKind) String() string {
	switch k {
	case Loop:
		return "loop"
	case Delta:
		return "delta"
	case Whorl:
		return "whorl"
	}
	return "none"
}

// Singularity is a classified block of the orientation field
type Singularity struct {
	// Row and Col are block coordinates
	Row, Col int

	Kind SingularityKind

	// Index is the Poincaré index in degrees
	Index float64
}
