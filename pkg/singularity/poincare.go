// Package singularity locates loops, deltas and whorls in a block
// orientation field with the Poincaré index.
package singularity

import (
	"image"
	"image/color"
	"math"

	"ridgecount/internal/models"
	"ridgecount/pkg/raster"
	"ridgecount/pkg/visualization"
)

// DefaultTolerance is the accepted deviation of the index in degrees.
const DefaultTolerance = 1.0

// ring lists the eight neighbouring blocks (row, column) in cyclic order
// starting at the top-left corner.
var ring = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1}, {0, 1},
	{1, 1}, {1, 0}, {1, -1}, {0, -1},
}

// PoincareIndex walks the eight neighbours of block (i, j) and sums the
// orientation changes in degrees, each reduced into [-90, 90]. The block
// must not lie on the grid border.
func PoincareIndex(orient *raster.BlockGrid, i, j int) float64 {
	var deg [9]float64
	for k, off := range ring {
		deg[k] = math.Mod(orient.At(i+off[0], j+off[1])*180/math.Pi, 180)
	}
	deg[8] = deg[0]

	var index float64
	for k := 0; k < 8; k++ {
		d := math.Mod(deg[k+1]-deg[k], 180)
		if d > 90 {
			d -= 180
		} else if d < -90 {
			d += 180
		}
		index += d
	}
	return index
}

// Classify maps an index to a singularity kind: about +180° is a loop,
// about -180° a delta and about +360° a whorl.
func Classify(index, tolerance float64) (models.SingularityKind, bool) {
	switch {
	case math.Abs(index-180) <= tolerance:
		return models.Loop, true
	case math.Abs(index+180) <= tolerance:
		return models.Delta, true
	case math.Abs(index-360) <= tolerance:
		return models.Whorl, true
	}
	return 0, false
}

// Detect classifies blocks i in [3, rows-2) and j in [3, cols-2) and keeps
// those whose 5×5 block neighbourhood lies inside the image and the ROI.
func Detect(orient *raster.BlockGrid, mask *raster.Mask, tolerance float64) ([]models.Singularity, error) {
	if err := raster.CheckShape("singularity detection", orient, mask); err != nil {
		return nil, err
	}

	w := orient.W()
	br, bc := orient.Dims()
	var found []models.Singularity
	for i := 3; i < br-2; i++ {
		for j := 3; j < bc-2; j++ {
			index := PoincareIndex(orient, i, j)
			kind, ok := Classify(index, tolerance)
			if !ok {
				continue
			}
			neighbourhood := image.Rect((j-2)*w, (i-2)*w, (j+3)*w, (i+3)*w)
			if !mask.Covers(neighbourhood) {
				continue
			}
			found = append(found, models.Singularity{Row: i, Col: j, Kind: kind, Index: index})
		}
	}
	return found, nil
}

// kindColor returns the marker colour of a singularity kind.
func kindColor(k models.SingularityKind) color.RGBA {
	switch k {
	case models.Loop:
		return visualization.Red
	case models.Delta:
		return visualization.Orange
	}
	return visualization.Pink
}

// Render outlines every singular block with a 3-pixel rectangle on a colour
// copy of the skeleton: loops red, deltas orange, whorls pink.
func Render(skel *image.Gray, found []models.Singularity, w int) (*image.RGBA, error) {
	canvas, err := visualization.NewCanvas(skel)
	if err != nil {
		return nil, err
	}
	defer canvas.Close()

	for _, s := range found {
		rect := image.Rect(s.Col*w, s.Row*w, (s.Col+1)*w, (s.Row+1)*w)
		canvas.Rectangle(rect, kindColor(s.Kind), 3)
	}
	return canvas.Image()
}
