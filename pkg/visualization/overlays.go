package visualization

import (
	"image"
	"math"

	"ridgecount/internal/models"
	"ridgecount/pkg/raster"
)

// Orientation draws one segment per block that lies entirely inside the
// ROI, centred on the block and aligned with its ridge direction, on a
// black background.
func Orientation(orient *raster.BlockGrid, mask *raster.Mask) (*image.RGBA, error) {
	if err := raster.CheckShape("orientation view", orient, mask); err != nil {
		return nil, err
	}
	s := orient.Shape()
	c, err := NewCanvas(image.NewGray(image.Rect(0, 0, s.Cols, s.Rows)))
	if err != nil {
		return nil, err
	}
	defer c.Close()

	half := float64(s.W) / 2
	br, bc := orient.Dims()
	for i := 0; i < br; i++ {
		for j := 0; j < bc; j++ {
			r0, r1, c0, c1 := orient.BlockBounds(i, j)
			if !mask.Covers(image.Rect(c0, r0, c1, r1)) || r1-r0 != s.W || c1-c0 != s.W {
				continue
			}
			theta := orient.At(i, j)
			cx, cy := float64(c0)+half, float64(r0)+half
			dx, dy := half*math.Cos(theta), half*math.Sin(theta)
			c.Line(
				image.Pt(int(math.Round(cx-dx)), int(math.Round(cy-dy))),
				image.Pt(int(math.Round(cx+dx)), int(math.Round(cy+dy))),
				Gray, 1)
		}
	}
	return c.Image()
}

// Minutiae circles every minutia on a colour copy of the skeleton: endings
// in blue, bifurcations in green.
func Minutiae(skel *image.Gray, minutiae []models.Minutia) (*image.RGBA, error) {
	c, err := NewCanvas(skel)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	for _, m := range minutiae {
		col := Blue
		if m.Kind == models.Bifurcation {
			col = Green
		}
		c.Circle(image.Pt(m.Col, m.Row), 2, col, 2)
	}
	return c.Image()
}
