package skeleton

import (
	"fmt"
	"image"

	"ridgecount/internal/models"
	"ridgecount/pkg/raster"
)

// Minutia weights used to score candidate regions. Endings are counted as
// the more disruptive feature.
const (
	EndingWeight      = 2.0
	BifurcationWeight = 1.0
)

// Supported crossing-number ring sizes
const (
	RingSize3 = 3
	RingSize5 = 5
)

// ring lists the 8-neighbourhood offsets (row, column) in cyclic order
// starting at the top-left corner.
var ring = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1}, {0, 1},
	{1, 1}, {1, 0}, {1, -1}, {0, -1},
}

// ring5 is the perimeter of the 5×5 window in the same cyclic order.
var ring5 = [16][2]int{
	{-2, -2}, {-2, -1}, {-2, 0}, {-2, 1}, {-2, 2},
	{-1, 2}, {0, 2}, {1, 2}, {2, 2},
	{2, 1}, {2, 0}, {2, -1}, {2, -2},
	{1, -2}, {0, -2}, {-1, -2},
}

// CrossingNumber returns half the number of 0/1 changes around the cyclic
// neighbourhood n, where 1 marks a ridge pixel.
func CrossingNumber(n [8]uint8) int {
	return crossings(n[:])
}

func crossings(values []uint8) int {
	sum := 0
	for i := range values {
		d := int(values[i]) - int(values[(i+1)%len(values)])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum / 2
}

// Detector classifies skeleton pixels by the crossing number of a square
// ring around them: the 8-neighbourhood for RingSize3, the perimeter of the
// 5×5 window for RingSize5. The wider ring also flags the pixels next to a
// minutia.
type Detector struct {
	ringSize int
	offsets  [][2]int
}

// NewDetector returns a detector for ring size 3 or 5
func NewDetector(ringSize int) (*Detector, error) {
	switch ringSize {
	case RingSize3:
		return &Detector{ringSize: ringSize, offsets: ring[:]}, nil
	case RingSize5:
		return &Detector{ringSize: ringSize, offsets: ring5[:]}, nil
	}
	return nil, fmt.Errorf("unsupported crossing ring size %d", ringSize)
}

var defaultDetector = &Detector{ringSize: RingSize3, offsets: ring[:]}

// RingSize returns the side of the ring window
func (d *Detector) RingSize() int { return d.ringSize }

// Classify returns the minutia kind at pixel (r, c): a ridge pixel with
// crossing number 1 is an ending, 3 a bifurcation. The ring must lie inside
// the image.
func (d *Detector) Classify(skel *image.Gray, r, c int) (models.MinutiaKind, bool) {
	if !isRidge(skel.Pix[r*skel.Stride+c]) {
		return 0, false
	}
	values := make([]uint8, len(d.offsets))
	for k, off := range d.offsets {
		if isRidge(skel.Pix[(r+off[0])*skel.Stride+c+off[1]]) {
			values[k] = 1
		}
	}
	switch crossings(values) {
	case 1:
		return models.Ending, true
	case 3:
		return models.Bifurcation, true
	}
	return 0, false
}

// Detect lists the minutiae of a skeleton in raster order. Pixels closer
// to the border than half the ring size are never reported.
func (d *Detector) Detect(skel *image.Gray) []models.Minutia {
	b := skel.Bounds()
	margin := d.ringSize / 2
	var found []models.Minutia
	for r := margin; r < b.Dy()-margin; r++ {
		for c := margin; c < b.Dx()-margin; c++ {
			if kind, ok := d.Classify(skel, r, c); ok {
				found = append(found, models.Minutia{Row: r, Col: c, Kind: kind})
			}
		}
	}
	return found
}

// Weights returns a raster holding EndingWeight or BifurcationWeight at
// every minutia of the skeleton and 0 elsewhere.
func (d *Detector) Weights(skel *image.Gray) *raster.Gray {
	b := skel.Bounds()
	w := raster.NewGray(b.Dy(), b.Dx())
	for _, m := range d.Detect(skel) {
		switch m.Kind {
		case models.Ending:
			w.Set(m.Row, m.Col, EndingWeight)
		case models.Bifurcation:
			w.Set(m.Row, m.Col, BifurcationWeight)
		}
	}
	return w
}

// Classify classifies interior pixel (r, c) with the 8-neighbourhood ring
func Classify(skel *image.Gray, r, c int) (models.MinutiaKind, bool) {
	return defaultDetector.Classify(skel, r, c)
}

// Detect lists the minutiae found with the 8-neighbourhood ring
func Detect(skel *image.Gray) []models.Minutia {
	return defaultDetector.Detect(skel)
}

// Weights returns the weight map of the minutiae found with the
// 8-neighbourhood ring
func Weights(skel *image.Gray) *raster.Gray {
	return defaultDetector.Weights(skel)
}
