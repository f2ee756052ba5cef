package frequency

import (
	"errors"
	"math"
	"testing"

	"ridgecount/pkg/raster"
)

// createSinusoid builds sqrt(2)·cos(2πx/period) along the given axis
func createSinusoid(rows, cols int, period float64, vertical bool) *raster.Gray {
	g := raster.NewGray(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := float64(c)
			if !vertical {
				x = float64(r)
			}
			g.Set(r, c, math.Sqrt2*math.Cos(2*math.Pi*x/period))
		}
	}
	return g
}

// fullMask returns a mask with every block in the ROI
func fullMask(rows, cols, w int) *raster.Mask {
	m := raster.NewMask(rows, cols, w)
	br, bc := m.BlockDims()
	for i := 0; i < br; i++ {
		for j := 0; j < bc; j++ {
			m.SetBlock(i, j, true)
		}
	}
	return m
}

// uniformField returns an orientation field with the same angle everywhere
func uniformField(rows, cols, w int, theta float64) *raster.BlockGrid {
	f := raster.NewBlockGrid(rows, cols, w)
	br, bc := f.Dims()
	for i := 0; i < br; i++ {
		for j := 0; j < bc; j++ {
			f.Set(i, j, theta)
		}
	}
	return f
}

// TestEstimateSinusoid recovers the period of synthetic vertical ridges
func TestEstimateSinusoid(t *testing.T) {
	tests := []struct {
		name   string
		period float64
		w      int
		size   int
	}{
		{"period 6 block 16", 6, 16, 96},
		{"period 10 block 32", 10, 32, 160},
	}

	for _, tt := range tests {
		g := createSinusoid(tt.size, tt.size, tt.period, true)
		orient := uniformField(tt.size, tt.size, tt.w, math.Pi/2)
		field, err := Estimate(g, orient, fullMask(tt.size, tt.size, tt.w), DefaultParams())
		if err != nil {
			t.Fatalf("%s: Estimate failed: %v", tt.name, err)
		}
		if math.Abs(field.Value-1/tt.period) > 1e-9 {
			t.Errorf("%s: expected frequency %f, got %f", tt.name, 1/tt.period, field.Value)
		}
		if got := field.At(tt.size/2, tt.size/2); got != field.Value {
			t.Errorf("%s: At inside the ROI = %f, expected %f", tt.name, got, field.Value)
		}
	}

	// Every block of the period 6 print sees the exact period
	g := createSinusoid(96, 96, 6, true)
	for _, c0 := range []int{0, 16, 32, 48, 64, 80} {
		block := raster.NewGray(16, 16)
		for r := 0; r < 16; r++ {
			copy(block.Row(r), g.Row(r)[c0:c0+16])
		}
		if f := Block(block, math.Pi/2, DefaultParams()); math.Abs(f-1.0/6) > 1e-9 {
			t.Errorf("Block at column %d: expected 1/6, got %f", c0, f)
		}
	}
}

// TestBlockObliqueRidges recovers the period of ridges that are neither
// horizontal nor vertical, so a rotation in the wrong direction would
// smear the projection
func TestBlockObliqueRidges(t *testing.T) {
	const w, period = 32, 8.0
	for _, deg := range []float64{30, 45, 120} {
		theta := deg * math.Pi / 180
		nx, ny := -math.Sin(theta), math.Cos(theta)
		centre := float64(w-1) / 2

		// A crest passes half a pixel from the centre along the normal
		ox, oy := centre+0.5*nx, centre+0.5*ny
		block := raster.NewGray(w, w)
		for r := 0; r < w; r++ {
			for c := 0; c < w; c++ {
				d := (float64(c)-ox)*nx + (float64(r)-oy)*ny
				block.Set(r, c, math.Sqrt2*math.Cos(2*math.Pi*d/period))
			}
		}

		if f := Block(block, theta, DefaultParams()); math.Abs(f-1/period) > 1e-6 {
			t.Errorf("%g°: expected frequency %f, got %f", deg, 1/period, f)
		}
		if f := Block(block, math.Pi-theta, DefaultParams()); math.Abs(f-1/period) < 1e-3 {
			t.Errorf("%g°: mirrored orientation should not recover the period, got %f", deg, f)
		}
	}
}

// TestEstimateHorizontalRidges verifies that θ = 0 blocks are estimated too
func TestEstimateHorizontalRidges(t *testing.T) {
	g := createSinusoid(96, 96, 6, false)
	orient := uniformField(96, 96, 16, 0)
	field, err := Estimate(g, orient, fullMask(96, 96, 16), DefaultParams())
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if math.Abs(field.Value-1.0/6) > 1e-6 {
		t.Errorf("Expected frequency 1/6 for horizontal ridges, got %f", field.Value)
	}
}

// TestEstimateRespectsMask checks that background blocks are not evaluated
func TestEstimateRespectsMask(t *testing.T) {
	g := createSinusoid(64, 64, 8, true)
	orient := uniformField(64, 64, 16, math.Pi/2)
	mask := raster.NewMask(64, 64, 16)
	mask.SetBlock(1, 1, true)

	field, err := Estimate(g, orient, mask, DefaultParams())
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if field.Blocks.At(0, 0) != 0 || field.Blocks.At(1, 1) == 0 {
		t.Errorf("Expected only block (1,1) to carry an estimate")
	}
	if field.At(0, 0) != 0 {
		t.Errorf("Expected zero frequency outside the ROI")
	}

	empty, err := Estimate(g, orient, raster.NewMask(64, 64, 16), DefaultParams())
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if empty.Value != 0 {
		t.Errorf("Expected zero frequency for an empty ROI, got %f", empty.Value)
	}
}

// TestBlockRejects covers flat blocks and out-of-range wavelengths
func TestBlockRejects(t *testing.T) {
	flat := raster.NewGray(16, 16)
	if f := Block(flat, math.Pi/2, DefaultParams()); f != 0 {
		t.Errorf("Expected 0 for a flat block, got %f", f)
	}

	wide := createSinusoid(16, 16, 20, true)
	if f := Block(wide, math.Pi/2, DefaultParams()); f != 0 {
		t.Errorf("Expected 0 when fewer than two peaks fit, got %f", f)
	}

	narrow := createSinusoid(32, 32, 3, true)
	p := DefaultParams()
	p.PeakWindow = 3
	if f := Block(narrow, math.Pi/2, p); f != 0 {
		t.Errorf("Expected 0 for a wavelength below the minimum, got %f", f)
	}
}

// TestEstimateShapeMismatch verifies grid compatibility checks
func TestEstimateShapeMismatch(t *testing.T) {
	g := createSinusoid(64, 64, 8, true)
	_, err := Estimate(g, uniformField(64, 64, 16, 0), fullMask(64, 64, 8), DefaultParams())
	if !errors.Is(err, raster.ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch for differing block sizes, got %v", err)
	}

	_, err = Estimate(raster.NewGray(48, 64), uniformField(64, 64, 16, 0), fullMask(64, 64, 16), DefaultParams())
	if !errors.Is(err, raster.ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch for a differently sized image, got %v", err)
	}
}

// TestFindPeaks checks mirrored windows and the mean condition
func TestFindPeaks(t *testing.T) {
	proj := []float64{5, 1, 0, 1, 9, 1, 0, 1, 5}
	peaks := findPeaks(proj, 5, 2)
	want := []int{0, 4, 8}
	if len(peaks) != len(want) {
		t.Fatalf("Expected peaks %v, got %v", want, peaks)
	}
	for i := range want {
		if peaks[i] != want[i] {
			t.Errorf("Expected peaks %v, got %v", want, peaks)
		}
	}

	if got := median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Errorf("Expected median 2.5, got %f", got)
	}
}
