package gabor

import (
	"errors"
	"math"
	"testing"

	"ridgecount/pkg/frequency"
	"ridgecount/pkg/raster"
)

// createTestImage builds a raster from a pattern function
func createTestImage(rows, cols int, pattern func(r, c int) float64) *raster.Gray {
	g := raster.NewGray(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			g.Set(r, c, pattern(r, c))
		}
	}
	return g
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

// estimateField runs frequency estimation with every block in the ROI
func estimateField(t *testing.T, g *raster.Gray, orient *raster.BlockGrid, fill bool) *frequency.Field {
	t.Helper()
	s := orient.Shape()
	mask := raster.NewMask(s.Rows, s.Cols, s.W)
	br, bc := mask.BlockDims()
	for i := 0; i < br; i++ {
		for j := 0; j < bc; j++ {
			mask.SetBlock(i, j, fill)
		}
	}
	field, err := frequency.Estimate(g, orient, mask, frequency.DefaultParams())
	if err != nil {
		t.Fatalf("frequency.Estimate failed: %v", err)
	}
	return field
}

// TestNewBank checks the bank geometry and kernel values
func TestNewBank(t *testing.T) {
	bank, err := NewBank(0.17, 0.65, 0.65, 3)
	if err != nil {
		t.Fatalf("NewBank failed: %v", err)
	}
	if bank.Len() != 60 {
		t.Errorf("Expected 60 orientations, got %d", bank.Len())
	}
	if bank.HalfWidth != 11 {
		t.Errorf("Expected half width 11, got %d", bank.HalfWidth)
	}

	side := 2*bank.HalfWidth + 1
	centre := bank.HalfWidth*side + bank.HalfWidth
	for k := 0; k < bank.Len(); k++ {
		if v := bank.Kernel(k)[centre]; math.Abs(v-1) > 1e-12 {
			t.Fatalf("Kernel %d centre = %f, expected 1", k, v)
		}
	}

	// For horizontal ridges the kernel does not oscillate along a row
	k0 := bank.Kernel(0)
	sigma := 0.65 / 0.17
	for dx := 1; dx <= 3; dx++ {
		want := math.Exp(-float64(dx*dx) / (sigma * sigma))
		if got := k0[centre+dx]; math.Abs(got-want) > 1e-9 {
			t.Errorf("Kernel 0 at dx=%d: expected %f, got %f", dx, want, got)
		}
	}

	if _, err := NewBank(0, 0.65, 0.65, 3); err == nil {
		t.Errorf("Expected an error for zero frequency")
	}
}

// TestBankIndex verifies angle quantization and wrap-around
func TestBankIndex(t *testing.T) {
	bank, err := NewBank(0.1, 0.65, 0.65, 3)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		deg  float64
		want int
	}{
		{0, 0}, {1.4, 0}, {1.6, 1}, {90, 30}, {178.4, 59}, {179, 0},
	}
	for _, tt := range tests {
		if got := bank.Index(tt.deg * math.Pi / 180); got != tt.want {
			t.Errorf("Index(%g°) = %d, expected %d", tt.deg, got, tt.want)
		}
	}
}

// TestRepresentative checks rounding to two decimals
func TestRepresentative(t *testing.T) {
	if got := Representative(nil); got != 0 {
		t.Errorf("Expected 0 for a nil field, got %f", got)
	}
	orient := uniformField(96, 96, 16, math.Pi/2)
	g := createTestImage(96, 96, func(r, c int) float64 { return math.Cos(2 * math.Pi * float64(c) / 6) })
	field := estimateField(t, g, orient, true)
	if got := Representative(field); got != 0.17 {
		t.Errorf("Expected representative 0.17, got %f", got)
	}
}

// TestEnhanceSinusoid verifies ridge and valley classification on vertical ridges
func TestEnhanceSinusoid(t *testing.T) {
	g := createTestImage(96, 96, func(r, c int) float64 { return math.Cos(2 * math.Pi * float64(c) / 6) })
	orient := uniformField(96, 96, 16, math.Pi/2)
	field := estimateField(t, g, orient, true)

	out, err := Enhance(g, orient, field, DefaultParams())
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}

	for _, r := range []int{30, 48, 60} {
		for c := 30; c < 66; c++ {
			v := out.GrayAt(c, r).Y
			switch c % 6 {
			case 0:
				if v != raster.Background {
					t.Errorf("Valley pixel (%d,%d) should be background", r, c)
				}
			case 3:
				if v != raster.Ridge {
					t.Errorf("Ridge pixel (%d,%d) should be ridge", r, c)
				}
			}
		}
	}

	// Pixels within the half width of the border are never filtered
	for c := 0; c < 96; c++ {
		if out.GrayAt(c, 0).Y != raster.Background || out.GrayAt(c, 95).Y != raster.Background {
			t.Fatalf("Border column %d should stay background", c)
		}
	}
}

// TestEnhanceObliqueRidges verifies the filter axes on ridges running at 30°
func TestEnhanceObliqueRidges(t *testing.T) {
	theta := math.Pi / 6
	// distance along the ridge normal (-sin θ, cos θ)
	phase := func(r, c int) float64 {
		d := -math.Sin(theta)*float64(c) + math.Cos(theta)*float64(r)
		return math.Cos(2 * math.Pi * d / 6)
	}
	g := createTestImage(96, 96, phase)
	orient := uniformField(96, 96, 16, theta)

	// A vertical print of the same period provides a field with frequency 1/6
	vertical := createTestImage(96, 96, func(r, c int) float64 { return math.Cos(2 * math.Pi * float64(c) / 6) })
	field := estimateField(t, vertical, uniformField(96, 96, 16, math.Pi/2), true)

	out, err := Enhance(g, orient, field, DefaultParams())
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}

	ridges, valleys := 0, 0
	for r := 30; r < 66; r++ {
		for c := 30; c < 66; c++ {
			v := out.GrayAt(c, r).Y
			switch p := phase(r, c); {
			case p > 0.9:
				valleys++
				if v != raster.Background {
					t.Errorf("Valley pixel (%d,%d) should be background", r, c)
				}
			case p < -0.9:
				ridges++
				if v != raster.Ridge {
					t.Errorf("Ridge pixel (%d,%d) should be ridge", r, c)
				}
			}
		}
	}
	if ridges == 0 || valleys == 0 {
		t.Fatalf("Expected both ridge and valley samples, got %d and %d", ridges, valleys)
	}
}

// TestEnhanceWithoutFrequency verifies the all-background fallback
func TestEnhanceWithoutFrequency(t *testing.T) {
	g := createTestImage(64, 64, func(r, c int) float64 { return math.Cos(float64(c)) })
	orient := uniformField(64, 64, 16, 0)
	field := estimateField(t, g, orient, false)

	out, err := Enhance(g, orient, field, DefaultParams())
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	for i, v := range out.Pix {
		if v != raster.Background {
			t.Fatalf("Pixel %d = %d, expected background", i, v)
		}
	}
}

// TestEnhanceShapeMismatch verifies grid compatibility checks
func TestEnhanceShapeMismatch(t *testing.T) {
	g := raster.NewGray(64, 64)
	field := estimateField(t, g, uniformField(64, 64, 16, 0), false)
	_, err := Enhance(g, uniformField(64, 64, 8, 0), field, DefaultParams())
	if !errors.Is(err, raster.ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v", err)
	}
}
