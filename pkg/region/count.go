package region

import (
	"fmt"
	"image"
	"strconv"

	"gocv.io/x/gocv"

	"ridgecount/internal/models"
	"ridgecount/pkg/visualization"
)

// ridgeThreshold separates ridge from background after dilation.
const ridgeThreshold = 127

// CountRidges thickens the skeleton crop with a 3×3 erosion of the white
// background, then counts the ridges met walking each diagonal. A ridge is
// counted when the walk enters it from background; the walk starts on
// background, so a ridge at the first sample counts. The diagonal with more
// ridges wins, the anti-diagonal on ties.
func CountRidges(crop *image.Gray) (models.RidgeCount, error) {
	b := crop.Bounds()
	rows, cols := b.Dy(), b.Dx()
	if rows == 0 || cols == 0 {
		return models.RidgeCount{Diagonal: models.AntiDiagonal}, nil
	}

	data := make([]byte, rows*cols)
	for y := 0; y < rows; y++ {
		copy(data[y*cols:(y+1)*cols], crop.Pix[y*crop.Stride:y*crop.Stride+cols])
	}
	src, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC1, data)
	if err != nil {
		return models.RidgeCount{}, fmt.Errorf("ridge count: %w", err)
	}
	defer src.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()
	eroded := gocv.NewMat()
	defer eroded.Close()
	gocv.Erode(src, &eroded, kernel)

	pixels := eroded.ToBytes()
	n := min(rows, cols)
	isRidge := func(r, c int) bool { return pixels[r*cols+c] <= ridgeThreshold }

	mainCount := countAlong(n, func(i int) bool { return isRidge(i, i) })
	antiCount := countAlong(n, func(i int) bool { return isRidge(i, n-1-i) })
	if mainCount > antiCount {
		return models.RidgeCount{Count: mainCount, Diagonal: models.MainDiagonal}, nil
	}
	return models.RidgeCount{Count: antiCount, Diagonal: models.AntiDiagonal}, nil
}

// countAlong counts background→ridge transitions over n samples.
func countAlong(n int, ridge func(i int) bool) int {
	count := 0
	onBackground := true
	for i := 0; i < n; i++ {
		if ridge(i) {
			if onBackground {
				count++
			}
			onBackground = false
		} else {
			onBackground = true
		}
	}
	return count
}

// Render draws the region on a colour copy of the input: the winning
// diagonal in red, the count and the word "ridges" in yellow and the window
// outline in red. The count is measured on the skeleton inside the region.
// A nil region yields a plain colour copy and a zero count.
func Render(input, skel *image.Gray, reg *models.Region, w int) (*image.RGBA, models.RidgeCount, error) {
	canvas, err := visualization.NewCanvas(input)
	if err != nil {
		return nil, models.RidgeCount{}, err
	}
	defer canvas.Close()

	if reg == nil {
		img, err := canvas.Image()
		return img, models.RidgeCount{}, err
	}

	count, err := CountRidges(Crop(skel, *reg))
	if err != nil {
		return nil, models.RidgeCount{}, err
	}

	textCol := (reg.Col1-reg.Col0)/2 + reg.Col0
	var textRow int
	switch count.Diagonal {
	case models.MainDiagonal:
		textRow = (reg.Row1-reg.Row0)/3 + reg.Row0
		canvas.Line(image.Pt(reg.Col0, reg.Row0), image.Pt(reg.Col1, reg.Row1), visualization.Red, 1)
	default:
		textRow = 2*(reg.Row1-reg.Row0)/3 + reg.Row0
		canvas.Line(image.Pt(reg.Col1, reg.Row0), image.Pt(reg.Col0, reg.Row1), visualization.Red, 1)
	}
	canvas.Text(" "+strconv.Itoa(count.Count), image.Pt(textCol, textRow-w), visualization.Yellow)
	canvas.Text("ridges", image.Pt(textCol, textRow), visualization.Yellow)
	canvas.Rectangle(reg.Rect(), visualization.Red, 1)

	img, err := canvas.Image()
	return img, count, err
}
