// Package visualization renders pipeline stages: colour overlays drawn with
// OpenCV, orientation and minutiae views, stage sequences and montages.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"gocv.io/x/gocv"
)

// Overlay colours, given in RGB
var (
	Red    = color.RGBA{R: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, A: 255}
	Orange = color.RGBA{R: 255, G: 128, A: 255}
	Pink   = color.RGBA{R: 255, G: 153, B: 255, A: 255}
	Blue   = color.RGBA{B: 150, A: 255}
	Green  = color.RGBA{G: 150, A: 255}
	Gray   = color.RGBA{R: 150, G: 150, B: 150, A: 255}
)

// Canvas is a 3-channel OpenCV image built from a grayscale picture.
// Callers must Close it.
type Canvas struct {
	mat gocv.Mat
}

// NewCanvas converts img to a colour canvas.
func NewCanvas(img *image.Gray) (*Canvas, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("canvas: empty image")
	}
	data := make([]byte, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		copy(data[y*b.Dx():(y+1)*b.Dx()], img.Pix[y*img.Stride:y*img.Stride+b.Dx()])
	}

	gray, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC1, data)
	if err != nil {
		return nil, fmt.Errorf("canvas: %w", err)
	}
	defer gray.Close()

	mat := gocv.NewMat()
	gocv.CvtColor(gray, &mat, gocv.ColorGrayToBGR)
	return &Canvas{mat: mat}, nil
}

// Close releases the OpenCV buffer.
func (c *Canvas) Close() error { return c.mat.Close() }

// Line draws a segment between two points (X = column, Y = row).
func (c *Canvas) Line(from, to image.Point, col color.RGBA, thickness int) {
	gocv.Line(&c.mat, from, to, col, thickness)
}

// Rectangle draws the outline of r.
func (c *Canvas) Rectangle(r image.Rectangle, col color.RGBA, thickness int) {
	gocv.Rectangle(&c.mat, r, col, thickness)
}

// Circle draws a circle outline around centre.
func (c *Canvas) Circle(centre image.Point, radius int, col color.RGBA, thickness int) {
	gocv.Circle(&c.mat, centre, radius, col, thickness)
}

// Text writes s in Hershey triplex at scale 0.5 with its baseline starting
// at org.
func (c *Canvas) Text(s string, org image.Point, col color.RGBA) {
	gocv.PutText(&c.mat, s, org, gocv.FontHersheyTriplex, 0.5, col, 1)
}

// Image copies the canvas into an RGBA image.
func (c *Canvas) Image() (*image.RGBA, error) {
	img, err := c.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("canvas: %w", err)
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

// ToColor returns a colour copy of a grayscale image.
func ToColor(img *image.Gray) (*image.RGBA, error) {
	c, err := NewCanvas(img)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.Image()
}
