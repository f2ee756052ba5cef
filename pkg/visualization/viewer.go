package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

// Stage is one labelled pipeline output
type Stage struct {
	Name  string
	Image image.Image
}

// Viewer collects the labelled outputs of one pipeline run so they can be
// inspected, saved one by one or combined into a montage.
type Viewer struct {
	// stages in pipeline order
	stages []Stage
}

// NewViewer creates a viewer over the given stages
func NewViewer(stages ...Stage) *Viewer {
	return &Viewer{stages: stages}
}

// Add appends a stage. Nil images are skipped.
func (v *Viewer) Add(name string, img image.Image) {
	if img == nil {
		return
	}
	v.stages = append(v.stages, Stage{Name: name, Image: img})
}

// Stages returns the stages in insertion order
func (v *Viewer) Stages() []Stage {
	return v.stages
}

// Stage returns the image stored under name
func (v *Viewer) Stage(name string) (image.Image, error) {
	for _, s := range v.stages {
		if s.Name == name {
			return s.Image, nil
		}
	}
	return nil, fmt.Errorf("unknown stage: %s", name)
}

// SaveStage writes an image to filename, as JPEG for .jpg/.jpeg and PNG
// otherwise
func SaveStage(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	default:
		return png.Encode(file, img)
	}
}

// SaveStageSequence writes every stage as NN_name.png into outputDir
func (v *Viewer) SaveStageSequence(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for i, s := range v.stages {
		filename := filepath.Join(outputDir, fmt.Sprintf("%02d_%s.png", i+1, s.Name))
		if err := SaveStage(s.Image, filename); err != nil {
			return fmt.Errorf("failed to save stage %s: %w", s.Name, err)
		}
	}

	return nil
}

// Montage lays the stages out row by row, columns per row, each scaled to
// tile pixels wide with its aspect ratio kept. Cells are as tall as the
// tallest scaled stage; unused space is black.
func (v *Viewer) Montage(columns, tile int) (*image.RGBA, error) {
	if len(v.stages) == 0 {
		return nil, fmt.Errorf("montage: no stages")
	}
	if columns <= 0 || tile <= 0 {
		return nil, fmt.Errorf("montage: invalid layout %d columns of %d px", columns, tile)
	}

	tiles := make([]image.Image, len(v.stages))
	cellHeight := 0
	for i, s := range v.stages {
		tiles[i] = resize.Resize(uint(tile), 0, s.Image, resize.Bilinear)
		cellHeight = max(cellHeight, tiles[i].Bounds().Dy())
	}

	rows := (len(tiles) + columns - 1) / columns
	out := image.NewRGBA(image.Rect(0, 0, columns*tile, rows*cellHeight))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	for i, t := range tiles {
		origin := image.Pt((i%columns)*tile, (i/columns)*cellHeight)
		draw.Draw(out, t.Bounds().Sub(t.Bounds().Min).Add(origin), t, t.Bounds().Min, draw.Src)
	}
	return out, nil
}
