package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	// Registered decoders for the supported input formats
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"ridgecount/pkg/config"
	"ridgecount/pkg/pipeline"
	"ridgecount/pkg/visualization"
)

// imageExtensions lists the file extensions picked up from an input directory
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true,
}

// runner analyses input files and writes their results
type runner struct {
	analyzer *pipeline.Analyzer
	output   string
	cfg      *config.Config
	logger   zerolog.Logger
}

// processFile runs the pipeline on one image and writes
// <name>_ridges.png, <name>_singularities.png and the optional stage
// directory and montage.
func (r *runner) processFile(ctx context.Context, path string) error {
	img, err := loadImage(path)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	res, err := r.analyzer.Process(ctx, img)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := visualization.SaveStage(res.RidgeImage, filepath.Join(r.output, name+"_ridges.png")); err != nil {
		return fmt.Errorf("failed to save ridge count image: %w", err)
	}
	if err := visualization.SaveStage(res.SingularityImage, filepath.Join(r.output, name+"_singularities.png")); err != nil {
		return fmt.Errorf("failed to save singularity image: %w", err)
	}

	if r.cfg.Output.SaveStages {
		if err := res.SaveStages(filepath.Join(r.output, name+"_stages")); err != nil {
			return fmt.Errorf("failed to save stages: %w", err)
		}
	}
	if r.cfg.Output.Montage {
		m, err := res.Montage(r.cfg.Output.MontageTile)
		if err != nil {
			return fmt.Errorf("failed to build montage: %w", err)
		}
		if err := visualization.SaveStage(m, filepath.Join(r.output, name+"_montage.png")); err != nil {
			return fmt.Errorf("failed to save montage: %w", err)
		}
	}

	event := r.logger.Info().
		Str("file", filepath.Base(path)).
		Float64("frequency", res.Frequency.Value).
		Int("minutiae", len(res.Minutiae)).
		Int("singularities", len(res.Singularities)).
		Dur("elapsed", res.Elapsed)
	if res.Region != nil {
		event = event.
			Int("ridges", res.RidgeCount.Count).
			Str("diagonal", res.RidgeCount.Diagonal.String())
	}
	event.Msg("analysed")
	return nil
}

// collectInputs returns path itself for a file, or the images inside a
// directory sorted by the number embedded in their names.
func collectInputs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, e.Name())
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no images found in %s", path)
	}

	// Sort files by number, then by name
	sort.SliceStable(files, func(i, j int) bool {
		numI, numJ := extractNumber(files[i]), extractNumber(files[j])
		if numI != numJ {
			return numI < numJ
		}
		return files[i] < files[j]
	})
	for i, f := range files {
		files[i] = filepath.Join(path, f)
	}
	return files, nil
}

// extractNumber extracts the numeric part from a filename
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	var digits strings.Builder
	for _, c := range base {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}

	if digits.Len() > 0 {
		if num, err := strconv.Atoi(digits.String()); err == nil {
			return num
		}
	}
	return 0
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}

	return img, nil
}
