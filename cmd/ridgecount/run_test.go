package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/image/bmp"

	"ridgecount/pkg/config"
	"ridgecount/pkg/pipeline"
)

func writeImage(t *testing.T, path string, encode func(*os.File, image.Image) error) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 48, 48))
	for i := range img.Pix {
		img.Pix[i] = 140
	}
	img.SetGray(3, 3, color.Gray{Y: 10})
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := encode(f, img); err != nil {
		t.Fatalf("Failed to encode %s: %v", path, err)
	}
}

func encodePNG(f *os.File, img image.Image) error { return png.Encode(f, img) }
func encodeBMP(f *os.File, img image.Image) error { return bmp.Encode(f, img) }

func TestExtractNumber(t *testing.T) {
	tests := map[string]int{
		"101_1.tif":        1011,
		"dir/finger12.png": 12,
		"print.png":        0,
	}
	for name, want := range tests {
		if got := extractNumber(name); got != want {
			t.Errorf("extractNumber(%q) = %d, expected %d", name, got, want)
		}
	}
}

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "f10.png"), encodePNG)
	writeImage(t, filepath.Join(dir, "f2.bmp"), encodeBMP)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := collectInputs(dir)
	if err != nil {
		t.Fatalf("collectInputs failed: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "f2.bmp" || filepath.Base(files[1]) != "f10.png" {
		t.Errorf("Unexpected order: %v", files)
	}

	single, err := collectInputs(files[1])
	if err != nil || len(single) != 1 {
		t.Errorf("Expected the file itself, got %v (%v)", single, err)
	}

	if _, err := collectInputs(t.TempDir()); err == nil {
		t.Error("Expected an error for a directory without images")
	}
}

func TestProcessFileWritesOutputs(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	path := filepath.Join(in, "f1.bmp")
	writeImage(t, path, encodeBMP)

	cfg := config.DefaultConfig()
	cfg.Output.SaveStages = true
	cfg.Output.Montage = true
	cfg.Output.MontageTile = 32
	params, err := pipeline.ParamsFromConfig(cfg)
	if err != nil {
		t.Fatalf("ParamsFromConfig failed: %v", err)
	}

	r := &runner{
		analyzer: pipeline.NewAnalyzer(params, zerolog.Nop()),
		output:   out,
		cfg:      cfg,
		logger:   zerolog.Nop(),
	}
	if err := r.processFile(context.Background(), path); err != nil {
		t.Fatalf("processFile failed: %v", err)
	}

	for _, name := range []string{
		"f1_ridges.png",
		"f1_singularities.png",
		"f1_montage.png",
		filepath.Join("f1_stages", "01_input.png"),
	} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("Expected %s: %v", name, err)
		}
	}
}
