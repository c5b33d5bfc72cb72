package main

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/headless"
)

func softwareConfig(t *testing.T, variant headless.Variant) headless.Config {
	t.Helper()
	cfg := headless.DefaultConfig()
	cfg.Variant = variant
	cfg.Adapter = headless.AdapterSoftware.String()
	cfg.Frame.Width, cfg.Frame.Height = 64, 48
	cfg.Output = filepath.Join(t.TempDir(), "frame.png")
	return cfg
}

func runOrSkip(t *testing.T, cfg headless.Config) {
	t.Helper()
	err := run(cfg, false)
	if errors.Is(err, headless.ErrNoConnection) || errors.Is(err, headless.ErrNoAdapter) {
		t.Skipf("CPU backend not available: %v", err)
	}
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunClear(t *testing.T) {
	cfg := softwareConfig(t, headless.VariantClear)
	runOrSkip(t, cfg)

	f, err := os.Open(cfg.Output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 64, 48) {
		t.Errorf("bounds = %v", img.Bounds())
	}
	nrgba := img.(*image.NRGBA)
	if got := nrgba.NRGBAAt(10, 10); got.R != 76 || got.G != 102 || got.B != 127 || got.A != 255 {
		t.Errorf("pixel = %v, want {76 102 127 255}", got)
	}
}

func TestRunQuad(t *testing.T) {
	cfg := softwareConfig(t, headless.VariantQuad)
	cfg.Quad.BindProgram = true
	cfg.Quad.CheckShaders = true
	cfg.Output = filepath.Join(filepath.Dir(cfg.Output), "frame.webp")
	runOrSkip(t, cfg)

	if fi, err := os.Stat(cfg.Output); err != nil || fi.Size() == 0 {
		t.Fatalf("output missing: %v", err)
	}
}

func TestRunSetupFailureWritesNothing(t *testing.T) {
	cfg := softwareConfig(t, headless.VariantClear)
	cfg.Context.Major, cfg.Context.Minor = 4, 6

	err := run(cfg, false)
	if errors.Is(err, headless.ErrNoConnection) || errors.Is(err, headless.ErrNoAdapter) {
		t.Skipf("CPU backend not available: %v", err)
	}
	if !errors.Is(err, headless.ErrUnsupportedVersion) {
		t.Fatalf("run err = %v, want ErrUnsupportedVersion", err)
	}
	if _, err := os.Stat(cfg.Output); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Stat(%s) = %v, want not exist", cfg.Output, err)
	}
}

func TestFlagWarnings(t *testing.T) {
	tests := []struct {
		name      string
		variant   headless.Variant
		glsl      bool
		bind      bool
		wantCount int
	}{
		{"clear", headless.VariantClear, false, false, 0},
		{"clear with glsl", headless.VariantClear, true, false, 1},
		{"clear with quad options", headless.VariantClear, true, true, 2},
		{"quad with glsl", headless.VariantQuad, true, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := headless.DefaultConfig()
			cfg.Variant = tt.variant
			cfg.Quad.BindProgram = tt.bind
			if got := flagWarnings(cfg, tt.glsl); len(got) != tt.wantCount {
				t.Errorf("flagWarnings = %q, want %d warnings", got, tt.wantCount)
			}
		})
	}
}
