package imageutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestCompress(t *testing.T) {
	tests := []struct {
		name          string
		w, h          int
		maxSize       int
		wantW, wantH  int
	}{
		{name: "landscape above cap", w: 2000, h: 1000, maxSize: 512, wantW: 512, wantH: 256},
		{name: "portrait above cap", w: 600, h: 1200, maxSize: 1024, wantW: 512, wantH: 1024},
		{name: "below cap untouched", w: 300, h: 200, maxSize: 512, wantW: 300, wantH: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := pngBytes(t, tt.w, tt.h, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
			out, stats, err := Compress(data, tt.maxSize, 85)
			if err != nil {
				t.Fatalf("Compress() error = %v", err)
			}
			if stats.Width != tt.wantW || stats.Height != tt.wantH {
				t.Errorf("dimensions = %s, want %dx%d", stats.Dimensions(), tt.wantW, tt.wantH)
			}
			if stats.OriginalWidth != tt.w || stats.OriginalHeight != tt.h {
				t.Errorf("original = %dx%d, want %dx%d", stats.OriginalWidth, stats.OriginalHeight, tt.w, tt.h)
			}
			cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("decode output: %v", err)
			}
			if format != "jpeg" {
				t.Errorf("format = %q, want jpeg", format)
			}
			if cfg.Width != tt.wantW || cfg.Height != tt.wantH {
				t.Errorf("encoded = %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.wantW, tt.wantH)
			}
			if stats.CompressedBytes != len(out) {
				t.Errorf("CompressedBytes = %d, want %d", stats.CompressedBytes, len(out))
			}
		})
	}
}

func TestCompressRejectsGarbage(t *testing.T) {
	if _, _, err := Compress([]byte("not an image"), 512, 85); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFlattenPaintsTransparencyWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	flat := Flatten(img)
	r, g, b, a := flat.At(1, 1).RGBA()
	if r != 0xffff || g != 0xffff || b != 0xffff || a != 0xffff {
		t.Errorf("pixel = %v %v %v %v, want opaque white", r, g, b, a)
	}
}

func TestPortrait(t *testing.T) {
	for _, size := range []image.Point{{1024, 1024}, {500, 2000}, {3000, 1000}} {
		img := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
		out := Portrait(img)
		if out.Bounds().Dx() != PortraitWidth || out.Bounds().Dy() != PortraitHeight {
			t.Errorf("Portrait(%v) = %v, want %dx%d", size, out.Bounds().Size(), PortraitWidth, PortraitHeight)
		}
	}
}

func TestReductionPercent(t *testing.T) {
	s := Stats{OriginalBytes: 200, CompressedBytes: 50}
	if got := s.ReductionPercent(); got != 75 {
		t.Errorf("ReductionPercent() = %v, want 75", got)
	}
	if got := (Stats{}).ReductionPercent(); got != 0 {
		t.Errorf("empty ReductionPercent() = %v, want 0", got)
	}
}
