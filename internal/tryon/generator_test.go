package tryon

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/internal/storage"
)

type fakeModel struct {
	calls        []string
	out          int
	failFor      domain.Angle
	garbageFirst bool
}

func (m *fakeModel) Generate(_ context.Context, person, garment Image, prompt string) ([]Image, error) {
	m.calls = append(m.calls, prompt)
	if m.failFor != "" && strings.Contains(prompt, angleDescriptions[m.failFor]+" of the person") {
		return nil, errors.New("quota exceeded")
	}
	var imgs []Image
	if m.garbageFirst {
		imgs = append(imgs, Image{Data: []byte("garbage"), MIMEType: "image/png"})
	}
	for i := 0; i < m.out; i++ {
		imgs = append(imgs, Image{Data: encodePNG(640, 640), MIMEType: "image/png"})
	}
	return imgs, nil
}

func encodePNG(w, h int) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h)))
	return buf.Bytes()
}

func put(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func setupDeck(t *testing.T) *storage.Layout {
	t.Helper()
	l := storage.NewLayout(t.TempDir())
	put(t, l.PhotoPath("u", domain.AngleFront), encodePNG(100, 200))
	put(t, filepath.Join(l.UserDir("u"), "side.png"), encodePNG(100, 200))
	put(t, l.ProductImagePath("u", 1), encodePNG(50, 50))

	entries := []storage.ManifestEntry{
		{ID: 1, Title: "Shirt", LocalImage: l.Rel(l.ProductImagePath("u", 1))},
		{ID: 2, Title: "No image"},
	}
	if err := l.WriteManifest("u", entries); err != nil {
		t.Fatal(err)
	}
	return l
}

func TestGenerateAll(t *testing.T) {
	l := setupDeck(t)
	model := &fakeModel{out: 2, failFor: domain.AngleSide}
	g := NewGenerator(model, l)

	got, err := g.GenerateAll(context.Background(), "u")
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}

	// front and side photos exist, back does not; side fails
	if len(model.calls) != 2 {
		t.Errorf("model calls = %d, want 2", len(model.calls))
	}
	if len(got[1]) != 2 {
		t.Fatalf("product 1 outputs = %v, want 2 front images", got[1])
	}
	if _, ok := got[2]; ok {
		t.Error("product without local image should be skipped")
	}

	for _, n := range []int{0, 1} {
		data, err := os.ReadFile(l.CombinedPath("u", 1, domain.AngleFront, n))
		if err != nil {
			t.Fatalf("output %d: %v", n, err)
		}
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("output %d not jpeg: %v", n, err)
		}
		if cfg.Width != 1080 || cfg.Height != 1920 {
			t.Errorf("output %d = %dx%d, want 1080x1920", n, cfg.Width, cfg.Height)
		}
	}
	if _, ok := l.FindCombined("u", 1, domain.AngleSide); ok {
		t.Error("failed angle should not produce a file")
	}
}

func TestGenerateAllSkipsUndecodableOutput(t *testing.T) {
	l := setupDeck(t)
	g := NewGenerator(&fakeModel{out: 1, garbageFirst: true}, l)

	got, err := g.GenerateAll(context.Background(), "u")
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}
	if len(got[1]) != 2 {
		t.Fatalf("product 1 outputs = %v, want one per photographed angle", got[1])
	}
	for _, angle := range []domain.Angle{domain.AngleFront, domain.AngleSide} {
		if _, ok := l.FindCombined("u", 1, angle); !ok {
			t.Errorf("%s: primary combined image missing", angle)
		}
		if _, err := os.Stat(l.CombinedPath("u", 1, angle, 1)); !os.IsNotExist(err) {
			t.Errorf("%s: unexpected numbered output, stat err = %v", angle, err)
		}
	}
}

func TestGenerateAllEmptyResponse(t *testing.T) {
	l := setupDeck(t)
	g := NewGenerator(&fakeModel{out: 0}, l)

	got, err := g.GenerateAll(context.Background(), "u")
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want nothing", got)
	}
}

func TestGeneratorDisabled(t *testing.T) {
	g := NewGenerator(nil, storage.NewLayout(t.TempDir()))
	if g.Enabled() {
		t.Fatal("nil model should disable the generator")
	}
	got, err := g.GenerateAll(context.Background(), "u")
	if err != nil || len(got) != 0 {
		t.Errorf("GenerateAll() = %v, %v", got, err)
	}
}

func TestPrompt(t *testing.T) {
	p := Prompt(domain.AngleSide)
	if !strings.Contains(p, "(side profile view of the person, and the clothing item)") {
		t.Errorf("prompt = %q", p)
	}
	if !strings.Contains(p, "9:16 aspect ratio") {
		t.Errorf("prompt missing aspect ratio: %q", p)
	}
}
