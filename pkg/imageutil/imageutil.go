// Package imageutil recompresses uploaded, downloaded and generated images.
package imageutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	// PortraitWidth and PortraitHeight frame generated try-on images (9:16)
	PortraitWidth  = 1080
	PortraitHeight = 1920
)

// Stats describes one compression
type Stats struct {
	OriginalBytes   int
	CompressedBytes int
	OriginalWidth   int
	OriginalHeight  int
	Width           int
	Height          int
}

// ReductionPercent is the size saved by compression
func (s Stats) ReductionPercent() float64 {
	if s.OriginalBytes == 0 {
		return 0
	}
	return (1 - float64(s.CompressedBytes)/float64(s.OriginalBytes)) * 100
}

// Dimensions formats the output size as WxH
func (s Stats) Dimensions() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Decode reads any registered format and applies EXIF orientation
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Flatten paints img over a white background so transparency survives JPEG
func Flatten(img image.Image) *image.NRGBA {
	src := imaging.Clone(img)
	bg := imaging.New(src.Bounds().Dx(), src.Bounds().Dy(), color.White)
	return imaging.Overlay(bg, src, image.Pt(0, 0), 1.0)
}

// EncodeJPEG encodes img at the given quality
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Compress decodes data, flattens it, scales it down so neither side
// exceeds maxSize (aspect ratio kept) and re-encodes it as JPEG.
func Compress(data []byte, maxSize, quality int) ([]byte, Stats, error) {
	stats := Stats{OriginalBytes: len(data)}

	img, err := Decode(data)
	if err != nil {
		return nil, stats, err
	}
	stats.OriginalWidth = img.Bounds().Dx()
	stats.OriginalHeight = img.Bounds().Dy()

	flat := Flatten(img)
	fitted := imaging.Fit(flat, maxSize, maxSize, imaging.Lanczos)

	out, err := EncodeJPEG(fitted, quality)
	if err != nil {
		return nil, stats, err
	}
	stats.CompressedBytes = len(out)
	stats.Width = fitted.Bounds().Dx()
	stats.Height = fitted.Bounds().Dy()
	return out, stats, nil
}

// Portrait center-crops img to 9:16 and resizes it to PortraitWidth x PortraitHeight
func Portrait(img image.Image) *image.NRGBA {
	return imaging.Fill(Flatten(img), PortraitWidth, PortraitHeight, imaging.Center, imaging.Lanczos)
}
