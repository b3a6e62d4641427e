package tryon

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/internal/storage"
	"github.com/tair/styleswipe/pkg/imageutil"
	"github.com/tair/styleswipe/pkg/logger"
)

const outputQuality = 95

var angleDescriptions = map[domain.Angle]string{
	domain.AngleFront: "front view",
	domain.AngleSide:  "side profile view",
	domain.AngleBack:  "back view",
}

// Prompt is the instruction sent with the photo of one angle
func Prompt(angle domain.Angle) string {
	desc := angleDescriptions[angle]
	return fmt.Sprintf("Take these 2 images (%s of the person, and the clothing item) and generate a realistic image "+
		"of the person wearing this clothing item from the %s. Make sure the clothing fits naturally on the person "+
		"and looks realistic. Make it in a 9:16 aspect ratio and centred towards the person.", desc, desc)
}

// Generator writes combined_images for a user's deck. A nil model disables it.
type Generator struct {
	model  ImageModel
	layout *storage.Layout
}

func NewGenerator(model ImageModel, layout *storage.Layout) *Generator {
	return &Generator{model: model, layout: layout}
}

func (g *Generator) Enabled() bool { return g.model != nil }

// GenerateAll renders every angle of every manifest product that has a
// local image. Failures are logged per (product, angle) and skipped. The
// result maps product id to the written paths, relative to the images root.
func (g *Generator) GenerateAll(ctx context.Context, folder string) (map[uint][]string, error) {
	out := make(map[uint][]string)
	if !g.Enabled() {
		logger.Warn(ctx).Str("user_folder", folder).Msg("IMAGE_API_KEY not set, skipping image generation")
		return out, nil
	}

	entries, err := g.layout.ReadManifest(folder)
	if err != nil {
		return nil, err
	}

	photos := make(map[domain.Angle]Image)
	for _, angle := range domain.Angles {
		path, ok := g.layout.FindPhoto(folder, angle)
		if !ok {
			logger.Warn(ctx).Str("user_folder", folder).Str("angle", string(angle)).Msg("No photo for angle")
			continue
		}
		img, err := readImage(path)
		if err != nil {
			logger.Error(ctx).Err(err).Str("user_folder", folder).Str("angle", string(angle)).Msg("Failed to read photo")
			continue
		}
		photos[angle] = img
	}
	if len(photos) == 0 {
		return out, nil
	}

	if err := os.MkdirAll(g.layout.CombinedDir(folder), 0o755); err != nil {
		return nil, fmt.Errorf("create combined images dir: %w", err)
	}

	for _, entry := range entries {
		garmentPath := g.layout.AbsLocalImage(entry)
		if garmentPath == "" {
			continue
		}
		garment, err := readImage(garmentPath)
		if err != nil {
			logger.Warn(ctx).Err(err).Uint("product_id", entry.ID).Msg("Product image unavailable")
			continue
		}

		for _, angle := range domain.Angles {
			person, ok := photos[angle]
			if !ok {
				continue
			}
			paths, err := g.generate(ctx, folder, entry.ID, angle, person, garment)
			if err != nil {
				logger.Error(ctx).Err(err).
					Str("user_folder", folder).
					Uint("product_id", entry.ID).
					Str("angle", string(angle)).
					Msg("Image generation failed")
				continue
			}
			out[entry.ID] = append(out[entry.ID], paths...)
		}
	}

	total := 0
	for _, paths := range out {
		total += len(paths)
	}
	logger.Info(ctx).Str("user_folder", folder).Int("images", total).Msg("Combined images generated")
	return out, nil
}

func (g *Generator) generate(ctx context.Context, folder string, id uint, angle domain.Angle, person, garment Image) ([]string, error) {
	images, err := g.model.Generate(ctx, person, garment, Prompt(angle))
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("model returned no image")
	}

	var paths []string
	for _, img := range images {
		decoded, err := imageutil.Decode(img.Data)
		if err != nil {
			logger.Warn(ctx).Err(err).Uint("product_id", id).Str("angle", string(angle)).Msg("Skipping undecodable output")
			continue
		}
		data, err := imageutil.EncodeJPEG(imageutil.Portrait(decoded), outputQuality)
		if err != nil {
			return paths, err
		}
		// numbered by written outputs so the first kept image is the primary file
		path := g.layout.CombinedPath(folder, id, angle, len(paths))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write combined image: %w", err)
		}
		paths = append(paths, g.layout.Rel(path))
	}
	return paths, nil
}

func readImage(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, err
	}
	return Image{Data: data, MIMEType: http.DetectContentType(data)}, nil
}
