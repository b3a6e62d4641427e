// Package tryon composes a user's angle photos with product images through
// an image generation model.
package tryon

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"github.com/tair/styleswipe/internal/domain"
)

const DefaultModel = "gemini-2.5-flash-image"

var tracer = otel.Tracer("styleswipe/tryon")

// Image is an encoded image with its MIME type
type Image struct {
	Data     []byte
	MIMEType string
}

// ImageModel generates pictures of person wearing garment
type ImageModel interface {
	Generate(ctx context.Context, person, garment Image, prompt string) ([]Image, error)
}

// GeminiModel implements ImageModel on the Gemini API
type GeminiModel struct {
	client *genai.Client
	model  string
}

func NewGeminiModel(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key not configured")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiModel{client: client, model: model}, nil
}

// Generate sends both images followed by the prompt and returns every
// inline image of the first candidate.
func (m *GeminiModel) Generate(ctx context.Context, person, garment Image, prompt string) ([]Image, error) {
	ctx, span := tracer.Start(ctx, "gemini.generate")
	defer span.End()
	span.SetAttributes(attribute.String("gemini.model", m.model))

	parts := []*genai.Part{
		genai.NewPartFromBytes(person.Data, person.MIMEType),
		genai.NewPartFromBytes(garment.Data, garment.MIMEType),
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.UpstreamError{Service: "gemini", Err: err}
	}

	var images []Image
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		images = append(images, Image{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType})
	}
	span.SetAttributes(attribute.Int("gemini.images", len(images)))
	return images, nil
}
