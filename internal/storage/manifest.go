package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tair/styleswipe/internal/domain"
)

// ManifestEntry is one searched product as recorded in products.json
type ManifestEntry struct {
	ID             uint     `json:"id"`
	ExternalID     string   `json:"external_id"`
	Title          string   `json:"title"`
	Price          string   `json:"price"`
	ExtractedPrice *float64 `json:"extracted_price"`
	OldPrice       *string  `json:"old_price"`
	ProductLink    string   `json:"product_link"`
	Thumbnail      string   `json:"thumbnail"`
	LocalImage     string   `json:"local_image"`
	Source         string   `json:"source"`
	SourceIcon     *string  `json:"source_icon"`
	Rating         *float64 `json:"rating"`
	Reviews        *int     `json:"reviews"`
	Snippet        *string  `json:"snippet"`
	Delivery       *string  `json:"delivery"`
	Tag            *string  `json:"tag"`
	ProductType    string   `json:"product_type"`
}

// NewManifestEntry copies the product fields. localImage is relative to the root.
func NewManifestEntry(p *domain.Product, localImage string) ManifestEntry {
	return ManifestEntry{
		ID:             p.ID,
		ExternalID:     p.ExternalID,
		Title:          p.Title,
		Price:          p.Price,
		ExtractedPrice: p.ExtractedPrice,
		OldPrice:       p.OldPrice,
		ProductLink:    p.ProductLink,
		Thumbnail:      p.Thumbnail,
		LocalImage:     localImage,
		Source:         p.Source,
		SourceIcon:     p.SourceIcon,
		Rating:         p.Rating,
		Reviews:        p.Reviews,
		Snippet:        p.Snippet,
		Delivery:       p.Delivery,
		Tag:            p.Tag,
		ProductType:    p.ProductType,
	}
}

// ReadManifest loads the manifest of folder. A missing file is an empty deck.
func (l *Layout) ReadManifest(folder string) ([]ManifestEntry, error) {
	data, err := os.ReadFile(l.ManifestPath(folder))
	if err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return entries, nil
}

// WriteManifest replaces the manifest of folder
func (l *Layout) WriteManifest(folder string, entries []ManifestEntry) error {
	if entries == nil {
		entries = []ManifestEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	path := l.ManifestPath(folder)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create products dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// AbsLocalImage resolves the entry's local image, or "" when it has none
func (l *Layout) AbsLocalImage(e ManifestEntry) string {
	if e.LocalImage == "" {
		return ""
	}
	if filepath.IsAbs(e.LocalImage) {
		return e.LocalImage
	}
	return filepath.Join(l.root, filepath.FromSlash(e.LocalImage))
}
