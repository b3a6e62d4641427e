// Package swipe reconciles a user's manifest with the database into
// swipeable cards and derives progress from the recorded swipes.
package swipe

import (
	"context"
	"fmt"
	"time"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/internal/storage"
	"github.com/tair/styleswipe/pkg/logger"
)

// Images holds one path per angle, relative to the images root, or nil
type Images struct {
	Front *string `json:"front"`
	Side  *string `json:"side"`
	Back  *string `json:"back"`
}

func (i *Images) set(angle domain.Angle, path string) {
	switch angle {
	case domain.AngleFront:
		i.Front = &path
	case domain.AngleSide:
		i.Side = &path
	case domain.AngleBack:
		i.Back = &path
	}
}

// Any reports whether at least one angle is present
func (i Images) Any() bool {
	return i.Front != nil || i.Side != nil || i.Back != nil
}

// Card is one product of the deck as shown to the client
type Card struct {
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
	Images         Images   `json:"images"`
}

// LikedCard is a liked product together with its copied images
type LikedCard struct {
	Card
	LikedAt   string `json:"liked_at"`
	HasImages bool   `json:"has_images"`
}

// Deck builds cards from the manifest and the product table
type Deck struct {
	layout   *storage.Layout
	products domain.ProductRepository
}

func NewDeck(layout *storage.Layout, products domain.ProductRepository) *Deck {
	return &Deck{layout: layout, products: products}
}

// Cards returns the deck of folder in manifest order. An unreadable
// manifest is logged and treated as an empty deck.
func (d *Deck) Cards(ctx context.Context, folder string) ([]Card, error) {
	entries, err := d.layout.ReadManifest(folder)
	if err != nil {
		logger.Warn(ctx).Err(err).Str("user_folder", folder).Msg("Manifest unreadable, deck is empty")
		return []Card{}, nil
	}

	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	rows, err := d.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load deck products: %w", err)
	}
	byID := make(map[uint]*domain.Product, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	cards := make([]Card, 0, len(entries))
	for _, e := range entries {
		card := fromManifest(e)
		if p, ok := byID[e.ID]; ok {
			card = fromProduct(p, e.LocalImage)
		}
		for _, angle := range domain.Angles {
			if path, ok := d.layout.FindCombined(folder, e.ID, angle); ok {
				card.Images.set(angle, d.layout.Rel(path))
			}
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// Liked renders liked rows, preferring the copies in liked_photos and
// falling back to the generated images. Rows whose product is gone are
// skipped.
func (d *Deck) Liked(folder string, liked []domain.LikedProduct) []LikedCard {
	out := make([]LikedCard, 0, len(liked))
	for _, lp := range liked {
		if lp.Product == nil {
			continue
		}
		card := fromProduct(lp.Product, "")
		for _, angle := range domain.Angles {
			if path, ok := d.layout.FindLiked(folder, lp.ProductID, angle); ok {
				card.Images.set(angle, d.layout.Rel(path))
			} else if path, ok := d.layout.FindCombined(folder, lp.ProductID, angle); ok {
				card.Images.set(angle, d.layout.Rel(path))
			}
		}
		out = append(out, LikedCard{
			Card:      card,
			LikedAt:   lp.LikedAt.UTC().Format(time.RFC3339),
			HasImages: card.Images.Any(),
		})
	}
	return out
}

func fromProduct(p *domain.Product, localImage string) Card {
	return Card{
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

func fromManifest(e storage.ManifestEntry) Card {
	c := Card{
		ID:             e.ID,
		ExternalID:     e.ExternalID,
		Title:          e.Title,
		Price:          e.Price,
		ExtractedPrice: e.ExtractedPrice,
		OldPrice:       e.OldPrice,
		ProductLink:    e.ProductLink,
		Thumbnail:      e.Thumbnail,
		LocalImage:     e.LocalImage,
		Source:         e.Source,
		SourceIcon:     e.SourceIcon,
		Rating:         e.Rating,
		Reviews:        e.Reviews,
		Snippet:        e.Snippet,
		Delivery:       e.Delivery,
		Tag:            e.Tag,
		ProductType:    e.ProductType,
	}
	if c.Title == "" {
		c.Title = "Unknown"
	}
	if c.Price == "" {
		c.Price = "N/A"
	}
	return c
}
