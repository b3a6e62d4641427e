package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/internal/storage"
	"github.com/tair/styleswipe/pkg/imageutil"
	"github.com/tair/styleswipe/pkg/logger"
)

const (
	DefaultNumResults = 5

	thumbnailMaxSize = 512
	thumbnailQuality = 85
	maxThumbnailSize = 20 << 20

	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptImages = "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8"
)

// SearcherConfig tunes a Searcher
type SearcherConfig struct {
	NumResults      int
	DownloadTimeout time.Duration
}

// Searcher turns shopping results into the user's deck: product rows,
// thumbnails, link files and the manifest.
type Searcher struct {
	client     ShoppingClient
	products   domain.ProductRepository
	layout     *storage.Layout
	download   *http.Client
	numResults int
}

func NewSearcher(client ShoppingClient, products domain.ProductRepository, layout *storage.Layout, cfg SearcherConfig) *Searcher {
	num := cfg.NumResults
	if num <= 0 {
		num = DefaultNumResults
	}
	timeout := cfg.DownloadTimeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Searcher{
		client:   client,
		products: products,
		layout:   layout,
		download: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		numResults: num,
	}
}

// Search runs query for folder and replaces its manifest with the kept
// products. Without an API key it logs a warning and returns nothing.
func (s *Searcher) Search(ctx context.Context, folder, query, productType string) ([]storage.ManifestEntry, error) {
	ctx, span := tracer.Start(ctx, "search.deck")
	defer span.End()
	span.SetAttributes(attribute.String("user_folder", folder))

	results, err := s.client.Search(ctx, query, s.numResults)
	if errors.Is(err, ErrMissingAPIKey) {
		logger.Warn(ctx).Str("user_folder", folder).Msg("SERPI_API not set, skipping product search")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.layout.EnsureUserDirs(folder); err != nil {
		return nil, err
	}

	entries := make([]storage.ManifestEntry, 0, s.numResults)
	for _, item := range results {
		if len(entries) >= s.numResults {
			break
		}
		if item.Title == "" || item.ProductLink == "" {
			continue
		}

		entry, err := s.keep(ctx, folder, productType, item)
		if err != nil {
			logger.Error(ctx).Err(err).
				Str("user_folder", folder).
				Str("title", item.Title).
				Msg("Skipping search result")
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) > 0 {
		if err := s.layout.WriteManifest(folder, entries); err != nil {
			return nil, err
		}
	}

	logger.Info(ctx).
		Str("user_folder", folder).
		Str("query", query).
		Int("results", len(results)).
		Int("kept", len(entries)).
		Msg("Product search completed")
	return entries, nil
}

func (s *Searcher) keep(ctx context.Context, folder, productType string, item Result) (storage.ManifestEntry, error) {
	product := &domain.Product{
		ExternalID:     externalID(item, folder),
		Title:          item.Title,
		Price:          price(item),
		ExtractedPrice: item.ExtractedPrice,
		OldPrice:       item.OldPrice,
		ProductLink:    item.ProductLink,
		Thumbnail:      item.Thumbnail,
		Source:         item.Source,
		SourceIcon:     item.SourceIcon,
		Rating:         item.Rating,
		Reviews:        item.Reviews,
		Snippet:        item.Snippet,
		Delivery:       item.Delivery,
		Tag:            item.Tag,
		ProductType:    productType,
	}
	if err := s.products.Upsert(ctx, product); err != nil {
		return storage.ManifestEntry{}, fmt.Errorf("save product: %w", err)
	}

	var local string
	if item.Thumbnail != "" {
		path := s.layout.ProductImagePath(folder, product.ID)
		if err := s.saveThumbnail(ctx, item.Thumbnail, path); err != nil {
			logger.Warn(ctx).Err(err).
				Str("user_folder", folder).
				Uint("product_id", product.ID).
				Msg("Failed to download thumbnail")
		} else {
			local = s.layout.Rel(path)
		}
	}

	if err := os.WriteFile(s.layout.ProductLinkPath(folder, product.ID), []byte(item.ProductLink), 0o644); err != nil {
		logger.Warn(ctx).Err(err).Uint("product_id", product.ID).Msg("Failed to write product link")
	}

	return storage.NewManifestEntry(product, local), nil
}

func (s *Searcher) saveThumbnail(ctx context.Context, src, dest string) error {
	ctx, span := tracer.Start(ctx, "search.thumbnail")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptImages)

	resp, err := s.download.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("thumbnail status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxThumbnailSize))
	if err != nil {
		return err
	}
	out, _, err := imageutil.Compress(data, thumbnailMaxSize, thumbnailQuality)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, out, 0o644)
}

// externalID suffixes the API product id with the folder so decks of
// different users never share a row. Items without an id are keyed by link.
func externalID(item Result, folder string) string {
	id := item.ProductID
	if id == "" {
		sum := sha256.Sum256([]byte(item.ProductLink))
		id = hex.EncodeToString(sum[:8])
	}
	return id + "_" + folder
}

func price(item Result) string {
	if item.Price != "" {
		return item.Price
	}
	if item.ExtractedPrice != nil {
		return "£" + strconv.FormatFloat(*item.ExtractedPrice, 'f', -1, 64)
	}
	return ""
}
