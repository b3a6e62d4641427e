package command

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/lib/pq"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/internal/search"
	"github.com/tair/styleswipe/internal/storage"
	"github.com/tair/styleswipe/pkg/logger"
)

// ProductSearcher builds the deck of a user from a query
type ProductSearcher interface {
	Search(ctx context.Context, folder, query, productType string) ([]storage.ManifestEntry, error)
}

// ImageGenerator renders try-on images for the deck of a user
type ImageGenerator interface {
	GenerateAll(ctx context.Context, folder string) (map[uint][]string, error)
}

// SavePreferencesCommand represents the command to save preferences
type SavePreferencesCommand struct {
	UserFolder    string   `json:"user_folder"`
	Gender        string   `json:"gender"`
	Size          string   `json:"size"`
	Styles        []string `json:"styles"`
	ClothingTypes []string `json:"clothing_types"`
	Budget        *string  `json:"budget"`
	Colors        *string  `json:"colors"`
	Notes         *string  `json:"notes"`
}

func (c *SavePreferencesCommand) validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.UserFolder, validation.Required),
		validation.Field(&c.Gender, validation.Required, validation.Length(1, 50)),
		validation.Field(&c.Size, validation.Required, validation.Length(1, 20)),
		validation.Field(&c.Styles, validation.NotNil, validation.Each(validation.Length(1, 100))),
		validation.Field(&c.ClothingTypes, validation.NotNil, validation.Each(validation.Length(1, 100))),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

// PreferencesView is the saved preference as echoed back to the client
type PreferencesView struct {
	Gender        string   `json:"gender"`
	Size          string   `json:"size"`
	Styles        []string `json:"styles"`
	ClothingTypes []string `json:"clothing_types"`
	Budget        *string  `json:"budget"`
	Colors        *string  `json:"colors"`
	Notes         *string  `json:"notes"`
}

// SavePreferencesResult is returned by SavePreferencesHandler
type SavePreferencesResult struct {
	Preferences         PreferencesView         `json:"preferences"`
	RecommendedProducts []storage.ManifestEntry `json:"recommended_products"`
	ProductsCount       int                     `json:"products_count"`
}

// SavePreferencesHandler stores preferences, then searches products and
// generates try-on images. Search and generation failures are logged only.
type SavePreferencesHandler struct {
	users     domain.UserRepository
	prefs     domain.PreferenceRepository
	searcher  ProductSearcher
	generator ImageGenerator
}

// NewSavePreferencesHandler creates a new save preferences handler
func NewSavePreferencesHandler(users domain.UserRepository, prefs domain.PreferenceRepository, searcher ProductSearcher, generator ImageGenerator) *SavePreferencesHandler {
	return &SavePreferencesHandler{users: users, prefs: prefs, searcher: searcher, generator: generator}
}

// Handle executes the save preferences command
func (h *SavePreferencesHandler) Handle(ctx context.Context, cmd SavePreferencesCommand) (*SavePreferencesResult, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}
	folder, err := storage.CleanFolder(cmd.UserFolder)
	if err != nil {
		return nil, err
	}

	user, err := h.users.FindByFolder(ctx, folder)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.NotFoundError{Resource: "user", Message: "User not found. Please upload images first."}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	pref := &domain.Preference{
		UserID:        user.ID,
		Gender:        cmd.Gender,
		Size:          cmd.Size,
		Styles:        pq.StringArray(cmd.Styles),
		ClothingTypes: pq.StringArray(cmd.ClothingTypes),
		Budget:        cmd.Budget,
		Colors:        cmd.Colors,
		Notes:         cmd.Notes,
	}
	if err := h.prefs.Upsert(ctx, pref); err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}

	result := &SavePreferencesResult{
		Preferences: PreferencesView{
			Gender:        pref.Gender,
			Size:          pref.Size,
			Styles:        pref.Styles,
			ClothingTypes: pref.ClothingTypes,
			Budget:        pref.Budget,
			Colors:        pref.Colors,
			Notes:         pref.Notes,
		},
		RecommendedProducts: []storage.ManifestEntry{},
	}

	query := search.BuildQuery(pref)
	if query == "" {
		return result, nil
	}

	products, err := h.searcher.Search(ctx, folder, query, pref.PrimaryProductType())
	if err != nil {
		logger.Error(ctx).Err(err).Str("user_folder", folder).Str("query", query).Msg("Product search failed")
		return result, nil
	}
	if len(products) > 0 {
		result.RecommendedProducts = products
		result.ProductsCount = len(products)

		if _, err := h.generator.GenerateAll(ctx, folder); err != nil {
			logger.Error(ctx).Err(err).Str("user_folder", folder).Msg("Image generation failed")
		}
	}
	return result, nil
}
