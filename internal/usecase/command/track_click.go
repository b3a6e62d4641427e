package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/internal/storage"
	"github.com/tair/styleswipe/kafka"
)

// TrackClickCommand represents a click on a purchase link
type TrackClickCommand struct {
	ProductID  uint
	Referrer   string
	UserFolder string
}

// TrackClickResult is returned by TrackClickHandler
type TrackClickResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ClickID uint   `json:"click_id"`
}

// TrackClickHandler handles track click command
type TrackClickHandler struct {
	users     domain.UserRepository
	products  domain.ProductRepository
	clicks    domain.ClickRepository
	publisher EventPublisher
}

// NewTrackClickHandler creates a new track click handler
func NewTrackClickHandler(users domain.UserRepository, products domain.ProductRepository, clicks domain.ClickRepository, publisher EventPublisher) *TrackClickHandler {
	return &TrackClickHandler{users: users, products: products, clicks: clicks, publisher: publisher}
}

// Handle executes the track click command. An unknown product writes nothing.
func (h *TrackClickHandler) Handle(ctx context.Context, cmd TrackClickCommand) (*TrackClickResult, error) {
	if cmd.ProductID == 0 {
		return nil, domain.NewValidation("product_id is required")
	}

	var userID *uint
	if cmd.UserFolder != "" {
		if folder, err := storage.CleanFolder(cmd.UserFolder); err == nil {
			user, err := h.users.FindByFolder(ctx, folder)
			switch {
			case err == nil:
				userID = &user.ID
			case !errors.Is(err, domain.ErrNotFound):
				return nil, fmt.Errorf("failed to find user: %w", err)
			}
		}
	}

	if _, err := h.products.FindByID(ctx, cmd.ProductID); err != nil {
		return nil, err
	}

	referrer := cmd.Referrer
	if referrer == "" {
		referrer = "unknown"
	}
	click := &domain.ProductClick{UserID: userID, ProductID: cmd.ProductID, Referrer: referrer}
	if err := h.clicks.Create(ctx, click); err != nil {
		return nil, fmt.Errorf("failed to track click: %w", err)
	}

	publish(ctx, h.publisher, kafka.InteractionEvent{
		EventType:  kafka.EventTypeProductClicked,
		UserFolder: cmd.UserFolder,
		UserID:     userID,
		ProductID:  cmd.ProductID,
		Referrer:   referrer,
	})

	return &TrackClickResult{Success: true, Message: "Click tracked", ClickID: click.ID}, nil
}
