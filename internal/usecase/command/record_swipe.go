package command

import (
	"context"
	"fmt"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/internal/storage"
	"github.com/tair/styleswipe/internal/swipe"
	"github.com/tair/styleswipe/kafka"
	"github.com/tair/styleswipe/pkg/logger"
)

// RecordSwipeCommand represents one like or dislike
type RecordSwipeCommand struct {
	UserFolder string
	ProductID  uint
	Liked      bool
}

// RecordSwipeResult is returned by RecordSwipeHandler
type RecordSwipeResult struct {
	Success       bool `json:"success"`
	Liked         bool `json:"liked"`
	ProductID     uint `json:"product_id"`
	TotalLiked    int  `json:"total_liked"`
	TotalDisliked int  `json:"total_disliked"`
	Completed     bool `json:"completed"`
	Remaining     int  `json:"remaining"`
}

// RecordSwipeHandler handles record swipe command
type RecordSwipeHandler struct {
	users     domain.UserRepository
	products  domain.ProductRepository
	swipes    domain.SwipeRepository
	deck      *swipe.Deck
	layout    *storage.Layout
	publisher EventPublisher
}

// NewRecordSwipeHandler creates a new record swipe handler
func NewRecordSwipeHandler(
	users domain.UserRepository,
	products domain.ProductRepository,
	swipes domain.SwipeRepository,
	deck *swipe.Deck,
	layout *storage.Layout,
	publisher EventPublisher,
) *RecordSwipeHandler {
	return &RecordSwipeHandler{
		users:     users,
		products:  products,
		swipes:    swipes,
		deck:      deck,
		layout:    layout,
		publisher: publisher,
	}
}

// Handle records the swipe. The product must be in the user's deck and in
// the database. The first like of a product copies its images once.
func (h *RecordSwipeHandler) Handle(ctx context.Context, cmd RecordSwipeCommand) (*RecordSwipeResult, error) {
	if cmd.ProductID == 0 {
		return nil, domain.NewValidation("product_id is required")
	}
	folder, err := storage.CleanFolder(cmd.UserFolder)
	if err != nil {
		return nil, err
	}

	user, err := h.users.EnsureByFolder(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	cards, err := h.deck.Cards(ctx, folder)
	if err != nil {
		return nil, err
	}
	if !swipe.InDeck(cards, cmd.ProductID) {
		return nil, domain.NewNotFound("product")
	}
	if _, err := h.products.FindByID(ctx, cmd.ProductID); err != nil {
		return nil, err
	}

	if err := h.swipes.Upsert(ctx, &domain.Swipe{UserID: user.ID, ProductID: cmd.ProductID, Liked: cmd.Liked}); err != nil {
		return nil, fmt.Errorf("failed to record swipe: %w", err)
	}

	if cmd.Liked {
		created, err := h.swipes.AddLiked(ctx, user.ID, cmd.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to record like: %w", err)
		}
		if created {
			copied := h.layout.CopyLiked(ctx, folder, cmd.ProductID)
			logger.Info(ctx).
				Str("user_folder", folder).
				Uint("product_id", cmd.ProductID).
				Int("images", len(copied)).
				Msg("Product liked")
			publish(ctx, h.publisher, kafka.InteractionEvent{
				EventType:  kafka.EventTypeProductLiked,
				UserFolder: folder,
				UserID:     &user.ID,
				ProductID:  cmd.ProductID,
			})
		}
	}

	liked := cmd.Liked
	publish(ctx, h.publisher, kafka.InteractionEvent{
		EventType:  kafka.EventTypeSwipeRecorded,
		UserFolder: folder,
		UserID:     &user.ID,
		ProductID:  cmd.ProductID,
		Liked:      &liked,
	})

	swipes, err := h.swipes.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list swipes: %w", err)
	}
	status, _ := swipe.Progress(cards, swipes)

	return &RecordSwipeResult{
		Success:       true,
		Liked:         cmd.Liked,
		ProductID:     cmd.ProductID,
		TotalLiked:    status.LikedCount,
		TotalDisliked: status.DislikedCount,
		Completed:     status.Completed,
		Remaining:     status.Remaining,
	}, nil
}
