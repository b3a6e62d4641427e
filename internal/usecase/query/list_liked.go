package query

import (
	"context"
	"fmt"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/internal/storage"
	"github.com/tair/styleswipe/internal/swipe"
)

// ListLikedQuery represents the query for a user's liked products
type ListLikedQuery struct {
	UserFolder string
}

// ListLikedHandler handles list liked query
type ListLikedHandler struct {
	users  domain.UserRepository
	swipes domain.SwipeRepository
	deck   *swipe.Deck
}

// NewListLikedHandler creates a new list liked handler
func NewListLikedHandler(users domain.UserRepository, swipes domain.SwipeRepository, deck *swipe.Deck) *ListLikedHandler {
	return &ListLikedHandler{users: users, swipes: swipes, deck: deck}
}

// Handle executes the list liked query
func (h *ListLikedHandler) Handle(ctx context.Context, q ListLikedQuery) ([]swipe.LikedCard, error) {
	folder, err := storage.CleanFolder(q.UserFolder)
	if err != nil {
		return nil, err
	}
	user, err := h.users.EnsureByFolder(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	liked, err := h.swipes.ListLiked(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list liked products: %w", err)
	}
	return h.deck.Liked(folder, liked), nil
}
