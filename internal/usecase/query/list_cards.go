package query

import (
	"context"
	"fmt"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/internal/storage"
	"github.com/tair/styleswipe/internal/swipe"
)

// ListCardsQuery represents the query to list the deck of a user
type ListCardsQuery struct {
	UserFolder string
}

// ListCardsHandler handles list cards query
type ListCardsHandler struct {
	users domain.UserRepository
	deck  *swipe.Deck
}

// NewListCardsHandler creates a new list cards handler
func NewListCardsHandler(users domain.UserRepository, deck *swipe.Deck) *ListCardsHandler {
	return &ListCardsHandler{users: users, deck: deck}
}

// Handle executes the list cards query
func (h *ListCardsHandler) Handle(ctx context.Context, q ListCardsQuery) ([]swipe.Card, error) {
	folder, err := storage.CleanFolder(q.UserFolder)
	if err != nil {
		return nil, err
	}
	if _, err := h.users.EnsureByFolder(ctx, folder); err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return h.deck.Cards(ctx, folder)
}
