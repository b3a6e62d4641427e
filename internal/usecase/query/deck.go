package query

import (
	"context"
	"fmt"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/internal/storage"
	"github.com/tair/styleswipe/internal/swipe"
)

// deckReader loads the cards and swipes of a user
type deckReader struct {
	users  domain.UserRepository
	swipes domain.SwipeRepository
	deck   *swipe.Deck
}

func (r deckReader) load(ctx context.Context, rawFolder string) (*domain.User, []swipe.Card, []domain.Swipe, error) {
	folder, err := storage.CleanFolder(rawFolder)
	if err != nil {
		return nil, nil, nil, err
	}
	user, err := r.users.EnsureByFolder(ctx, folder)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	cards, err := r.deck.Cards(ctx, folder)
	if err != nil {
		return nil, nil, nil, err
	}
	swipes, err := r.swipes.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list swipes: %w", err)
	}
	return user, cards, swipes, nil
}
