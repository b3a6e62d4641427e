package query

import (
	"context"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/internal/swipe"
)

// NextCardQuery represents the query for the next unswiped card
type NextCardQuery struct {
	UserFolder string
}

// NextCardResult holds the card, nil when the deck is done, and the status
type NextCardResult struct {
	Product *swipe.Card  `json:"product"`
	Status  swipe.Status `json:"status"`
}

// NextCardHandler handles next card query
type NextCardHandler struct {
	reader deckReader
}

// NewNextCardHandler creates a new next card handler
func NewNextCardHandler(users domain.UserRepository, swipes domain.SwipeRepository, deck *swipe.Deck) *NextCardHandler {
	return &NextCardHandler{reader: deckReader{users: users, swipes: swipes, deck: deck}}
}

// Handle executes the next card query
func (h *NextCardHandler) Handle(ctx context.Context, q NextCardQuery) (*NextCardResult, error) {
	_, cards, swipes, err := h.reader.load(ctx, q.UserFolder)
	if err != nil {
		return nil, err
	}
	status, next := swipe.Progress(cards, swipes)
	return &NextCardResult{Product: next, Status: status}, nil
}
