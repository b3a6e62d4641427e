package query

import (
	"context"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/internal/swipe"
)

// GetStatusQuery represents the query for swipe progress
type GetStatusQuery struct {
	UserFolder string
}

// GetStatusHandler handles get status query
type GetStatusHandler struct {
	reader deckReader
}

// NewGetStatusHandler creates a new get status handler
func NewGetStatusHandler(users domain.UserRepository, swipes domain.SwipeRepository, deck *swipe.Deck) *GetStatusHandler {
	return &GetStatusHandler{reader: deckReader{users: users, swipes: swipes, deck: deck}}
}

// Handle executes the get status query
func (h *GetStatusHandler) Handle(ctx context.Context, q GetStatusQuery) (*swipe.Status, error) {
	_, cards, swipes, err := h.reader.load(ctx, q.UserFolder)
	if err != nil {
		return nil, err
	}
	status, _ := swipe.Progress(cards, swipes)
	return &status, nil
}
