package swipe

import "github.com/tair/styleswipe/internal/domain"

// Status is the user's progress through the deck. Only swipes on deck
// products are counted, so Swiped never exceeds TotalProducts.
type Status struct {
	TotalProducts int  `json:"total_products"`
	Swiped        int  `json:"swiped"`
	LikedCount    int  `json:"liked_count"`
	DislikedCount int  `json:"disliked_count"`
	Remaining     int  `json:"remaining"`
	Completed     bool `json:"completed"`
	CurrentIndex  int  `json:"current_index"`
}

// Progress derives the status and the next unswiped card
func Progress(cards []Card, swipes []domain.Swipe) (Status, *Card) {
	byProduct := make(map[uint]bool, len(swipes))
	for _, s := range swipes {
		byProduct[s.ProductID] = s.Liked
	}

	var (
		st   Status
		next *Card
	)
	seen := make(map[uint]bool, len(cards))
	for i := range cards {
		id := cards[i].ID
		if seen[id] {
			continue
		}
		seen[id] = true

		liked, swiped := byProduct[id]
		switch {
		case !swiped:
			st.Remaining++
			if next == nil {
				next = &cards[i]
			}
		case liked:
			st.LikedCount++
		default:
			st.DislikedCount++
		}
	}
	st.TotalProducts = len(seen)
	st.Swiped = st.LikedCount + st.DislikedCount
	st.Completed = st.Remaining == 0
	st.CurrentIndex = st.Swiped
	return st, next
}

// InDeck reports whether productID is one of the cards
func InDeck(cards []Card, productID uint) bool {
	for _, c := range cards {
		if c.ID == productID {
			return true
		}
	}
	return false
}
