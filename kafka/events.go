package kafka

import "time"

// InteractionEvent is published for every swipe, new like and click
type InteractionEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	UserFolder string    `json:"user_folder,omitempty"`
	UserID     *uint     `json:"user_id,omitempty"`
	ProductID  uint      `json:"product_id"`
	Liked      *bool     `json:"liked,omitempty"`
	Referrer   string    `json:"referrer,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeSwipeRecorded  = "swipe.recorded"
	EventTypeProductLiked   = "product.liked"
	EventTypeProductClicked = "product.clicked"
)

// Kafka topics
const (
	TopicInteractions = "styleswipe-interactions"
)
