package pubsub

import (
	"context"
	"time"
)

// Publisher sends a payload to every subscriber of a logical destination.
// Implementations must be safe for concurrent use. Publishing to a
// destination with no subscribers is not an error.
type Publisher interface {
	Publish(ctx context.Context, destination string, payload any) error
}

// Message is the unit delivered to subscribers.
type Message struct {
	ID          string    `json:"id"`
	Destination string    `json:"destination"`
	Payload     any       `json:"payload"`
	Timestamp   time.Time `json:"timestamp"`
}
