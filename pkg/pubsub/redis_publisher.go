package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes messages onto Redis pub/sub channels so that
// subscribers connected to other instances of the service still receive
// live notifications. The destination string is used as the channel name
// unchanged; payloads travel as JSON-encoded Message envelopes.
type RedisPublisher struct {
	client redis.UniversalClient
}

// NewRedisPublisher creates a Redis-backed publisher.
func NewRedisPublisher(client redis.UniversalClient) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, dest string, payload any) error {
	msg := Message{
		ID:          uuid.New().String(),
		Destination: dest,
		Payload:     payload,
		Timestamp:   time.Now(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Join(ErrPublishFailed, err)
	}

	if err := p.client.Publish(ctx, dest, data).Err(); err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	return nil
}
