package pubsub

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

// MultiPublisher fans a publish out to several backends, typically the
// in-process Hub plus a RedisPublisher. Delivery is best effort: a failing
// backend is logged and skipped so the remaining backends still publish.
type MultiPublisher struct {
	publishers []Publisher
	logger     *slog.Logger
}

// MultiPublisherOption configures a MultiPublisher.
type MultiPublisherOption func(*MultiPublisher)

// WithMultiPublisherLogger sets the logger used for backend failures.
func WithMultiPublisherLogger(log *slog.Logger) MultiPublisherOption {
	return func(m *MultiPublisher) {
		if log != nil {
			m.logger = log
		}
	}
}

// NewMultiPublisher combines the given publishers.
func NewMultiPublisher(publishers []Publisher, opts ...MultiPublisherOption) *MultiPublisher {
	m := &MultiPublisher{
		publishers: publishers,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Publish implements Publisher. It always returns nil; per-backend failures
// are logged, never propagated, so one dead transport cannot silence the rest.
func (m *MultiPublisher) Publish(ctx context.Context, dest string, payload any) error {
	for i, p := range m.publishers {
		if err := p.Publish(ctx, dest, payload); err != nil {
			m.logger.LogAttrs(ctx, slog.LevelError, "failed to publish to backend",
				logger.Destination(dest),
				slog.Int("backend_index", i),
				logger.Error(err),
			)
			continue
		}
	}
	return nil
}
