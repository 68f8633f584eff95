package pubsub

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Hub is an in-process Publisher that fans messages out to per-destination
// subscribers. Sends to a subscriber are non-blocking: when a subscriber's
// buffer stays full past the slow-consumer timeout, the message is dropped
// for that subscriber and the subscriber is closed. Live delivery is best
// effort; durable state lives elsewhere.
type Hub struct {
	destinations map[string]*destination
	bufferSize   int
	slowTimeout  time.Duration
	mu           sync.RWMutex
	closed       bool
	wg           sync.WaitGroup
}

type destination struct {
	name        string
	subscribers map[string]*Subscriber
	mu          sync.RWMutex
}

// Subscriber receives messages published to one destination.
type Subscriber struct {
	id          string
	destination string
	messages    chan Message
	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
	hub         *Hub

	// sendMu serializes sends against close(messages): publishers hold the
	// read side for the duration of a send, Close takes the write side
	// before closing the channel.
	sendMu sync.RWMutex
	closed bool
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithBufferSize sets the per-subscriber channel buffer (default 64).
func WithBufferSize(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

// WithSlowConsumerTimeout sets how long a publish waits on a full
// subscriber buffer before dropping the message and closing the
// subscriber (default 5s).
func WithSlowConsumerTimeout(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.slowTimeout = d
		}
	}
}

// NewHub creates an in-memory hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		destinations: make(map[string]*destination),
		bufferSize:   64,
		slowTimeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a subscriber for the destination. The subscription is
// cleaned up when the context is cancelled or Close is called on either the
// subscriber or the hub.
func (h *Hub) Subscribe(ctx context.Context, dest string) (*Subscriber, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}

	d, ok := h.destinations[dest]
	if !ok {
		d = &destination{
			name:        dest,
			subscribers: make(map[string]*Subscriber),
		}
		h.destinations[dest] = d
	}
	h.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscriber{
		id:          uuid.New().String(),
		destination: dest,
		messages:    make(chan Message, h.bufferSize),
		ctx:         subCtx,
		cancel:      cancel,
		hub:         h,
	}

	d.mu.Lock()
	d.subscribers[sub.id] = sub
	d.mu.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		<-subCtx.Done()
		_ = sub.Close()
	}()

	return sub, nil
}

// Publish delivers the payload to every current subscriber of the
// destination. A destination nobody listens on is silently skipped.
func (h *Hub) Publish(ctx context.Context, dest string, payload any) error {
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrHubClosed
	}
	d, ok := h.destinations[dest]
	h.mu.RUnlock()

	if !ok {
		return nil
	}

	msg := Message{
		ID:          uuid.New().String(),
		Destination: dest,
		Payload:     payload,
		Timestamp:   time.Now(),
	}

	d.mu.RLock()
	subs := make([]*Subscriber, 0, len(d.subscribers))
	for _, sub := range d.subscribers {
		subs = append(subs, sub)
	}
	d.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			h.send(sub, msg)
		}
	}

	return nil
}

// SubscriberCount returns the number of subscribers on a destination.
func (h *Hub) SubscriberCount(dest string) int {
	h.mu.RLock()
	d, ok := h.destinations[dest]
	h.mu.RUnlock()

	if !ok {
		return 0
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers)
}

// Close shuts down the hub and closes every subscriber.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	dests := make([]*destination, 0, len(h.destinations))
	for _, d := range h.destinations {
		dests = append(dests, d)
	}
	h.mu.Unlock()

	for _, d := range dests {
		d.mu.RLock()
		subs := make([]*Subscriber, 0, len(d.subscribers))
		for _, sub := range d.subscribers {
			subs = append(subs, sub)
		}
		d.mu.RUnlock()

		for _, sub := range subs {
			_ = sub.Close()
		}
	}

	h.wg.Wait()
	return nil
}

func (h *Hub) send(sub *Subscriber, msg Message) {
	sub.sendMu.RLock()
	defer sub.sendMu.RUnlock()

	if sub.closed {
		return
	}

	timer := time.NewTimer(h.slowTimeout)
	defer timer.Stop()

	select {
	case sub.messages <- msg:
	case <-timer.C:
		// Subscriber stopped draining; drop it rather than block publishers.
		go func() { _ = sub.Close() }()
	case <-sub.ctx.Done():
		// Close is in progress; it cancelled the context so blocked sends
		// release sendMu before the channel is closed.
	}
}

// Messages returns the channel messages are delivered on. The channel is
// closed when the subscriber is closed.
func (s *Subscriber) Messages() <-chan Message {
	return s.messages
}

// Destination returns the destination this subscriber listens on.
func (s *Subscriber) Destination() string {
	return s.destination
}

// Close unsubscribes and releases resources. Safe to call more than once.
func (s *Subscriber) Close() error {
	s.closeOnce.Do(func() {
		// Cancelling first unblocks any send waiting on a full buffer, so
		// the write lock below cannot deadlock against a publisher.
		s.cancel()

		s.hub.mu.RLock()
		d, ok := s.hub.destinations[s.destination]
		s.hub.mu.RUnlock()

		if ok {
			d.mu.Lock()
			delete(d.subscribers, s.id)
			d.mu.Unlock()
		}

		s.sendMu.Lock()
		s.closed = true
		close(s.messages)
		s.sendMu.Unlock()
	})
	return nil
}
