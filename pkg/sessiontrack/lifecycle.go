package sessiontrack

import (
	"log/slog"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

// ConnectEvent is emitted by the connection transport when a client opens a
// real-time channel. Identity is the value of the X-USER header and may be
// empty when the client connected without credentials.
type ConnectEvent struct {
	SessionID string
	Identity  string
}

// DisconnectEvent is emitted when a connection closes, cleanly or not.
type DisconnectEvent struct {
	SessionID string
}

// EventHandler reacts to transport connect/disconnect events by mutating
// the registry. Handlers are fire-and-forget: the transport does not wait
// on them and they never return errors.
type EventHandler struct {
	registry *Registry
	logger   *slog.Logger
}

// EventHandlerOption configures an EventHandler.
type EventHandlerOption func(*EventHandler)

// WithLogger sets the logger used for lifecycle instrumentation.
func WithLogger(log *slog.Logger) EventHandlerOption {
	return func(h *EventHandler) {
		if log != nil {
			h.logger = log
		}
	}
}

// NewEventHandler creates a handler bound to the given registry.
func NewEventHandler(registry *Registry, opts ...EventHandlerOption) *EventHandler {
	h := &EventHandler{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleConnect registers the session when the event carries an identity.
// Connections without an identity stay open at the transport level but are
// never registered, so they take no part in dispatch decisions.
func (h *EventHandler) HandleConnect(ev ConnectEvent) {
	if ev.Identity == "" {
		h.logger.Debug("anonymous connection, session not tracked",
			logger.SessionID(ev.SessionID))
		return
	}

	h.registry.Register(ev.SessionID, ev.Identity)

	h.logger.Info("session connected",
		logger.SessionID(ev.SessionID),
		logger.UserID(ev.Identity))
}

// HandleDisconnect removes the session unconditionally. Cleanup must never
// be skipped because identity metadata was missing on the way out.
func (h *EventHandler) HandleDisconnect(ev DisconnectEvent) {
	h.registry.Unregister(ev.SessionID)

	h.logger.Info("session disconnected",
		logger.SessionID(ev.SessionID))
}
