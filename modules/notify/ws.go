package notify

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/pubsub"
	"github.com/dmitrymomot/notifyhub/pkg/sessiontrack"
)

// WSHandler upgrades HTTP requests to websocket connections and streams the
// caller's notification channels. Identity comes from the X-USER header, or
// the "user" query parameter for browser clients that cannot set headers.
// Anonymous connections are accepted but subscribe to nothing and are never
// registered with the session registry.
type WSHandler struct {
	hub       *pubsub.Hub
	lifecycle *sessiontrack.EventHandler
	upgrader  websocket.Upgrader
	log       *slog.Logger
}

// NewWSHandler creates the websocket endpoint.
func NewWSHandler(hub *pubsub.Hub, lifecycle *sessiontrack.EventHandler, log *slog.Logger) *WSHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WSHandler{
		hub:       hub,
		lifecycle: lifecycle,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is enforced by the fronting proxy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity := r.Header.Get(identityHeader)
	if identity == "" {
		identity = r.URL.Query().Get("user")
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.ErrorContext(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	sessionID := uuid.NewString()
	h.lifecycle.HandleConnect(sessiontrack.ConnectEvent{
		SessionID: sessionID,
		Identity:  identity,
	})

	// The connection outlives the HTTP request once hijacked, so the
	// subscription lifetime is tied to this context instead of r.Context().
	ctx, cancel := context.WithCancel(context.Background())

	out := make(chan pubsub.Message, 64)
	if identity != "" {
		destinations := []string{
			DestinationFull(identity),
			DestinationUnreadCount(identity),
			DestinationSummary(identity),
		}
		for _, dest := range destinations {
			sub, err := h.hub.Subscribe(ctx, dest)
			if err != nil {
				h.log.ErrorContext(ctx, "subscribe failed",
					logger.Destination(dest), logger.Error(err))
				continue
			}
			go forward(ctx, sub, out)
		}
	}

	// Reader detects the peer closing; the connection carries no inbound
	// application messages.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer func() {
			cancel()
			_ = conn.Close()
			h.lifecycle.HandleDisconnect(sessiontrack.DisconnectEvent{SessionID: sessionID})
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-out:
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			}
		}
	}()
}

// forward pumps one subscription into the connection's shared out channel
// until the subscriber closes or the connection goes away.
func forward(ctx context.Context, sub *pubsub.Subscriber, out chan<- pubsub.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Messages():
			if !ok {
				return
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
}
