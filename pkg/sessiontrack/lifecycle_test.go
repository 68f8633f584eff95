package sessiontrack_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/notifyhub/pkg/sessiontrack"
)

func newTestHandler() (*sessiontrack.EventHandler, *sessiontrack.Registry) {
	registry := sessiontrack.NewRegistry()
	handler := sessiontrack.NewEventHandler(registry,
		sessiontrack.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return handler, registry
}

func TestHandleConnectRegistersIdentity(t *testing.T) {
	t.Parallel()

	handler, registry := newTestHandler()
	handler.HandleConnect(sessiontrack.ConnectEvent{SessionID: "sess-1", Identity: "a@x.com"})

	assert.Equal(t, 1, registry.CountSessionsFor("a@x.com"))
}

func TestHandleConnectWithoutIdentitySkipsRegistration(t *testing.T) {
	t.Parallel()

	handler, registry := newTestHandler()
	handler.HandleConnect(sessiontrack.ConnectEvent{SessionID: "sess-1"})

	assert.Equal(t, 0, registry.Len(), "anonymous connections take no part in dispatch")
}

func TestHandleDisconnectAlwaysUnregisters(t *testing.T) {
	t.Parallel()

	handler, registry := newTestHandler()
	handler.HandleConnect(sessiontrack.ConnectEvent{SessionID: "sess-1", Identity: "a@x.com"})
	handler.HandleDisconnect(sessiontrack.DisconnectEvent{SessionID: "sess-1"})

	assert.Equal(t, 0, registry.CountSessionsFor("a@x.com"))

	// Disconnect of an unknown session never fails.
	handler.HandleDisconnect(sessiontrack.DisconnectEvent{SessionID: "sess-2"})
	assert.Equal(t, 0, registry.Len())
}
