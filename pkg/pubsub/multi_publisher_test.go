package pubsub_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/pubsub"
)

type stubPublisher struct {
	calls int
	err   error
}

func (s *stubPublisher) Publish(context.Context, string, any) error {
	s.calls++
	return s.err
}

func TestMultiPublisherFansOut(t *testing.T) {
	t.Parallel()

	a := &stubPublisher{}
	b := &stubPublisher{}
	m := pubsub.NewMultiPublisher([]pubsub.Publisher{a, b})

	require.NoError(t, m.Publish(context.Background(), "dest", "payload"))
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestMultiPublisherSwallowsBackendFailures(t *testing.T) {
	t.Parallel()

	failing := &stubPublisher{err: errors.New("backend down")}
	healthy := &stubPublisher{}
	m := pubsub.NewMultiPublisher(
		[]pubsub.Publisher{failing, healthy},
		pubsub.WithMultiPublisherLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	require.NoError(t, m.Publish(context.Background(), "dest", "payload"),
		"one dead transport must not silence the rest")
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, healthy.calls)
}
