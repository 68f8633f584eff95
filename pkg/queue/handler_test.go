package queue_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/queue"
)

func TestTaskHandlerNameMatchesEnqueueDefault(t *testing.T) {
	t.Parallel()

	handler := queue.NewTaskHandler(func(context.Context, emailPayload) error { return nil })
	assert.Equal(t, "queue_test.emailPayload", handler.Name(),
		"handler name must match the default task name for the same payload type")
}

func TestTaskHandlerDecodesPayload(t *testing.T) {
	t.Parallel()

	var got emailPayload
	handler := queue.NewTaskHandler(func(_ context.Context, p emailPayload) error {
		got = p
		return nil
	})

	raw, err := json.Marshal(emailPayload{To: "a@x.com", Subject: "hi"})
	require.NoError(t, err)
	require.NoError(t, handler.Handle(context.Background(), raw))
	assert.Equal(t, "a@x.com", got.To)
	assert.Equal(t, "hi", got.Subject)
}

func TestTaskHandlerRejectsMalformedPayload(t *testing.T) {
	t.Parallel()

	handler := queue.NewTaskHandler(func(context.Context, emailPayload) error { return nil })
	assert.Error(t, handler.Handle(context.Background(), []byte(`{not-json`)))
}
