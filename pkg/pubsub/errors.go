package pubsub

import "errors"

var (
	// ErrHubClosed is returned when operations are attempted on a closed hub.
	ErrHubClosed = errors.New("pubsub: hub is closed")

	// ErrPublishFailed wraps transport errors from external publishers.
	ErrPublishFailed = errors.New("pubsub: publish failed")
)
