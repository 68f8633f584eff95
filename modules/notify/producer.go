package notify

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/notifyhub/pkg/queue"
)

// Producer accepts outbound email requests from the API and enqueues them
// for the consumer. Tasks are enqueued without retries: a failing message
// goes straight to the dead-letter queue instead of looping back into the
// live queue.
type Producer struct {
	enqueuer  *queue.Enqueuer
	queueName string
}

// NewProducer binds the producer to its queue.
func NewProducer(enqueuer *queue.Enqueuer, queueName string) *Producer {
	return &Producer{enqueuer: enqueuer, queueName: queueName}
}

// SendText enqueues a plain-text email request.
func (p *Producer) SendText(ctx context.Context, req EmailRequest) error {
	req.Format = FormatText
	return p.enqueue(ctx, req)
}

// SendHTML enqueues an HTML email request.
func (p *Producer) SendHTML(ctx context.Context, req EmailRequest) error {
	req.Format = FormatHTML
	return p.enqueue(ctx, req)
}

func (p *Producer) enqueue(ctx context.Context, req EmailRequest) error {
	if err := req.validate(); err != nil {
		return err
	}
	return p.enqueuer.Enqueue(ctx, req,
		queue.WithQueue(p.queueName),
		queue.WithMaxRetries(0),
	)
}

// validate guards the API boundary; the dispatch path downstream trusts
// its input.
func (r EmailRequest) validate() error {
	switch r.RoleType {
	case RoleTypeAdmin, RoleTypeAll:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRoleType, r.RoleType)
	}
	if r.To == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidEmailRequest)
	}
	if r.Content == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidEmailRequest)
	}
	return nil
}
