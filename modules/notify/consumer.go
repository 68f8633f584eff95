package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/notifyhub/pkg/htmltext"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/mailer"
	"github.com/dmitrymomot/notifyhub/pkg/queue"
)

// RoleType selects the audience of an email send request.
type RoleType string

const (
	RoleTypeAdmin RoleType = "ADMIN" // dispatch to every admin member, then email the recipient
	RoleTypeAll   RoleType = "ALL"   // dispatch to the single recipient, no outbound email
)

// Format selects the outbound email body type.
type Format string

const (
	FormatText Format = "TEXT"
	FormatHTML Format = "HTML"
)

// EmailRequest is the queue payload produced by the email API and consumed
// once per dequeued message. It is transient and never persisted as-is.
type EmailRequest struct {
	To       string   `json:"to"`
	Subject  string   `json:"subject"`
	Content  string   `json:"content"`
	RoleType RoleType `json:"role_type"`
	Format   Format   `json:"format"`
}

// Consumer turns dequeued EmailRequests into dispatched notifications and,
// for admin broadcasts, an outbound email. Any failure is logged once and
// returned, which dead-letters the message since email tasks are enqueued
// without retries.
type Consumer struct {
	svc    *Service
	sender mailer.EmailSender
	log    *slog.Logger
}

// ConsumerOption configures the Consumer.
type ConsumerOption func(*Consumer)

// WithConsumerLogger supplies a structured logger. Defaults to slog.Default().
func WithConsumerLogger(log *slog.Logger) ConsumerOption {
	return func(c *Consumer) { c.log = log }
}

// NewConsumer wires the consumer to the dispatch engine and email transport.
func NewConsumer(svc *Service, sender mailer.EmailSender, opts ...ConsumerOption) *Consumer {
	c := &Consumer{svc: svc, sender: sender}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// Handler returns the queue handler for EmailRequest tasks.
func (c *Consumer) Handler() queue.Handler {
	return queue.NewTaskHandler(c.handle)
}

func (c *Consumer) handle(ctx context.Context, req EmailRequest) error {
	if err := c.process(ctx, req); err != nil {
		c.log.ErrorContext(ctx, "email request processing failed",
			logger.UserID(req.To),
			logger.Event(string(req.RoleType)),
			logger.Error(err))
		return err
	}
	return nil
}

func (c *Consumer) process(ctx context.Context, req EmailRequest) error {
	switch req.RoleType {
	case RoleTypeAdmin:
		role, members, err := c.svc.MembersForRole(ctx, string(req.RoleType))
		if err != nil {
			return err
		}
		for _, member := range members {
			if err := c.svc.Dispatch(ctx, member, role, req.Content); err != nil {
				return err
			}
		}
		return c.sendEmail(ctx, req)
	case RoleTypeAll:
		member, err := c.svc.MemberByEmail(ctx, req.To)
		if err != nil {
			return err
		}
		return c.svc.Dispatch(ctx, member, member.Role, req.Content)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRoleType, req.RoleType)
	}
}

func (c *Consumer) sendEmail(ctx context.Context, req EmailRequest) error {
	params := mailer.SendEmailParams{
		SendTo:  req.To,
		Subject: req.Subject,
		Tag:     "notification",
	}
	if req.Format == FormatHTML {
		params.BodyHTML = req.Content
		params.BodyText = htmltext.Flatten(req.Content)
	} else {
		params.BodyText = req.Content
	}
	return c.sender.SendEmail(ctx, params)
}
